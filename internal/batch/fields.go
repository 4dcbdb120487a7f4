package batch

import (
	"credit-engine/internal/domain/credit"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type field string

const (
	fieldCustomerID         field = "customer_id"
	fieldFirstName          field = "first_name"
	fieldLastName           field = "last_name"
	fieldAge                field = "age"
	fieldPhoneNumber        field = "phone_number"
	fieldMonthlyIncome      field = "monthly_income"
	fieldApprovedLimit      field = "approved_limit"
	fieldCurrentDebt        field = "current_debt"
	fieldLoanID             field = "loan_id"
	fieldLoanAmount         field = "loan_amount"
	fieldTenure             field = "tenure"
	fieldInterestRate       field = "interest_rate"
	fieldMonthlyInstallment field = "monthly_installment"
	fieldEMIsPaidOnTime     field = "emis_paid_on_time"
	fieldStartDate          field = "start_date"
	fieldEndDate            field = "end_date"
)

// Accepted header spellings per field, in priority order. Headers are
// compared after normalizeHeader.
var customerAliases = map[field][]string{
	fieldCustomerID:    {"customer_id", "id"},
	fieldFirstName:     {"first_name"},
	fieldLastName:      {"last_name"},
	fieldAge:           {"age"},
	fieldPhoneNumber:   {"phone_number", "phone"},
	fieldMonthlyIncome: {"monthly_salary", "monthly_income"},
	fieldApprovedLimit: {"approved_limit"},
	fieldCurrentDebt:   {"current_debt"},
}

var loanAliases = map[field][]string{
	fieldCustomerID:         {"customer_id"},
	fieldLoanID:             {"loan_id"},
	fieldLoanAmount:         {"loan_amount"},
	fieldTenure:             {"tenure"},
	fieldInterestRate:       {"interest_rate"},
	fieldMonthlyInstallment: {"monthly_repayment_emi", "monthly_repayment", "monthly_payment", "monthly_installment", "emi"},
	fieldEMIsPaidOnTime:     {"emis_paid_on_time"},
	fieldStartDate:          {"start_date", "date_of_approval"},
	fieldEndDate:            {"end_date"},
}

// dateLayouts are tried in order. Day-first layouts win over month-first.
var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
}

// normalizeHeader lowercases and drops everything except letters and digits.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columns maps each known field to its cell index for one batch.
type columns map[field]int

func resolveColumns(header []string, aliases map[field][]string) columns {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	cols := make(columns, len(aliases))
	for f, names := range aliases {
		for _, name := range names {
			if i, ok := index[normalizeHeader(name)]; ok {
				cols[f] = i
				break
			}
		}
	}
	return cols
}

// record is one data row bound to the batch's resolved columns.
type record struct {
	cells []string
	cols  columns
}

func (r record) text(f field) string {
	i, ok := r.cols[f]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r record) has(f field) bool {
	return r.text(f) != ""
}

func (r record) number(f field) (decimal.Decimal, error) {
	s := r.text(f)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %q is not a number", f, s)
	}
	return d, nil
}

// integer accepts integral values written with a fractional part, such as "12.0".
func (r record) integer(f field) (int64, error) {
	d, err := r.number(f)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%s: %q is not a whole number", f, r.text(f))
	}
	return d.IntPart(), nil
}

// date returns ok=false for a blank cell.
func (r record) date(f field) (t time.Time, ok bool, err error) {
	s := r.text(f)
	if s == "" {
		return time.Time{}, false, nil
	}
	t, err = parseDate(s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", f, err)
	}
	return t, true, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return credit.DateOf(t), nil
		}
	}
	// Workbooks read with raw values carry dates as serial day numbers.
	if serial, err := decimal.NewFromString(s); err == nil && serial.IsPositive() {
		t, err := excelize.ExcelDateToTime(serial.InexactFloat64(), false)
		if err == nil {
			return credit.DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
