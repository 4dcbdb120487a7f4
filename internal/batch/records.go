package batch

import (
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultCustomerAge = 30

// errSkipped marks a row that is intentionally left out rather than malformed.
var errSkipped = errors.New("skipped")

// customerFromRecord maps one customer row. hasID reports whether the row
// carried its own id, which selects the upsert key.
func customerFromRecord(rec record) (c *customer.Customer, hasID bool, err error) {
	c = &customer.Customer{
		FirstName:   rec.text(fieldFirstName),
		LastName:    rec.text(fieldLastName),
		PhoneNumber: phoneText(rec.text(fieldPhoneNumber)),
		Age:         defaultCustomerAge,
	}

	if rec.has(fieldCustomerID) {
		if c.ID, err = rec.integer(fieldCustomerID); err != nil {
			return nil, false, err
		}
		if c.ID <= 0 {
			return nil, false, fmt.Errorf("%s must be positive", fieldCustomerID)
		}
		hasID = true
	}
	if !hasID && c.PhoneNumber == "" {
		return nil, false, fmt.Errorf("row has neither %s nor %s", fieldCustomerID, fieldPhoneNumber)
	}
	if len(c.FirstName) > customer.MaxNameLength || len(c.LastName) > customer.MaxNameLength {
		return nil, false, fmt.Errorf("name longer than %d characters", customer.MaxNameLength)
	}
	if len(c.PhoneNumber) > customer.MaxPhoneLength {
		return nil, false, fmt.Errorf("%s longer than %d characters", fieldPhoneNumber, customer.MaxPhoneLength)
	}

	if rec.has(fieldAge) {
		age, err := rec.integer(fieldAge)
		if err != nil {
			return nil, false, err
		}
		c.Age = int(age)
	}

	if c.MonthlyIncome, err = rec.integer(fieldMonthlyIncome); err != nil {
		return nil, false, err
	}
	if c.MonthlyIncome < 0 {
		return nil, false, fmt.Errorf("%s must not be negative", fieldMonthlyIncome)
	}

	if rec.has(fieldApprovedLimit) {
		if c.ApprovedLimit, err = rec.integer(fieldApprovedLimit); err != nil {
			return nil, false, err
		}
	} else {
		c.ApprovedLimit = customer.ApprovedLimitFor(c.MonthlyIncome)
	}

	debt, err := rec.number(fieldCurrentDebt)
	if err != nil {
		return nil, false, err
	}
	c.CurrentDebt = debt.Round(2)

	return c, hasID, nil
}

// loanFromRecord maps one loan row. A missing start date is derived from the
// end date and tenure, and a missing end date from the start date.
func loanFromRecord(rec record) (l *loan.Loan, hasID bool, err error) {
	if !rec.has(fieldCustomerID) {
		return nil, false, fmt.Errorf("missing %s", fieldCustomerID)
	}
	l = &loan.Loan{}
	if l.CustomerID, err = rec.integer(fieldCustomerID); err != nil {
		return nil, false, err
	}

	if rec.has(fieldLoanID) {
		if l.ID, err = rec.integer(fieldLoanID); err != nil {
			return nil, false, err
		}
		if l.ID <= 0 {
			return nil, false, fmt.Errorf("%s must be positive", fieldLoanID)
		}
		hasID = true
	}

	amount, err := rec.number(fieldLoanAmount)
	if err != nil {
		return nil, false, err
	}
	rate, err := rec.number(fieldInterestRate)
	if err != nil {
		return nil, false, err
	}
	tenure, err := rec.integer(fieldTenure)
	if err != nil {
		return nil, false, err
	}
	emi, err := rec.number(fieldMonthlyInstallment)
	if err != nil {
		return nil, false, err
	}
	paid, err := rec.integer(fieldEMIsPaidOnTime)
	if err != nil {
		return nil, false, err
	}
	if amount.IsNegative() || rate.IsNegative() || emi.IsNegative() || paid < 0 {
		return nil, false, errors.New("amounts, rates and counts must not be negative")
	}

	start, hasStart, err := rec.date(fieldStartDate)
	if err != nil {
		return nil, false, err
	}
	end, hasEnd, err := rec.date(fieldEndDate)
	if err != nil {
		return nil, false, err
	}
	if !hasStart && !hasEnd {
		return nil, false, fmt.Errorf("%w: both %s and %s are missing for customer %d", errSkipped, fieldStartDate, fieldEndDate, l.CustomerID)
	}
	if tenure <= 0 || tenure > loan.MaxTenureMonths {
		return nil, false, fmt.Errorf("%s must be between 1 and %d", fieldTenure, loan.MaxTenureMonths)
	}

	l.LoanAmount = amount.Round(2)
	l.InterestRate = rate.Round(2)
	l.Tenure = int(tenure)
	l.EMIsPaidOnTime = int(paid)
	l.StartDate, l.EndDate = loanDates(start, hasStart, end, hasEnd, l.Tenure)

	if emi.IsZero() {
		l.MonthlyInstallment = credit.MonthlyInstallment(l.LoanAmount, l.InterestRate, l.Tenure)
	} else {
		l.MonthlyInstallment = emi.Round(2)
	}
	return l, hasID, nil
}

func loanDates(start time.Time, hasStart bool, end time.Time, hasEnd bool, tenure int) (time.Time, time.Time) {
	switch {
	case !hasStart:
		return credit.LoanStartDate(end, tenure), end
	case !hasEnd:
		return start, credit.LoanEndDate(start, tenure)
	default:
		return start, end
	}
}

// phoneText undoes spreadsheet number formatting such as "9876543210.0".
func phoneText(s string) string {
	if s == "" || strings.ContainsAny(s, "+- ()") {
		return s
	}
	if d, err := decimal.NewFromString(s); err == nil && d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return s
}
