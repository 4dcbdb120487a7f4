package customer

import (
	"credit-engine/internal/domain/credit"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinAge          = 18
	MaxNameLength   = 60
	MaxPhoneLength  = 15
	limitMultiplier = 36
	limitStep       = 100000
)

type Customer struct {
	ID            int64
	FirstName     string
	LastName      string
	Age           int
	MonthlyIncome int64
	PhoneNumber   string
	ApprovedLimit int64
	CurrentDebt   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewCustomer(firstName, lastName string, age int, monthlyIncome int64, phoneNumber string) *Customer {
	now := time.Now()
	return &Customer{
		FirstName:     strings.TrimSpace(firstName),
		LastName:      strings.TrimSpace(lastName),
		Age:           age,
		MonthlyIncome: monthlyIncome,
		PhoneNumber:   strings.TrimSpace(phoneNumber),
		ApprovedLimit: ApprovedLimitFor(monthlyIncome),
		CurrentDebt:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ApprovedLimitFor is 36 months of income rounded half up to the nearest 100,000.
func ApprovedLimitFor(monthlyIncome int64) int64 {
	step := decimal.NewFromInt(limitStep)
	raw := decimal.NewFromInt(monthlyIncome).Mul(decimal.NewFromInt(limitMultiplier))
	return raw.Div(step).Round(0).Mul(step).IntPart()
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Customer) Borrower() credit.Borrower {
	return credit.Borrower{
		CustomerID:    c.ID,
		MonthlyIncome: decimal.NewFromInt(c.MonthlyIncome),
		ApprovedLimit: decimal.NewFromInt(c.ApprovedLimit),
	}
}
