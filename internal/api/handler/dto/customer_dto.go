package dto

import (
	"credit-engine/internal/domain/customer"
)

type RegisterRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=60"`
	LastName      string `json:"last_name" validate:"required,max=60"`
	Age           int    `json:"age" validate:"gte=18"`
	MonthlyIncome int64  `json:"monthly_income" validate:"gte=0"`
	PhoneNumber   string `json:"phone_number" validate:"required,max=15"`
}

func (r *RegisterRequest) ToInput() customer.RegisterInput {
	return customer.RegisterInput{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Age:           r.Age,
		MonthlyIncome: r.MonthlyIncome,
		PhoneNumber:   r.PhoneNumber,
	}
}

type RegisterResponse struct {
	CustomerID    int64  `json:"customer_id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	MonthlyIncome int64  `json:"monthly_income"`
	ApprovedLimit int64  `json:"approved_limit"`
	PhoneNumber   string `json:"phone_number"`
}

func NewRegisterResponse(c *customer.Customer) RegisterResponse {
	return RegisterResponse{
		CustomerID:    c.ID,
		Name:          c.FullName(),
		Age:           c.Age,
		MonthlyIncome: c.MonthlyIncome,
		ApprovedLimit: c.ApprovedLimit,
		PhoneNumber:   c.PhoneNumber,
	}
}
