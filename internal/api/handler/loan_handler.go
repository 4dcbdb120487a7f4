package handler

import (
	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func (h *LoanHandler) decodeLoanRequest(r *http.Request) (*dto.LoanRequest, error) {
	var req dto.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	if err := dto.Validate(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		return nil, err
	}
	return &req, nil
}

func (h *LoanHandler) logServiceError(r *http.Request, msg string, err error) {
	level := slog.LevelWarn
	if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
}

// CheckEligibility handles POST /check-eligibility
//
// @Summary Check loan eligibility
// @Description Scores the customer's loan history and returns the decision with the corrected interest rate and installment. Nothing is stored.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanRequest true "Loan application"
// @Success 200 {object} dto.EligibilityResponse "Decision"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /check-eligibility [post]
func (h *LoanHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeLoanRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	decision, err := h.service.CheckEligibility(r.Context(), req.ToCredit())
	if err != nil {
		h.logServiceError(r, "Service failed to check eligibility", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewEligibilityResponse(decision))
}

// CreateLoan handles POST /create-loan
//
// @Summary Create a loan
// @Description Re-runs the decision under the customer's lock and stores the loan when approved. A rejection is returned with status 200 and a null loan_id.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.LoanRequest true "Loan application"
// @Success 201 {object} dto.CreateLoanResponse "Loan created"
// @Success 200 {object} dto.CreateLoanResponse "Loan not approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /create-loan [post]
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeLoanRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.CreateLoan(r.Context(), req.ToCredit())
	if err != nil {
		h.logServiceError(r, "Service failed to create loan", err)
		respondError(w, err)
		return
	}

	status := http.StatusOK
	if result.Loan != nil {
		status = http.StatusCreated
	}
	respondJSON(w, status, dto.NewCreateLoanResponse(result))
}

// ViewLoan handles GET /view-loan/{loanID}
//
// @Summary View a loan
// @Description Returns a stored loan with its customer's identity fields.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID" Minimum(1)
// @Success 200 {object} dto.LoanDetailResponse "Loan details"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loan/{loanID} [get]
func (h *LoanHandler) ViewLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getIDFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	details, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		h.logServiceError(r, "Service failed to get loan", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanDetailResponse(details.Loan, details.Customer))
}

// ViewLoans handles GET /view-loans/{customerID}
//
// @Summary View current loans of a customer
// @Description Lists loans whose end date is today or later, newest first, with the repayments left on each.
// @Tags Loans
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.CurrentLoanResponse "Current loans"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-loans/{customerID} [get]
func (h *LoanHandler) ViewLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := getIDFromURL(r, "customerID")
	if err != nil {
		respondError(w, err)
		return
	}

	loans, err := h.service.ListCurrentLoans(r.Context(), customerID)
	if err != nil {
		h.logServiceError(r, "Service failed to list loans", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewCurrentLoansResponse(loans))
}
