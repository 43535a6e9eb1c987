package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/service"
	customError "github.com/scolaris/tuition-engine/pkg/errors"
	"github.com/scolaris/tuition-engine/pkg/response"
)

type BillingHandler struct {
	payments   *service.PaymentService
	situations *service.SituationService
	alerts     *service.AlertService
	validator  *validator.Validate
}

func NewBillingHandler(
	payments *service.PaymentService,
	situations *service.SituationService,
	alerts *service.AlertService,
) *BillingHandler {
	return &BillingHandler{
		payments:   payments,
		situations: situations,
		alerts:     alerts,
		validator:  validator.New(),
	}
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Date          *time.Time      `json:"date,omitempty"`
	Mode          string          `json:"mode,omitempty"`
	Note          string          `json:"note,omitempty"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
	Operator      string          `json:"operator,omitempty"`
	Selected      []string        `json:"selected,omitempty"`
}

type CancelPaymentRequest struct {
	Reason string `json:"reason,omitempty"`
	Actor  string `json:"actor,omitempty"`
}

// GetSituation returns the derived financial situation of one student. A
// student without billing configured yields a null payload, not an error.
func (h *BillingHandler) GetSituation(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["studentId"]

	situation, err := h.situations.GetSituation(r.Context(), studentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, situation)
}

// RecordPayment runs the allocation engine for one received amount.
func (h *BillingHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["studentId"]

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid payment request", err)
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	result, err := h.payments.Allocate(r.Context(), studentID, req.Amount, date, domain.PaymentOptions{
		Mode:          req.Mode,
		Note:          req.Note,
		ReceiptNumber: req.ReceiptNumber,
		Operator:      req.Operator,
		Selected:      req.Selected,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, result)
}

// CancelPayment soft-deletes a payment and cleans up its leftover credit.
func (h *BillingHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := mux.Vars(r)["paymentId"]

	var req CancelPaymentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body", err)
			return
		}
	}

	payment, err := h.payments.Cancel(r.Context(), paymentID, req.Reason, req.Actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payment)
}

// GetAlerts runs a live scan over all active students.
func (h *BillingHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := h.alerts.ScanAlerts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, report)
}

// GetNotices returns the printable reminder batch.
func (h *BillingHandler) GetNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.alerts.GenerateNotices(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, notices)
}

// writeError maps billing errors to HTTP statuses. Policy violations surface
// verbatim: they encode billing rules the operator needs to see, not bugs.
func (h *BillingHandler) writeError(w http.ResponseWriter, err error) {
	code := customError.CodeOf(err)
	switch code {
	case customError.ErrCodeInvalidAmount:
		response.BadRequest(w, err.Error(), nil)
	case customError.ErrCodeSponsoredPaymentRestricted,
		customError.ErrCodeRegistrationMustBePaidFull:
		response.UnprocessableEntity(w, err.Error(), code)
	case customError.ErrCodeConfigurationMissing:
		response.Conflict(w, err.Error(), code)
	case customError.ErrCodePaymentNotFound, customError.ErrCodeStudentNotFound:
		response.NotFound(w, err.Error(), code)
	default:
		response.InternalServerError(w, "billing operation failed", err)
	}
}
