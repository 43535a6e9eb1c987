package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment kinds. Payments recorded by the allocation engine always carry
// explicit allocation lines; the legacy kinds describe rows imported from the
// previous system, whose target installment has to be inferred.
const (
	PaymentKindAllocated    = "allocated"
	PaymentKindRegistration = "registration"
	PaymentKindTuition      = "tuition"
)

// Default payment mode when the operator does not pick one.
const PaymentModeCash = "cash"

// AllocationLine is the portion of one payment applied to one installment.
// InstallmentID is either the installment's own id or its level-ordinal
// composite key.
type AllocationLine struct {
	InstallmentID string          `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// Payment is a cash receipt from a student's family, split across
// installments. Invariant: sum(Allocations) + Leftover == Amount.
//
// A payment is immutable once created, except for the cancellation fields.
// Canceled payments are excluded from every financial total but retained for
// audit.
type Payment struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"student_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        time.Time        `json:"date"`
	Allocations []AllocationLine `json:"allocations"`
	Leftover    decimal.Decimal  `json:"leftover"`

	Mode          string `json:"mode"`
	Note          string `json:"note,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Operator      string `json:"operator,omitempty"`

	Canceled     bool   `json:"canceled"`
	CancelReason string `json:"cancel_reason,omitempty"`

	// Legacy rows only: how the target installment was tagged before
	// allocation lines existed.
	Kind             string `json:"kind,omitempty"`
	Modality         *int   `json:"modality,omitempty"`
	InstallmentIndex *int   `json:"installment_index,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AllocatedTotal returns the sum of the allocation lines.
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Allocations {
		total = total.Add(line.Amount)
	}
	return total
}

// TargetOrdinal infers the ordinal a legacy payment (no allocation lines) was
// meant for. Returns 0 when the row carries no usable tag.
func (p *Payment) TargetOrdinal() int {
	if p.Modality != nil && *p.Modality > 0 {
		return *p.Modality
	}
	switch p.Kind {
	case PaymentKindRegistration:
		return RegistrationOrdinal
	case PaymentKindTuition:
		if p.InstallmentIndex != nil {
			return *p.InstallmentIndex + 1
		}
		return RegistrationOrdinal + 1
	}
	return 0
}

// Credit is leftover money from an overpayment, carried forward for future
// allocation. PaymentID references the payment that produced it; legacy rows
// imported without the reference leave it empty.
type Credit struct {
	ID        string          `json:"id"`
	StudentID string          `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	PaymentID string          `json:"payment_id,omitempty"`
}

// PaymentOptions carries the optional fields of a payment being recorded.
type PaymentOptions struct {
	// Mode of payment, defaults to cash.
	Mode string
	// Free-form note shown on the receipt.
	Note string
	// Receipt number assigned by the operator.
	ReceiptNumber string
	// Operator recording the payment, used for the audit trail.
	Operator string
	// Selected restricts allocation to these installments (by id or
	// level-ordinal key). Empty means every outstanding installment is
	// eligible.
	Selected []string
}

// AllocationResult is what the allocation engine hands back: the persisted
// payment plus the refreshed situation, so callers do not need a second read.
type AllocationResult struct {
	Payment   *Payment   `json:"payment"`
	Situation *Situation `json:"situation"`
}
