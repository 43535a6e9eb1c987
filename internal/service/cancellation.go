package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/scolaris/tuition-engine/internal/domain"
	customError "github.com/scolaris/tuition-engine/pkg/errors"
)

// Cancel reverses a previously recorded payment. The payment row is kept and
// flagged (soft delete) so reporting and the audit trail stay intact; every
// financial total excludes it from then on. A leftover credit produced by the
// payment is removed best-effort: by direct reference first, then by matching
// student and amount for legacy credits imported without one. Credit cleanup
// never blocks the cancellation.
func (s *PaymentService) Cancel(ctx context.Context, paymentID, reason, actor string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}
	if payment == nil {
		return nil, customError.WrapPaymentNotFound(paymentID)
	}
	if payment.Canceled {
		return payment, nil
	}

	if payment.Leftover.IsPositive() {
		s.removeLeftoverCredits(ctx, payment)
	}

	payment.Canceled = true
	payment.CancelReason = reason
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, customError.WrapStoreError(err)
	}

	if actor == "" {
		actor = s.defaultOperator
	}
	s.appendAudit(ctx, domain.AuditTypePaymentCanceled, payment.ID, actor,
		fmt.Sprintf("payment of %s for student %s canceled: %s",
			payment.Amount.String(), payment.StudentID, reason))

	return payment, nil
}

// removeLeftoverCredits deletes the credit(s) a payment produced. Errors are
// logged, never escalated: absence of a matching credit is a legitimate state
// after an interrupted earlier run.
func (s *PaymentService) removeLeftoverCredits(ctx context.Context, payment *domain.Payment) {
	credits, err := s.credits.ListByPayment(ctx, payment.ID)
	if err != nil {
		log.Printf("credit lookup for payment %s failed: %v", payment.ID, err)
		return
	}

	if len(credits) == 0 {
		// Legacy credits carry no payment reference; fall back to matching
		// student and amount within the configured epsilon.
		all, err := s.credits.ListByStudent(ctx, payment.StudentID)
		if err != nil {
			log.Printf("credit lookup for student %s failed: %v", payment.StudentID, err)
			return
		}
		for _, c := range all {
			if c.PaymentID == "" && c.Amount.Sub(payment.Leftover).Abs().LessThanOrEqual(s.creditMatchEpsilon) {
				credits = append(credits, c)
			}
		}
	}

	for _, c := range credits {
		if err := s.credits.Delete(ctx, c.ID); err != nil {
			log.Printf("credit %s cleanup for payment %s failed: %v", c.ID, payment.ID, err)
		}
	}
}

// appendAudit writes one trail entry. The trail is advisory: a write failure
// is logged and swallowed so it never undoes a completed ledger operation.
func (s *PaymentService) appendAudit(ctx context.Context, entryType, paymentID, actor, description string) {
	entry := &domain.AuditEntry{
		ID:          uuid.NewString(),
		Type:        entryType,
		Target:      "payment",
		TargetID:    paymentID,
		Description: description,
		Actor:       actor,
		Timestamp:   s.now(),
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		log.Printf("audit append for payment %s failed: %v", paymentID, err)
	}
}
