package domain

import "time"

// Audit entry types
const (
	AuditTypePaymentRecorded = "payment.recorded"
	AuditTypePaymentCanceled = "payment.canceled"
)

// AuditEntry is one append-only trace of a ledger mutation.
type AuditEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Target      string    `json:"target"`
	TargetID    string    `json:"target_id"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
}
