package repository

import (
	"context"

	"github.com/scolaris/tuition-engine/internal/domain"
)

// Lookups return (nil, nil) when the record does not exist; a missing student,
// class or schedule is a normal state, not a failure.

// StudentRepository defines the interface for student reads
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Student, error)

	// ListActive returns students still enrolled, the population the alert
	// scan walks.
	ListActive(ctx context.Context) ([]*domain.Student, error)
}

// ClassRepository defines the interface for class reads
type ClassRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Class, error)
}

// ScheduleRepository resolves the fee schedule configured for a level and
// school year. The engine only ever reads schedules.
type ScheduleRepository interface {
	GetByLevelYear(ctx context.Context, level, schoolYear string) (*domain.FeeSchedule, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error

	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// Update persists cancellation fields. Payments are never otherwise
	// mutated.
	Update(ctx context.Context, payment *domain.Payment) error

	// ListByStudent returns every payment for a student, canceled included.
	ListByStudent(ctx context.Context, studentID string) ([]*domain.Payment, error)

	// ListActiveByStudent returns the payments that count financially:
	// canceled rows are already filtered out so every consumer gets
	// consistent totals.
	ListActiveByStudent(ctx context.Context, studentID string) ([]*domain.Payment, error)
}

// CreditRepository defines the interface for leftover-credit records
type CreditRepository interface {
	Create(ctx context.Context, credit *domain.Credit) error

	ListByStudent(ctx context.Context, studentID string) ([]*domain.Credit, error)

	// ListByPayment returns the credits produced by one payment.
	ListByPayment(ctx context.Context, paymentID string) ([]*domain.Credit, error)

	Delete(ctx context.Context, id string) error
}

// AuditRepository appends to the audit trail. Entries are never read back by
// the engine itself.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
}
