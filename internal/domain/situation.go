package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the derived paid/remaining state of one installment
// for one student. Never persisted, always recomputed.
type InstallmentStatus struct {
	Installment Installment     `json:"installment"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	Overdue     bool            `json:"overdue"`
	DaysLate    int             `json:"days_late"`
}

// Situation is the point-in-time view of a student's installment statuses and
// aggregate totals.
type Situation struct {
	Student  *Student     `json:"student"`
	Class    *Class       `json:"class"`
	Schedule *FeeSchedule `json:"schedule"`

	Statuses       []InstallmentStatus `json:"statuses"`
	TotalDue       decimal.Decimal     `json:"total_due"`
	TotalPaid      decimal.Decimal     `json:"total_paid"`
	TotalRemaining decimal.Decimal     `json:"total_remaining"`

	Overdue []InstallmentStatus `json:"overdue"`
	// NextDue is the earliest non-overdue installment still carrying a
	// balance, nil when nothing is left to pay.
	NextDue *InstallmentStatus `json:"next_due,omitempty"`
}

// Outstanding returns the statuses that still carry a balance.
func (s *Situation) Outstanding() []InstallmentStatus {
	var out []InstallmentStatus
	for _, st := range s.Statuses {
		if st.Remaining.IsPositive() {
			out = append(out, st)
		}
	}
	return out
}

// OverdueAlert flags a student with at least one overdue installment.
type OverdueAlert struct {
	Student        *Student            `json:"student"`
	Installments   []InstallmentStatus `json:"installments"`
	TotalRemaining decimal.Decimal     `json:"total_remaining"`
}

// UpcomingAlert flags a student whose next installment falls due within the
// lookahead window.
type UpcomingAlert struct {
	Student       *Student          `json:"student"`
	Installment   InstallmentStatus `json:"installment"`
	DaysRemaining int               `json:"days_remaining"`
}

// AlertReport is the result of a full scan over active students.
type AlertReport struct {
	Overdue     []OverdueAlert  `json:"overdue"`
	Upcoming    []UpcomingAlert `json:"upcoming"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Notice is one entry of a printable reminder batch: a student with overdue
// installments, enriched with class and school year.
type Notice struct {
	Student             *Student            `json:"student"`
	Class               *Class              `json:"class"`
	SchoolYear          string              `json:"school_year"`
	OverdueInstallments []InstallmentStatus `json:"overdue_installments"`
	TotalDue            decimal.Decimal     `json:"total_due"`
}
