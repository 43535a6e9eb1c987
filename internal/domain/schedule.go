package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationOrdinal is the ordinal of the registration installment. It is
// always first in a schedule and can never be partially paid.
const RegistrationOrdinal = 1

// Installment is one scheduled portion of the yearly fees for a level.
type Installment struct {
	ID      string          `json:"id,omitempty"`
	Ordinal int             `json:"ordinal"`
	Label   string          `json:"label"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

// IsRegistration reports whether this is the registration installment.
func (i Installment) IsRegistration() bool {
	return i.Ordinal == RegistrationOrdinal
}

// FeeSchedule is the ordered list of installments configured for one
// (level, school year) pair. Schedules are configured once and read-only
// thereafter.
type FeeSchedule struct {
	ID           string        `json:"id"`
	Level        string        `json:"level"`
	SchoolYear   string        `json:"school_year"`
	Installments []Installment `json:"installments"`
}

// RefKey returns the composite fallback key used by older records to
// reference an installment that has no id of its own.
func (s *FeeSchedule) RefKey(ordinal int) string {
	return fmt.Sprintf("%s-%d", s.Level, ordinal)
}

// InstallmentRef returns the identifier allocation lines should carry for the
// given installment: its id when present, the composite key otherwise.
func (s *FeeSchedule) InstallmentRef(inst Installment) string {
	if inst.ID != "" {
		return inst.ID
	}
	return s.RefKey(inst.Ordinal)
}

// Resolve finds an installment by exact id or by composite level-ordinal key.
// Returns nil when the reference matches nothing in this schedule.
func (s *FeeSchedule) Resolve(ref string) *Installment {
	for idx := range s.Installments {
		inst := &s.Installments[idx]
		if inst.ID != "" && inst.ID == ref {
			return inst
		}
		if s.RefKey(inst.Ordinal) == ref {
			return inst
		}
	}
	return nil
}

// ByOrdinal returns the installments sorted by ordinal.
func (s *FeeSchedule) ByOrdinal() []Installment {
	out := make([]Installment, len(s.Installments))
	copy(out, s.Installments)
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// Total returns the sum of all installment amounts.
func (s *FeeSchedule) Total() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Installments {
		total = total.Add(inst.Amount)
	}
	return total
}
