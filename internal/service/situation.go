package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/repository"
	customError "github.com/scolaris/tuition-engine/pkg/errors"
	"github.com/scolaris/tuition-engine/pkg/utils"
)

// SituationService derives a student's installment statuses from the fee
// schedule and the non-canceled payment history. Pure read: nothing is
// persisted, so the result is always consistent with the ledger.
type SituationService struct {
	students  repository.StudentRepository
	classes   repository.ClassRepository
	schedules repository.ScheduleRepository
	payments  repository.PaymentRepository
	now       func() time.Time
}

func NewSituationService(
	students repository.StudentRepository,
	classes repository.ClassRepository,
	schedules repository.ScheduleRepository,
	payments repository.PaymentRepository,
) *SituationService {
	return &SituationService{
		students:  students,
		classes:   classes,
		schedules: schedules,
		payments:  payments,
		now:       time.Now,
	}
}

// GetSituation computes the financial situation of one student. Returns
// (nil, nil) when the student, their class or the fee schedule for the
// class's level and year cannot be resolved: billing is simply not configured
// yet, which many students legitimately are in.
func (s *SituationService) GetSituation(ctx context.Context, studentID string) (*domain.Situation, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}
	if student == nil {
		return nil, nil
	}

	class, err := s.classes.GetByID(ctx, student.ClassID)
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}
	if class == nil {
		return nil, nil
	}

	schedule, err := s.schedules.GetByLevelYear(ctx, class.Level, class.SchoolYear)
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}
	if schedule == nil || len(schedule.Installments) == 0 {
		return nil, nil
	}

	payments, err := s.payments.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}

	paid := paidByOrdinal(schedule, payments)
	now := s.now()

	situation := &domain.Situation{
		Student:        student,
		Class:          class,
		Schedule:       schedule,
		TotalDue:       decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
	}

	for _, inst := range schedule.ByOrdinal() {
		status := domain.InstallmentStatus{
			Installment: inst,
			Paid:        paid[inst.Ordinal],
			Remaining:   inst.Amount.Sub(paid[inst.Ordinal]),
		}
		if status.Remaining.IsNegative() {
			status.Remaining = decimal.Zero
		}
		if status.Remaining.IsPositive() && utils.IsOverdue(inst.DueDate, now) {
			status.Overdue = true
			status.DaysLate = utils.DaysLate(inst.DueDate, now)
		}

		situation.Statuses = append(situation.Statuses, status)
		situation.TotalDue = situation.TotalDue.Add(inst.Amount)
		situation.TotalPaid = situation.TotalPaid.Add(status.Paid)
		situation.TotalRemaining = situation.TotalRemaining.Add(status.Remaining)

		if status.Overdue {
			situation.Overdue = append(situation.Overdue, status)
		}
	}

	situation.NextDue = nextDue(situation.Statuses)

	return situation, nil
}

// paidByOrdinal folds the payment history into a per-ordinal paid total.
// Payments with allocation lines resolve each line against the schedule by id
// or composite key; legacy rows without lines fall back to the modality or
// type tag they were imported with. Lines and tags that resolve to nothing in
// the schedule are dropped rather than guessed at.
func paidByOrdinal(schedule *domain.FeeSchedule, payments []*domain.Payment) map[int]decimal.Decimal {
	paid := make(map[int]decimal.Decimal, len(schedule.Installments))
	for _, inst := range schedule.Installments {
		paid[inst.Ordinal] = decimal.Zero
	}

	for _, p := range payments {
		if len(p.Allocations) > 0 {
			for _, line := range p.Allocations {
				if inst := schedule.Resolve(line.InstallmentID); inst != nil {
					paid[inst.Ordinal] = paid[inst.Ordinal].Add(line.Amount)
				}
			}
			continue
		}

		ordinal := p.TargetOrdinal()
		if _, ok := paid[ordinal]; ok {
			paid[ordinal] = paid[ordinal].Add(p.Amount)
		}
	}
	return paid
}

// nextDue picks the earliest non-overdue installment still carrying a
// balance.
func nextDue(statuses []domain.InstallmentStatus) *domain.InstallmentStatus {
	var next *domain.InstallmentStatus
	for i := range statuses {
		st := &statuses[i]
		if st.Overdue || !st.Remaining.IsPositive() {
			continue
		}
		if next == nil || st.Installment.DueDate.Before(next.Installment.DueDate) {
			next = st
		}
	}
	if next == nil {
		return nil
	}
	out := *next
	return &out
}
