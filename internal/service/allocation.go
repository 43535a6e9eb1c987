package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/repository"
	customError "github.com/scolaris/tuition-engine/pkg/errors"
	"github.com/scolaris/tuition-engine/pkg/utils"
)

// PaymentService is the write path of the ledger: it distributes a received
// amount across outstanding installments under the billing policy, persists
// the payment, and reverses it on cancellation.
type PaymentService struct {
	situations *SituationService
	payments   repository.PaymentRepository
	credits    repository.CreditRepository
	audit      repository.AuditRepository

	creditMatchEpsilon decimal.Decimal
	defaultOperator    string
	now                func() time.Time
}

func NewPaymentService(
	situations *SituationService,
	payments repository.PaymentRepository,
	credits repository.CreditRepository,
	audit repository.AuditRepository,
	creditMatchEpsilon decimal.Decimal,
	defaultOperator string,
) *PaymentService {
	return &PaymentService{
		situations:         situations,
		payments:           payments,
		credits:            credits,
		audit:              audit,
		creditMatchEpsilon: creditMatchEpsilon,
		defaultOperator:    defaultOperator,
		now:                time.Now,
	}
}

// Allocate records a payment of amount for a student, splitting it across
// outstanding installments. The policy it enforces:
//
//   - Sponsored students may only pay the registration installment, and only
//     in full.
//   - The registration installment never receives a partial allocation, for
//     any student.
//   - Overdue installments are served first, oldest due date first, then
//     future ones by due date. Oldest debts clear before newer ones even when
//     the caller does not target installments explicitly.
//   - Funds left after every eligible installment is settled become a leftover
//     credit, materialized as a Credit record.
//
// Exactly one Payment record is created, plus at most one Credit. Existing
// payments are never mutated.
func (s *PaymentService) Allocate(ctx context.Context, studentID string, amount decimal.Decimal, date time.Time, opts domain.PaymentOptions) (*domain.AllocationResult, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapInvalidAmount(amount.String())
	}

	situation, err := s.situations.GetSituation(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if situation == nil {
		return nil, customError.WrapConfigurationMissing(studentID)
	}

	candidates := selectCandidates(situation, opts.Selected)

	if situation.Student.Sponsored {
		if err := checkSponsored(studentID, amount, candidates); err != nil {
			return nil, err
		}
	}

	sortByCollectionOrder(candidates)

	lines, leftover, err := distribute(situation.Schedule, amount, candidates)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:            uuid.NewString(),
		StudentID:     studentID,
		Amount:        amount,
		Date:          date,
		Allocations:   lines,
		Leftover:      leftover,
		Kind:          domain.PaymentKindAllocated,
		Mode:          opts.Mode,
		Note:          opts.Note,
		ReceiptNumber: opts.ReceiptNumber,
		Operator:      opts.Operator,
		CreatedAt:     s.now(),
	}
	if payment.Mode == "" {
		payment.Mode = domain.PaymentModeCash
	}
	if payment.Operator == "" {
		payment.Operator = s.defaultOperator
	}

	// The payment is the authoritative record; the credit is a consequence
	// of it and is written after, so an interruption between the two leaves
	// a recoverable state.
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, customError.WrapStoreError(err)
	}

	if leftover.IsPositive() {
		credit := &domain.Credit{
			ID:        uuid.NewString(),
			StudentID: studentID,
			Amount:    leftover,
			Date:      date,
			PaymentID: payment.ID,
		}
		if err := s.credits.Create(ctx, credit); err != nil {
			return nil, customError.WrapStoreError(err)
		}
	}

	s.appendAudit(ctx, domain.AuditTypePaymentRecorded, payment.ID, payment.Operator,
		fmt.Sprintf("payment of %s recorded for student %s (%d installment(s), leftover %s)",
			amount.String(), studentID, len(lines), leftover.String()))

	refreshed, err := s.situations.GetSituation(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &domain.AllocationResult{Payment: payment, Situation: refreshed}, nil
}

// selectCandidates returns the outstanding statuses, narrowed to the explicit
// selection when one is given. Selection entries match either the
// installment's id or its composite level-ordinal key.
func selectCandidates(situation *domain.Situation, selected []string) []domain.InstallmentStatus {
	outstanding := situation.Outstanding()
	if len(selected) == 0 {
		return outstanding
	}

	wanted := make(map[int]bool, len(selected))
	for _, ref := range selected {
		if inst := situation.Schedule.Resolve(ref); inst != nil {
			wanted[inst.Ordinal] = true
		}
	}

	var out []domain.InstallmentStatus
	for _, st := range outstanding {
		if wanted[st.Installment.Ordinal] {
			out = append(out, st)
		}
	}
	return out
}

// checkSponsored enforces the sponsored-student policy: only the registration
// installment may be targeted, and it cannot be partially paid.
func checkSponsored(studentID string, amount decimal.Decimal, candidates []domain.InstallmentStatus) error {
	regRemaining := decimal.Zero
	for _, st := range candidates {
		if !st.Installment.IsRegistration() {
			return customError.WrapSponsoredPaymentRestricted(studentID)
		}
		regRemaining = regRemaining.Add(st.Remaining)
	}
	if amount.LessThan(regRemaining) {
		return customError.WrapRegistrationMustBePaidInFull(regRemaining.String())
	}
	return nil
}

// sortByCollectionOrder puts overdue installments first, each group in
// ascending due-date order.
func sortByCollectionOrder(candidates []domain.InstallmentStatus) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Overdue != b.Overdue {
			return a.Overdue
		}
		return a.Installment.DueDate.Before(b.Installment.DueDate)
	})
}

// distribute walks the ordered candidates, consuming funds. Registration is
// all-or-nothing: reaching it with less than its remaining balance aborts the
// whole allocation. Everything else accepts partial amounts.
func distribute(schedule *domain.FeeSchedule, amount decimal.Decimal, candidates []domain.InstallmentStatus) ([]domain.AllocationLine, decimal.Decimal, error) {
	funds := amount
	var lines []domain.AllocationLine

	for _, st := range candidates {
		if !funds.IsPositive() {
			break
		}

		take := utils.MinDecimal(funds, st.Remaining)
		if st.Installment.IsRegistration() {
			if funds.LessThan(st.Remaining) {
				return nil, decimal.Zero, customError.WrapRegistrationMustBePaidInFull(st.Remaining.String())
			}
			take = st.Remaining
		}

		lines = append(lines, domain.AllocationLine{
			InstallmentID: schedule.InstallmentRef(st.Installment),
			Amount:        take,
		})
		funds = funds.Sub(take)
	}

	return lines, funds, nil
}
