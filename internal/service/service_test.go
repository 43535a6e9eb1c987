package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/repository"
	"github.com/scolaris/tuition-engine/internal/store"
)

// Fixed clock for every test: mid school year, after the first two due dates.
var testNow = time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store      *store.Memory
	students   repository.StudentRepository
	classes    repository.ClassRepository
	schedules  repository.ScheduleRepository
	payments   repository.PaymentRepository
	credits    repository.CreditRepository
	audit      repository.AuditRepository
	situations *SituationService
	service    *PaymentService
	alerts     *AlertService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := store.NewMemory()
	env := &testEnv{
		store:     mem,
		students:  repository.NewStudentRepository(mem),
		classes:   repository.NewClassRepository(mem),
		schedules: repository.NewScheduleRepository(mem),
		payments:  repository.NewPaymentRepository(mem),
		credits:   repository.NewCreditRepository(mem),
		audit:     repository.NewAuditRepository(mem),
	}

	env.situations = NewSituationService(env.students, env.classes, env.schedules, env.payments)
	env.situations.now = func() time.Time { return testNow }

	env.service = NewPaymentService(
		env.situations, env.payments, env.credits, env.audit,
		decimal.NewFromFloat(0.01), "test-operator",
	)
	env.service.now = func() time.Time { return testNow }

	env.alerts = NewAlertService(env.students, env.situations, nil, 7)
	env.alerts.now = func() time.Time { return testNow }

	return env
}

func (e *testEnv) addClass(t *testing.T, id, level, year string) {
	t.Helper()
	err := store.Create(context.Background(), e.store, store.CollectionClasses, id, &domain.Class{
		ID:         id,
		Name:       level + " A",
		Level:      level,
		SchoolYear: year,
	})
	require.NoError(t, err)
}

func (e *testEnv) addStudent(t *testing.T, id, classID string, sponsored bool) {
	t.Helper()
	err := store.Create(context.Background(), e.store, store.CollectionStudents, id, &domain.Student{
		ID:        id,
		FirstName: "Test",
		LastName:  id,
		ClassID:   classID,
		Sponsored: sponsored,
		Status:    domain.StudentStatusActive,
	})
	require.NoError(t, err)
}

func (e *testEnv) addSchedule(t *testing.T, level, year string, installments ...domain.Installment) {
	t.Helper()
	id := uuid.NewString()
	err := store.Create(context.Background(), e.store, store.CollectionSchedules, id, &domain.FeeSchedule{
		ID:           id,
		Level:        level,
		SchoolYear:   year,
		Installments: installments,
	})
	require.NoError(t, err)
}

func (e *testEnv) addPayment(t *testing.T, p *domain.Payment) {
	t.Helper()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	require.NoError(t, e.payments.Create(context.Background(), p))
}

// defaultSchedule seeds one class with a three-installment schedule:
// registration 10000 due Sep 15 2025, two tuition installments of 20000 due
// Dec 1 2025 and Mar 1 2026. As of testNow the first two are overdue.
func (e *testEnv) defaultSchedule(t *testing.T) {
	t.Helper()
	e.addClass(t, "class-cp", "CP", "2025-2026")
	e.addSchedule(t, "CP", "2025-2026",
		domain.Installment{
			ID:      "inst-reg",
			Ordinal: 1,
			Label:   "Inscription",
			DueDate: time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
			Amount:  decimal.NewFromInt(10000),
		},
		domain.Installment{
			ID:      "inst-t1",
			Ordinal: 2,
			Label:   "1ère tranche",
			DueDate: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
			Amount:  decimal.NewFromInt(20000),
		},
		domain.Installment{
			ID:      "inst-t2",
			Ordinal: 3,
			Label:   "2ème tranche",
			DueDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			Amount:  decimal.NewFromInt(20000),
		},
	)
}

func amt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
