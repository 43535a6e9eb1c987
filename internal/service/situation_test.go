package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolaris/tuition-engine/internal/domain"
)

func TestGetSituation_NoConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, env *testEnv)
	}{
		{
			name:  "unknown student",
			setup: func(t *testing.T, env *testEnv) {},
		},
		{
			name: "student without class",
			setup: func(t *testing.T, env *testEnv) {
				env.addStudent(t, "student-1", "missing-class", false)
			},
		},
		{
			name: "class without fee schedule",
			setup: func(t *testing.T, env *testEnv) {
				env.addClass(t, "class-cp", "CP", "2025-2026")
				env.addStudent(t, "student-1", "class-cp", false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setup(t, env)

			situation, err := env.situations.GetSituation(context.Background(), "student-1")

			require.NoError(t, err)
			assert.Nil(t, situation)
		})
	}
}

func TestGetSituation_MergesAllocationLines(t *testing.T) {
	env := newTestEnv(t)
	env.defaultSchedule(t)
	env.addStudent(t, "student-1", "class-cp", false)

	// One payment with an exact-id line and one referencing the second
	// installment by its composite level-ordinal key.
	env.addPayment(t, &domain.Payment{
		StudentID: "student-1",
		Amount:    amt(18000),
		Date:      testNow.AddDate(0, -1, 0),
		Allocations: []domain.AllocationLine{
			{InstallmentID: "inst-reg", Amount: amt(10000)},
			{InstallmentID: "CP-2", Amount: amt(8000)},
		},
		Leftover: decimal.Zero,
	})

	situation, err := env.situations.GetSituation(context.Background(), "student-1")
	require.NoError(t, err)
	require.NotNil(t, situation)

	require.Len(t, situation.Statuses, 3)
	assert.True(t, situation.Statuses[0].Paid.Equal(amt(10000)))
	assert.True(t, situation.Statuses[0].Remaining.IsZero())
	assert.False(t, situation.Statuses[0].Overdue)

	assert.True(t, situation.Statuses[1].Paid.Equal(amt(8000)))
	assert.True(t, situation.Statuses[1].Remaining.Equal(amt(12000)))
	assert.True(t, situation.Statuses[1].Overdue)
	assert.Equal(t, 40, situation.Statuses[1].DaysLate)

	assert.True(t, situation.TotalDue.Equal(amt(50000)))
	assert.True(t, situation.TotalPaid.Equal(amt(18000)))
	assert.True(t, situation.TotalRemaining.Equal(amt(32000)))

	require.Len(t, situation.Overdue, 1)
	require.NotNil(t, situation.NextDue)
	assert.Equal(t, 3, situation.NextDue.Installment.Ordinal)
}

func TestGetSituation_LegacyPayments(t *testing.T) {
	modality := 2
	index := 1

	tests := []struct {
		name        string
		payment     *domain.Payment
		wantOrdinal int
		wantPaid    int64
	}{
		{
			name: "explicit modality",
			payment: &domain.Payment{
				StudentID: "student-1",
				Amount:    amt(5000),
				Modality:  &modality,
			},
			wantOrdinal: 2,
			wantPaid:    5000,
		},
		{
			name: "registration type tag",
			payment: &domain.Payment{
				StudentID: "student-1",
				Amount:    amt(10000),
				Kind:      domain.PaymentKindRegistration,
			},
			wantOrdinal: 1,
			wantPaid:    10000,
		},
		{
			name: "tuition type tag with installment index",
			payment: &domain.Payment{
				StudentID:        "student-1",
				Amount:           amt(7000),
				Kind:             domain.PaymentKindTuition,
				InstallmentIndex: &index,
			},
			wantOrdinal: 2,
			wantPaid:    7000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.defaultSchedule(t)
			env.addStudent(t, "student-1", "class-cp", false)
			tt.payment.Date = testNow.AddDate(0, -2, 0)
			env.addPayment(t, tt.payment)

			situation, err := env.situations.GetSituation(context.Background(), "student-1")
			require.NoError(t, err)
			require.NotNil(t, situation)

			for _, st := range situation.Statuses {
				if st.Installment.Ordinal == tt.wantOrdinal {
					assert.True(t, st.Paid.Equal(amt(tt.wantPaid)),
						"ordinal %d paid = %s", tt.wantOrdinal, st.Paid)
				} else {
					assert.True(t, st.Paid.IsZero(), "ordinal %d should be unpaid", st.Installment.Ordinal)
				}
			}
		})
	}
}

func TestGetSituation_ExcludesCanceledPayments(t *testing.T) {
	env := newTestEnv(t)
	env.defaultSchedule(t)
	env.addStudent(t, "student-1", "class-cp", false)

	env.addPayment(t, &domain.Payment{
		StudentID:   "student-1",
		Amount:      amt(10000),
		Date:        testNow.AddDate(0, -1, 0),
		Allocations: []domain.AllocationLine{{InstallmentID: "inst-reg", Amount: amt(10000)}},
		Canceled:    true,
	})

	situation, err := env.situations.GetSituation(context.Background(), "student-1")
	require.NoError(t, err)
	require.NotNil(t, situation)

	assert.True(t, situation.TotalPaid.IsZero())
	assert.True(t, situation.Statuses[0].Remaining.Equal(amt(10000)))
}

func TestGetSituation_OverpaidInstallmentFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	env.defaultSchedule(t)
	env.addStudent(t, "student-1", "class-cp", false)

	env.addPayment(t, &domain.Payment{
		StudentID:   "student-1",
		Amount:      amt(25000),
		Date:        testNow.AddDate(0, -1, 0),
		Allocations: []domain.AllocationLine{{InstallmentID: "inst-t1", Amount: amt(25000)}},
	})

	situation, err := env.situations.GetSituation(context.Background(), "student-1")
	require.NoError(t, err)

	assert.True(t, situation.Statuses[1].Remaining.IsZero())
	assert.False(t, situation.Statuses[1].Overdue)
}

func TestGetSituation_NextDueSkipsOverdue(t *testing.T) {
	env := newTestEnv(t)
	env.defaultSchedule(t)
	env.addStudent(t, "student-1", "class-cp", false)

	situation, err := env.situations.GetSituation(context.Background(), "student-1")
	require.NoError(t, err)

	// Registration and the December installment are overdue; the March one
	// is the next due.
	require.Len(t, situation.Overdue, 2)
	require.NotNil(t, situation.NextDue)
	assert.Equal(t, "inst-t2", situation.NextDue.Installment.ID)
}

func TestGetSituation_DropsUnresolvableLines(t *testing.T) {
	env := newTestEnv(t)
	env.defaultSchedule(t)
	env.addStudent(t, "student-1", "class-cp", false)

	env.addPayment(t, &domain.Payment{
		ID:          uuid.NewString(),
		StudentID:   "student-1",
		Amount:      amt(3000),
		Date:        time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		Allocations: []domain.AllocationLine{{InstallmentID: "another-level-9", Amount: amt(3000)}},
	})

	situation, err := env.situations.GetSituation(context.Background(), "student-1")
	require.NoError(t, err)

	assert.True(t, situation.TotalPaid.IsZero())
}
