package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/repository"
	"github.com/scolaris/tuition-engine/internal/service"
	"github.com/scolaris/tuition-engine/internal/store"
)

func newTestRouter(t *testing.T) (*mux.Router, store.Store) {
	t.Helper()

	mem := store.NewMemory()
	students := repository.NewStudentRepository(mem)
	classes := repository.NewClassRepository(mem)
	schedules := repository.NewScheduleRepository(mem)
	payments := repository.NewPaymentRepository(mem)
	credits := repository.NewCreditRepository(mem)
	audit := repository.NewAuditRepository(mem)

	situations := service.NewSituationService(students, classes, schedules, payments)
	paymentService := service.NewPaymentService(situations, payments, credits, audit,
		decimal.NewFromFloat(0.01), "system")
	alerts := service.NewAlertService(students, situations, nil, 7)

	h := NewBillingHandler(paymentService, situations, alerts)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/students/{studentId}/situation", h.GetSituation).Methods("GET")
	api.HandleFunc("/students/{studentId}/payments", h.RecordPayment).Methods("POST")
	api.HandleFunc("/payments/{paymentId}/cancel", h.CancelPayment).Methods("POST")
	api.HandleFunc("/alerts", h.GetAlerts).Methods("GET")
	api.HandleFunc("/notices", h.GetNotices).Methods("GET")

	return router, mem
}

func seedBilling(t *testing.T, mem store.Store, sponsored bool) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, mem, store.CollectionClasses, "class-cp", &domain.Class{
		ID: "class-cp", Name: "CP A", Level: "CP", SchoolYear: "2025-2026",
	}))
	require.NoError(t, store.Create(ctx, mem, store.CollectionStudents, "student-1", &domain.Student{
		ID: "student-1", FirstName: "Awa", LastName: "Diarra",
		ClassID: "class-cp", Sponsored: sponsored, Status: domain.StudentStatusActive,
	}))
	require.NoError(t, store.Create(ctx, mem, store.CollectionSchedules, "sched-cp", &domain.FeeSchedule{
		ID: "sched-cp", Level: "CP", SchoolYear: "2025-2026",
		Installments: []domain.Installment{
			{ID: "inst-reg", Ordinal: 1, Label: "Inscription", DueDate: time.Now().AddDate(0, -2, 0), Amount: decimal.NewFromInt(10000)},
			{ID: "inst-t1", Ordinal: 2, Label: "1ère tranche", DueDate: time.Now().AddDate(0, 2, 0), Amount: decimal.NewFromInt(20000)},
		},
	}))
}

func TestGetSituation_UnconfiguredStudentIsNull(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/nobody/situation", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, len(body.Data) == 0 || string(body.Data) == "null")
}

func TestRecordPayment_Success(t *testing.T) {
	router, mem := newTestRouter(t)
	seedBilling(t, mem, false)

	payload := []byte(`{"amount": "10000", "selected": ["inst-reg"], "operator": "cashier"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/student-1/payments", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data domain.AllocationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data.Payment)
	assert.Equal(t, "cashier", body.Data.Payment.Operator)
	require.Len(t, body.Data.Payment.Allocations, 1)
	assert.True(t, body.Data.Payment.Allocations[0].Amount.Equal(decimal.NewFromInt(10000)))
}

func TestRecordPayment_PolicyViolation(t *testing.T) {
	router, mem := newTestRouter(t)
	seedBilling(t, mem, true)

	payload := []byte(`{"amount": "5000", "selected": ["inst-t1"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/student-1/payments", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SPONSORED_PAYMENT_RESTRICTED", body.Code)
}

func TestCancelPayment_NotFound(t *testing.T) {
	router, mem := newTestRouter(t)
	seedBilling(t, mem, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/missing/cancel", bytes.NewReader([]byte(`{"reason":"typo"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetNotices(t *testing.T) {
	router, mem := newTestRouter(t)
	seedBilling(t, mem, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notices", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []*domain.Notice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Registration is two months overdue, so the student owes a notice.
	require.Len(t, body.Data, 1)
	assert.Equal(t, "student-1", body.Data[0].Student.ID)
}
