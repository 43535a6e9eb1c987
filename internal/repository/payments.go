package repository

import (
	"context"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/store"
)

type paymentRepository struct {
	store store.Store
}

func NewPaymentRepository(s store.Store) PaymentRepository {
	return &paymentRepository{store: s}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return store.Create(ctx, r.store, store.CollectionPayments, payment.ID, payment)
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return store.Get[domain.Payment](ctx, r.store, store.CollectionPayments, id)
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	return store.Update(ctx, r.store, store.CollectionPayments, payment.ID, payment)
}

func (r *paymentRepository) ListByStudent(ctx context.Context, studentID string) ([]*domain.Payment, error) {
	payments, err := store.List[domain.Payment](ctx, r.store, store.CollectionPayments)
	if err != nil {
		return nil, err
	}

	var out []*domain.Payment
	for _, p := range payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *paymentRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]*domain.Payment, error) {
	payments, err := r.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Payment, 0, len(payments))
	for _, p := range payments {
		if !p.Canceled {
			active = append(active, p)
		}
	}
	return active, nil
}
