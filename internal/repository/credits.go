package repository

import (
	"context"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/store"
)

type creditRepository struct {
	store store.Store
}

func NewCreditRepository(s store.Store) CreditRepository {
	return &creditRepository{store: s}
}

func (r *creditRepository) Create(ctx context.Context, credit *domain.Credit) error {
	return store.Create(ctx, r.store, store.CollectionCredits, credit.ID, credit)
}

func (r *creditRepository) ListByStudent(ctx context.Context, studentID string) ([]*domain.Credit, error) {
	credits, err := store.List[domain.Credit](ctx, r.store, store.CollectionCredits)
	if err != nil {
		return nil, err
	}

	var out []*domain.Credit
	for _, c := range credits {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *creditRepository) ListByPayment(ctx context.Context, paymentID string) ([]*domain.Credit, error) {
	credits, err := store.List[domain.Credit](ctx, r.store, store.CollectionCredits)
	if err != nil {
		return nil, err
	}

	var out []*domain.Credit
	for _, c := range credits {
		if c.PaymentID != "" && c.PaymentID == paymentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *creditRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.CollectionCredits, id)
}
