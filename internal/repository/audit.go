package repository

import (
	"context"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/store"
)

type auditRepository struct {
	store store.Store
}

func NewAuditRepository(s store.Store) AuditRepository {
	return &auditRepository{store: s}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	return store.Create(ctx, r.store, store.CollectionAuditLog, entry.ID, entry)
}
