package repository

import (
	"context"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/store"
)

type studentRepository struct {
	store store.Store
}

func NewStudentRepository(s store.Store) StudentRepository {
	return &studentRepository{store: s}
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	return store.Get[domain.Student](ctx, r.store, store.CollectionStudents, id)
}

func (r *studentRepository) ListActive(ctx context.Context) ([]*domain.Student, error) {
	students, err := store.List[domain.Student](ctx, r.store, store.CollectionStudents)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Student, 0, len(students))
	for _, s := range students {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active, nil
}

type classRepository struct {
	store store.Store
}

func NewClassRepository(s store.Store) ClassRepository {
	return &classRepository{store: s}
}

func (r *classRepository) GetByID(ctx context.Context, id string) (*domain.Class, error) {
	return store.Get[domain.Class](ctx, r.store, store.CollectionClasses, id)
}
