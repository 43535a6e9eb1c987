package repository

import (
	"context"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/store"
)

type scheduleRepository struct {
	store store.Store
}

func NewScheduleRepository(s store.Store) ScheduleRepository {
	return &scheduleRepository{store: s}
}

func (r *scheduleRepository) GetByLevelYear(ctx context.Context, level, schoolYear string) (*domain.FeeSchedule, error) {
	schedules, err := store.List[domain.FeeSchedule](ctx, r.store, store.CollectionSchedules)
	if err != nil {
		return nil, err
	}

	for _, schedule := range schedules {
		if schedule.Level == level && schedule.SchoolYear == schoolYear {
			return schedule, nil
		}
	}
	return nil, nil
}
