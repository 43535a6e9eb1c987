package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/scolaris/tuition-engine/internal/domain"
	"github.com/scolaris/tuition-engine/internal/repository"
	customError "github.com/scolaris/tuition-engine/pkg/errors"
	"github.com/scolaris/tuition-engine/pkg/utils"
)

const (
	alertSnapshotKey = "tuition:alerts:snapshot"
	alertSnapshotTTL = 24 * time.Hour
)

// AlertService scans all active students for overdue and near-due
// installments, for dashboards and printable reminder batches.
type AlertService struct {
	students   repository.StudentRepository
	situations *SituationService
	redis      *redis.Client

	lookaheadDays int
	now           func() time.Time
}

// NewAlertService builds the scanner. redisClient may be nil: the snapshot
// cache is then skipped, which is the normal offline single-operator setup.
func NewAlertService(
	students repository.StudentRepository,
	situations *SituationService,
	redisClient *redis.Client,
	lookaheadDays int,
) *AlertService {
	return &AlertService{
		students:      students,
		situations:    situations,
		redis:         redisClient,
		lookaheadDays: lookaheadDays,
		now:           time.Now,
	}
}

// ScanAlerts walks every active student and reports the ones with overdue
// installments and the ones whose next installment falls due within the
// lookahead window. Students without billing configured are skipped.
func (s *AlertService) ScanAlerts(ctx context.Context) (*domain.AlertReport, error) {
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}

	report := &domain.AlertReport{GeneratedAt: s.now()}

	for _, student := range students {
		situation, err := s.situations.GetSituation(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		if situation == nil {
			continue
		}

		if len(situation.Overdue) > 0 {
			total := decimal.Zero
			for _, st := range situation.Overdue {
				total = total.Add(st.Remaining)
			}
			report.Overdue = append(report.Overdue, domain.OverdueAlert{
				Student:        student,
				Installments:   situation.Overdue,
				TotalRemaining: total,
			})
		}

		if situation.NextDue != nil {
			days := utils.DaysUntil(situation.NextDue.Installment.DueDate, report.GeneratedAt)
			if days <= s.lookaheadDays {
				report.Upcoming = append(report.Upcoming, domain.UpcomingAlert{
					Student:       student,
					Installment:   *situation.NextDue,
					DaysRemaining: days,
				})
			}
		}
	}

	return report, nil
}

// GenerateNotices builds one printable reminder entry per student with at
// least one overdue installment. Pure projection of the overdue scan with
// class and school-year enrichment, no additional policy.
func (s *AlertService) GenerateNotices(ctx context.Context) ([]*domain.Notice, error) {
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapStoreError(err)
	}

	var notices []*domain.Notice
	for _, student := range students {
		situation, err := s.situations.GetSituation(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		if situation == nil || len(situation.Overdue) == 0 {
			continue
		}

		total := decimal.Zero
		for _, st := range situation.Overdue {
			total = total.Add(st.Remaining)
		}
		notices = append(notices, &domain.Notice{
			Student:             student,
			Class:               situation.Class,
			SchoolYear:          situation.Schedule.SchoolYear,
			OverdueInstallments: situation.Overdue,
			TotalDue:            total,
		})
	}

	return notices, nil
}

// CacheSnapshot stores the report in Redis for dashboards. The snapshot is a
// disposable projection: readers must treat the live scan as authoritative.
func (s *AlertService) CacheSnapshot(ctx context.Context, report *domain.AlertReport) error {
	if s.redis == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, alertSnapshotKey, payload, alertSnapshotTTL).Err()
}

// CachedSnapshot returns the last cached report, or (nil, nil) when the cache
// is cold or disabled.
func (s *AlertService) CachedSnapshot(ctx context.Context) (*domain.AlertReport, error) {
	if s.redis == nil {
		return nil, nil
	}
	payload, err := s.redis.Get(ctx, alertSnapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report domain.AlertReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
