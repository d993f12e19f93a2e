package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// Counters supplies the totals shown on the dashboard cards.
type Counters interface {
	CountStudents(ctx context.Context) (int64, error)
	CountStaff(ctx context.Context) (int64, error)
	CountLessons(ctx context.Context) (int64, error)
	FeesCollectedForMonth(ctx context.Context, month string) (int64, error)
}

// Stats contains the dashboard card values for one month.
type Stats struct {
	Month          string `json:"month"`
	TotalStudents  int64  `json:"total_students"`
	TotalStaff     int64  `json:"total_staff"`
	TotalLessons   int64  `json:"total_lessons"`
	FeesCollected  int64  `json:"fees_collected"`
	GeneratedAtUTC string `json:"generated_at"`
}

const statsKeyPrefix = "dashboard:stats:"

// Service computes dashboard stats with a Redis cache in front and
// singleflight collapsing concurrent recomputations of the same month.
type Service struct {
	counters Counters
	cache    *Cache
	group    singleflight.Group
}

// NewService builds a Service instance. cache may be nil.
func NewService(counters Counters, cache *Cache) *Service {
	return &Service{counters: counters, cache: cache}
}

// StatsFor returns the dashboard stats for a YYYY-MM month label.
func (s *Service) StatsFor(ctx context.Context, month string) (Stats, error) {
	key := statsKeyPrefix + month
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var stats Stats
		err := s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
			return s.compute(ctx, month)
		})
		return stats, err
	})
	if err != nil {
		return Stats{}, err
	}
	return value.(Stats), nil
}

// Warm recomputes and caches the stats for a month, used by the nightly
// warmup job.
func (s *Service) Warm(ctx context.Context, month string) error {
	key := statsKeyPrefix + month
	if err := s.cache.Invalidate(ctx, key); err != nil {
		return err
	}
	_, err := s.StatsFor(ctx, month)
	return err
}

func (s *Service) compute(ctx context.Context, month string) (Stats, error) {
	students, err := s.counters.CountStudents(ctx)
	if err != nil {
		return Stats{}, err
	}
	staff, err := s.counters.CountStaff(ctx)
	if err != nil {
		return Stats{}, err
	}
	lessons, err := s.counters.CountLessons(ctx)
	if err != nil {
		return Stats{}, err
	}
	collected, err := s.counters.FeesCollectedForMonth(ctx, month)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Month:          month,
		TotalStudents:  students,
		TotalStaff:     staff,
		TotalLessons:   lessons,
		FeesCollected:  collected,
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
