package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/almanar-edu/almanar/internal/dashboard"
	jobmetrics "github.com/almanar-edu/almanar/internal/jobs"
)

// DashboardWarmupJob pre-populates the dashboard stats cache.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc *dashboard.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: svc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	month := payload.Month
	if month == "" {
		month = j.now().Format("2006-01")
	}

	tracker := jobmetrics.NewMetrics(nil).Track(TaskTypeDashboardWarmup)
	if j.Metrics != nil {
		tracker = j.Metrics.Track(TaskTypeDashboardWarmup)
	}

	logger := j.logger().With(slog.String("month", month))
	logger.Info("starting dashboard warmup")
	start := j.now()
	err := j.Dashboard.Warm(ctx, month)
	if err != nil {
		logger.Error("dashboard warmup", slog.Any("error", err))
	} else {
		logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(start)))
	}
	return tracker.End(err)
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTypeDashboardWarmup))
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
