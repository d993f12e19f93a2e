package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/app"
	"github.com/almanar-edu/almanar/internal/dashboard"
	"github.com/almanar-edu/almanar/internal/elearning"
	"github.com/almanar-edu/almanar/internal/fees"
	"github.com/almanar-edu/almanar/internal/platform/cache"
	"github.com/almanar-edu/almanar/internal/staff"
	"github.com/almanar-edu/almanar/internal/students"
	"github.com/almanar-edu/almanar/jobs"
)

type counters struct {
	students  *students.Repository
	staff     *staff.Repository
	elearning *elearning.Repository
	fees      *fees.Repository
}

func (c counters) CountStudents(ctx context.Context) (int64, error) { return c.students.Count(ctx) }
func (c counters) CountStaff(ctx context.Context) (int64, error)    { return c.staff.Count(ctx) }
func (c counters) CountLessons(ctx context.Context) (int64, error)  { return c.elearning.Count(ctx) }
func (c counters) FeesCollectedForMonth(ctx context.Context, month string) (int64, error) {
	return c.fees.SumForMonth(ctx, month)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	dashboardCache := dashboard.NewCache(redisClient, 10*time.Minute)
	dashboardService := dashboard.NewService(counters{
		students:  students.NewRepository(pool),
		staff:     staff.NewRepository(pool),
		elearning: elearning.NewRepository(pool),
		fees:      fees.NewRepository(pool),
	}, dashboardCache)

	sender := &jobs.SMTPSender{
		Addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		From: cfg.SMTPFrom,
	}
	mailJob := &jobs.SendEmailJob{Sender: sender, Logger: logger}
	warmupJob := jobs.NewDashboardWarmupJob(dashboardService, logger, nil)

	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskTypeDashboardWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 19 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
