package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/almanar-edu/almanar/internal/adminfn"
	"github.com/almanar-edu/almanar/internal/app"
	"github.com/almanar-edu/almanar/internal/content"
	"github.com/almanar-edu/almanar/internal/dashboard"
	"github.com/almanar-edu/almanar/internal/elearning"
	"github.com/almanar-edu/almanar/internal/fees"
	"github.com/almanar-edu/almanar/internal/guard"
	"github.com/almanar-edu/almanar/internal/identity"
	"github.com/almanar-edu/almanar/internal/observability"
	"github.com/almanar-edu/almanar/internal/platform/cache"
	"github.com/almanar-edu/almanar/internal/platform/storage"
	"github.com/almanar-edu/almanar/internal/roles"
	"github.com/almanar-edu/almanar/internal/shared"
	"github.com/almanar-edu/almanar/internal/staff"
	"github.com/almanar-edu/almanar/internal/students"
	"github.com/almanar-edu/almanar/jobs"
)

// studentLookup adapts the student repository to the fee module's directory
// port.
type studentLookup struct {
	repo students.RepositoryPort
}

func (d studentLookup) Lookup(ctx context.Context, id int64) (fees.StudentInfo, error) {
	s, err := d.repo.Get(ctx, id)
	if err != nil {
		return fees.StudentInfo{}, err
	}
	return fees.StudentInfo{FullName: s.FullName, AdmissionNo: s.AdmissionNo, ClassName: s.ClassName}, nil
}

// counters feeds the dashboard cards from the domain services.
type counters struct {
	students  *students.Service
	staff     *staff.Service
	elearning *elearning.Service
	fees      *fees.Service
}

func (c counters) CountStudents(ctx context.Context) (int64, error) { return c.students.Count(ctx) }
func (c counters) CountStaff(ctx context.Context) (int64, error)    { return c.staff.Count(ctx) }
func (c counters) CountLessons(ctx context.Context) (int64, error)  { return c.elearning.Count(ctx) }
func (c counters) FeesCollectedForMonth(ctx context.Context, month string) (int64, error) {
	return c.fees.CollectedForMonth(ctx, month)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	objectStore, err := storage.New(ctx, storage.Config{
		Endpoint:     cfg.S3Endpoint,
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		logger.Error("init object storage", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	tokenIssuer := identity.NewTokenIssuer([]byte(cfg.AuthTokenSecret), cfg.AuthTokenTTL)
	sessionManager := identity.NewSessionManager(redisClient, cfg.AuthTokenTTL)
	identityRepo := identity.NewRepository(dbpool)
	identityService := identity.NewService(identityRepo, tokenIssuer, sessionManager)
	identityHandler := identity.NewHandler(logger, identityService)

	roleStore := roles.NewStore(dbpool)
	roleService := roles.NewService(roleStore)

	guardMiddleware := guard.Middleware{Sessions: identityService, Fetcher: roleService, Logger: logger}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	adminFnHandler := adminfn.NewHandler(logger, identityService, identityService, roleStore, auditLogger, jobClient)

	studentsRepo := students.NewRepository(dbpool)
	studentsService := students.NewService(studentsRepo, objectStore, auditLogger, logger)
	studentsHandler := students.NewHandler(logger, studentsService)

	staffRepo := staff.NewRepository(dbpool)
	staffService := staff.NewService(staffRepo, auditLogger, logger)
	staffHandler := staff.NewHandler(logger, staffService)

	receiptQueue := &jobs.ReceiptQueue{
		Client: jobClient,
		Email: func(ctx context.Context, studentID int64) string {
			s, err := studentsRepo.Get(ctx, studentID)
			if err != nil {
				return ""
			}
			return s.GuardianEmail
		},
	}
	feesRepo := fees.NewRepository(dbpool)
	feesService := fees.NewService(feesRepo, studentLookup{repo: studentsRepo}, idempotencyStore, auditLogger, receiptQueue, logger)
	feesHandler := fees.NewHandler(logger, feesService)

	elearningRepo := elearning.NewRepository(dbpool)
	elearningService := elearning.NewService(elearningRepo)
	elearningHandler := elearning.NewHandler(logger, elearningService)

	contentRepo := content.NewRepository(dbpool)
	contentService := content.NewService(contentRepo, objectStore, logger)
	contentHandler := content.NewHandler(logger, contentService)

	dashboardCache := dashboard.NewCache(redisClient, 10*time.Minute)
	dashboardService := dashboard.NewService(counters{
		students:  studentsService,
		staff:     staffService,
		elearning: elearningService,
		fees:      feesService,
	}, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Guard:            guardMiddleware,
		IdentityHandler:  identityHandler,
		AdminFnHandler:   adminFnHandler,
		StudentsHandler:  studentsHandler,
		StaffHandler:     staffHandler,
		FeesHandler:      feesHandler,
		ElearningHandler: elearningHandler,
		ContentHandler:   contentHandler,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
