package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktrack/api/handler"
	"github.com/fastygo/tasktrack/internal/config"
	"github.com/fastygo/tasktrack/internal/infrastructure/buffer"
	"github.com/fastygo/tasktrack/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasktrack/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktrack/internal/infrastructure/redis"
	"github.com/fastygo/tasktrack/internal/metrics"
	"github.com/fastygo/tasktrack/internal/middleware"
	"github.com/fastygo/tasktrack/internal/router"
	"github.com/fastygo/tasktrack/internal/services"
	"github.com/fastygo/tasktrack/internal/services/shutdown"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
	"github.com/fastygo/tasktrack/pkg/logger"
	"github.com/fastygo/tasktrack/repository/postgres"
	redisRepo "github.com/fastygo/tasktrack/repository/redis"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
	memberUC "github.com/fastygo/tasktrack/usecase/member"
	projectUC "github.com/fastygo/tasktrack/usecase/project"
	taskUC "github.com/fastygo/tasktrack/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("config error: JWT_SECRET is required")
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  "tasktrack-api",
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := shutdown.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer", cfg.Buffer.MaxSize)
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(cfg.Health.ProbeInterval, zapLogger, bufferStore,
		monitor.RecordStore(pool),
		monitor.RunLock(redisClient),
		monitor.WriteBuffer(bufferStore),
	)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	invitationRepo := postgres.NewInvitationRepository(pool)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		taskRepo,
		memberRepo,
		activityRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	if err := bufferProcessor.Start(); err != nil {
		zapLogger.Fatal("buffer processor failed to start", zap.Error(err))
	}
	manager.Register("buffer_processor", bufferProcessor.Stop)

	appMetrics := metrics.New(func() float64 { return float64(bufferProcessor.Size()) })

	recalculator := services.NewRecalculator(taskRepo, zapLogger,
		services.RecalcConfig{
			Schedule: cfg.Recalc.Schedule,
			PageSize: cfg.Recalc.PageSize,
			LockKey:  cfg.Recalc.LockKey,
			LockTTL:  cfg.Recalc.LockTTL,
			Timeout:  cfg.Recalc.Timeout,
		},
		services.WithRecalcLocker(redisRepo.NewLocker(redisClient)),
		services.WithRecalcMetrics(appMetrics),
	)
	if cfg.Recalc.Enabled {
		if err := recalculator.Start(); err != nil {
			zapLogger.Fatal("recalculation job failed to start", zap.Error(err))
		}
		manager.Register("recalc", recalculator.Stop)
	}

	engine := lifecycle.New(nil)
	bufferBridge := services.NewBufferBridge(bufferProcessor)

	taskUseCase := taskUC.New(engine, taskRepo, memberRepo,
		taskUC.WithBuffer(bufferBridge),
		taskUC.WithActivities(activityRepo),
		taskUC.WithRecorder(appMetrics),
		taskUC.WithLogger(zapLogger),
	)
	memberUseCase := memberUC.New(engine, memberRepo, userRepo,
		memberUC.WithBuffer(bufferBridge),
		memberUC.WithActivities(activityRepo),
		memberUC.WithInvitations(invitationRepo),
		memberUC.WithRecorder(appMetrics),
		memberUC.WithLogger(zapLogger),
	)
	projectUseCase := projectUC.New(engine, projectRepo, memberRepo, userRepo, activityRepo, appMetrics, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Member:  apiHandler.NewMemberHandler(memberUseCase, ctxAdapter, zapLogger),
		Project: apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = appMetrics.Handler()
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{
		MetricsPath: cfg.Metrics.Path,
		EnablePprof: cfg.HTTP.EnablePprof,
	})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
