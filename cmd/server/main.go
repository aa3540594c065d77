package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/internal/config"
	"github.com/userdeskio/api/internal/infra/http"
	"github.com/userdeskio/api/internal/infra/jobs"
	"github.com/userdeskio/api/internal/infra/postgres"
	"github.com/userdeskio/api/internal/infra/redis"
	"github.com/userdeskio/api/pkg/domain/accesscontrol"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/password"
	"github.com/userdeskio/api/pkg/validator"
)

// permissionCacheTTL bounds how stale a cached permission snapshot may get;
// explicit invalidation handles the common paths.
const permissionCacheTTL = 5 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault().Error("failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer db.Close()
	log.Info("database connected")

	redisClient, err := redis.New(cfg.Redis, log)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return 1
	}
	defer redisClient.Close()
	log.Info("redis connected")

	permCache, err := redis.NewPermissionCache(redisClient, permissionCacheTTL)
	if err != nil {
		log.Error("failed to build permission cache", "error", err)
		return 1
	}

	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	jobClient := jobs.NewClient(jobs.ClientConfig{
		RedisAddr:     cfg.Redis.Addr(),
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	}, log)
	defer jobClient.Close()

	auditOpts := []app.AuditServiceOption{}
	if cfg.Audit.Async {
		auditOpts = append(auditOpts, app.WithAuditEnqueuer(jobClient))
	}
	auditSvc := app.NewAuditService(auditRepo, log, auditOpts...)

	roleSvc := app.NewRoleService(roleRepo, assignmentRepo, log,
		app.WithRoleRecorder(auditSvc),
		app.WithRoleInvalidator(permCache),
	)
	assignmentSvc := app.NewAssignmentService(assignmentRepo, roleRepo, userRepo, log,
		app.WithAssignmentRecorder(auditSvc),
		app.WithAssignmentInvalidator(permCache),
	)

	evaluator := accesscontrol.NewEvaluator(roleRepo, assignmentRepo, shared.SystemClock{})
	accessSvc := app.NewAccessService(evaluator, log, app.WithAccessCache(permCache))

	hasher := password.NewHasher(password.DefaultCost)
	userSvc := app.NewUserService(userRepo, hasher, log, app.WithUserInvalidator(permCache))
	authSvc := app.NewAuthService(userRepo, hasher, cfg.Auth, log)

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisAddr:     cfg.Redis.Addr(),
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		Concurrency:   cfg.Jobs.Concurrency,
	}, auditRepo, assignmentSvc, log)

	scheduler, err := jobs.NewScheduler(jobClient, cfg.Jobs.SweepSchedule, log)
	if err != nil {
		log.Error("failed to build scheduler", "error", err)
		return 1
	}

	server := http.NewServer(cfg, log)
	http.RegisterRoutes(server.Router(), http.Deps{
		Auth:        authSvc,
		Users:       userSvc,
		Roles:       roleSvc,
		Assignments: assignmentSvc,
		Access:      accessSvc,
		Audit:       auditSvc,
		DB:          db,
		Redis:       redisClient,
		Validator:   validator.New(),
		Logger:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("application error", "error", err)
		return 1
	}
	log.Info("stopped cleanly")
	return 0
}
