package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/taskmanager/task-api/internal/api"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
	mongodb "github.com/taskmanager/task-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskmanager/task-api/internal/infrastructure/db/redis"
	"github.com/taskmanager/task-api/internal/infrastructure/imaging"
	"github.com/taskmanager/task-api/internal/infrastructure/queue"
	"github.com/taskmanager/task-api/internal/pkg/config"
	"github.com/taskmanager/task-api/pkg/logger"
)

var inMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create MongoDB indexes and exit",
	RunE:  runIndexes,
}

func setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})
	return cfg, log, nil
}

func runIndexes(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, mongodb.NewUserRepository(db), mongodb.NewTaskRepository(db)); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ensured")
	return nil
}

// backend is the storage and notification wiring the services run on.
type backend struct {
	users     ports.UserRepository
	tasks     ports.TaskRepository
	notifier  ports.Notifier
	readiness *handler.ReadinessHandler
	close     func()
}

// connectBackend dials MongoDB and Redis and starts the notification workers
// on workerCtx.
func connectBackend(ctx, workerCtx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}

	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, taskRepo); err != nil {
		_ = rdb.Close()
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}

	dispatcher := queue.NewDispatcher(cfg.Notify.Workers,
		redisdb.NewNotificationPublisher(rdb),
		logger.Component(log, "notifications"))
	dispatcher.Start(workerCtx)

	return &backend{
		users:     userRepo,
		tasks:     taskRepo,
		notifier:  dispatcher,
		readiness: handler.NewReadinessHandler(mongoClient, rdb),
		close: func() {
			dispatcher.Wait()
			_ = rdb.Close()
			_ = mongoClient.Disconnect(context.Background())
		},
	}, nil
}

// memoryBackend keeps everything in process. Notifications are not sent.
func memoryBackend() *backend {
	return &backend{
		users:     memory.NewUserRepository(),
		tasks:     memory.NewTaskRepository(),
		readiness: handler.NewReadinessHandler(nil, nil),
		close:     func() {},
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}

	// Workers outlive ctx so that notifications enqueued while the server
	// drains still go out; they are stopped once it has.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var be *backend
	if inMemory {
		log.Warn().Msg("running with in-memory storage; data is lost on exit")
		be = memoryBackend()
	} else if be, err = connectBackend(ctx, workerCtx, cfg, log); err != nil {
		return err
	}
	defer func() {
		stopWorkers()
		be.close()
	}()

	// --- Services ---
	users := service.NewUserService(be.users, cfg.BcryptCost, logger.Component(log, "users"))
	tokens := service.NewTokenService(be.users, cfg.JWTSecret, cfg.TokenTTL)
	auth := service.NewAuthService(users, tokens, be.notifier, logger.Component(log, "auth"))
	cascade := service.NewCascadeCoordinator(be.users, be.tasks, be.notifier, logger.Component(log, "cascade"))
	avatars := service.NewAvatarService(be.users, imaging.NewResizer(), logger.Component(log, "avatars"))
	tasks := service.NewTaskService(be.tasks, logger.Component(log, "tasks"))

	e := api.NewRouter(api.Dependencies{
		Auth:      auth,
		Sessions:  tokens,
		Profiles:  users,
		Accounts:  cascade,
		Avatars:   avatars,
		Tasks:     tasks,
		Readiness: be.readiness,
		Logger:    logger.Component(log, "http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("stopped")
	return nil
}
