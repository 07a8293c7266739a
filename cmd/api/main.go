package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-scoring-service/internal/api/http"
	"github.com/spec-kit/user-scoring-service/internal/api/http/handlers"
	"github.com/spec-kit/user-scoring-service/internal/config"
	"github.com/spec-kit/user-scoring-service/internal/events"
	"github.com/spec-kit/user-scoring-service/internal/observability"
	"github.com/spec-kit/user-scoring-service/internal/repository"
	"github.com/spec-kit/user-scoring-service/internal/service"
	"github.com/spec-kit/user-scoring-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	engine := service.NewUserService(service.UserDependencies{
		Registry:   repository.NewUserRegistry(),
		Dispatcher: dispatcher,
	})

	auditWorker := worker.NewAuditWorker(dispatcher, logger)
	auditWorker.Start()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	// the engine itself is not safe for concurrent use; both handlers
	// serialize on this mutex
	var engineMu sync.Mutex
	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, engine, &engineMu)
	usersHandler := handlers.NewUsersHandler(engine, &engineMu)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: healthHandler,
		Users:  usersHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
