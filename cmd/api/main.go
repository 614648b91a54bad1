package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gitanomongolomon/gmm-site/internal/api/http"
	"github.com/gitanomongolomon/gmm-site/internal/api/http/handlers"
	"github.com/gitanomongolomon/gmm-site/internal/auth"
	"github.com/gitanomongolomon/gmm-site/internal/blob"
	"github.com/gitanomongolomon/gmm-site/internal/chat"
	"github.com/gitanomongolomon/gmm-site/internal/config"
	"github.com/gitanomongolomon/gmm-site/internal/events"
	"github.com/gitanomongolomon/gmm-site/internal/observability"
	"github.com/gitanomongolomon/gmm-site/internal/persistence"
	"github.com/gitanomongolomon/gmm-site/internal/repository"
	"github.com/gitanomongolomon/gmm-site/internal/service"
	"github.com/gitanomongolomon/gmm-site/internal/telemetry"
	"github.com/gitanomongolomon/gmm-site/internal/worker"
)

const bodyLimit = 25 * 1024 * 1024

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

	for _, off := range cfg.Disabled() {
		logger.Warn("subsystem disabled", zap.String("subsystem", off))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Configured() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo repository.TicketRepository
		updateRepo repository.UpdateRepository
	)
	if pg.Configured() {
		ticketRepo = repository.NewTicketRepository(pg.PoolHandle())
		updateRepo = repository.NewUpdateRepository(pg.PoolHandle())
	}

	blobs, memoryBlobs, closeBlobs, err := newBlobStore(ctx, cfg.Blob, logger)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}
	defer closeBlobs()

	revocations := auth.NewMemoryRevocationStore()
	var snapshots telemetry.SnapshotCache
	if redis.Configured() {
		revocations = auth.NewRedisRevocationStore(redis.Client)
		snapshots = telemetry.NewRedisSnapshotCache(redis.Client)
	}

	authService, err := service.NewAuthService(cfg.Auth, revocations)
	if err != nil {
		logger.Fatal("failed to init auth", zap.Error(err))
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		Blobs:        blobs,
		Bucket:       cfg.Blob.TicketsBucket,
		SignedURLTTL: cfg.Blob.SignedURLTTL(),
		Logger:       logger.Named("tickets"),
	})
	updateService := service.NewUpdateService(service.UpdateDependencies{
		UpdateRepo: updateRepo,
		Blobs:      blobs,
		Bucket:     cfg.Blob.UpdatesBucket,
		Logger:     logger.Named("updates"),
	})
	feedService := service.NewFeedService(updateRepo)

	var generator chat.Generator
	if cfg.Chat.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiGenerator(ctx, cfg.Chat.GeminiAPIKey, cfg.Chat.Model, cfg.Chat.Temperature, cfg.Chat.MaxOutputTokens)
		if err != nil {
			logger.Error("chat assistant unavailable", zap.Error(err))
		} else {
			generator = gemini
		}
	}
	chatService := chat.NewService(generator, logger.Named("chat"))

	metrics := observability.NewMetrics()
	monitor := telemetry.NewMonitor(cfg.Telemetry.ServerHost, telemetry.NewStatusClient(cfg.Telemetry.APIBase),
		snapshots, cfg.Telemetry.PollInterval(), logger.Named("telemetry"))
	monitor.Observe(metrics.RecordRefresh)

	dispatcher := events.NewInMemoryDispatcher()
	bg := worker.Background{
		Notifications: service.NewNotificationService(dispatcher, logger.Named("notifications"), cfg.Notification),
		Monitor:       monitor,
	}
	if pg.Configured() {
		bg.Listener = persistence.NewListener(pg.PoolHandle(), dispatcher, logger.Named("listener"))
	}
	waitWorkers := worker.Start(ctx, bg, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics, cfg.Disabled()),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.CookieSecure),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Updates:        handlers.NewUpdatesHandler(feedService, updateService),
		Stream:         handlers.NewStreamHandler(ctx, dispatcher, logger.Named("stream")),
		Telemetry:      handlers.NewTelemetryHandler(monitor),
		Chat:           handlers.NewChatHandler(chatService),
		OG:             handlers.NewOGHandler(feedService, cfg.Site.Origin, logger.Named("og")),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		StaticDir:      cfg.Site.StaticDir,
	}
	if memoryBlobs != nil {
		routes.Blobs = handlers.NewBlobsHandler(memoryBlobs)
	}
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	waitWorkers()
}

func newBlobStore(ctx context.Context, cfg config.BlobConfig, logger *zap.Logger) (blob.Store, *blob.MemoryStore, func(), error) {
	if cfg.Backend == "gcs" {
		store, err := blob.NewGCSStore(ctx, cfg.CredentialsFile, cfg.Public)
		if err != nil {
			return nil, nil, func() {}, err
		}
		logger.Info("using gcs blob store")
		return store, nil, func() { _ = store.Close() }, nil
	}
	logger.Warn("using in-memory blob store; uploads are lost on restart")
	store := blob.NewMemoryStore(cfg.MemoryBaseURL, cfg.Public)
	return store, store, func() {}, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
