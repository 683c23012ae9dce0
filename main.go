package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/vitovidale/video-upload-gateway/config"
	"github.com/vitovidale/video-upload-gateway/domain"
	"github.com/vitovidale/video-upload-gateway/infrastructure"
	"github.com/vitovidale/video-upload-gateway/usecase"
)

const (
	connectAttempts = 5
	connectDelay    = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "video-gateway",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogJSON,
	})
	if logger.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger hclog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := infrastructure.NewLocalFileStorage(cfg.StorageLocation, logger.Named("storage"))
	if err != nil {
		return err
	}

	repo, err := openRepository(ctx, cfg, logger.Named("metadata"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Close(closeCtx); err != nil {
			logger.Warn("failed to close metadata store", "error", err)
		}
	}()

	metrics := infrastructure.NewMetrics()

	checks := []infrastructure.HealthCheck{
		{Name: "database", Check: repo.Ping},
		{Name: "storage", Check: func(context.Context) error { return storage.CheckWritable() }},
	}

	notifier, closeNotifier, err := openNotifier(ctx, cfg, logger.Named("analysis"))
	if err != nil {
		return err
	}
	defer closeNotifier()
	if rmq, ok := notifier.(*infrastructure.RabbitMQAnalysisNotifier); ok {
		checks = append(checks, infrastructure.HealthCheck{Name: "rabbitmq", Check: func(context.Context) error {
			if !rmq.Connected() {
				return errors.New("disconnected")
			}
			return nil
		}})
	}

	dispatcher := infrastructure.NewAnalysisDispatcher(notifier, cfg.NotifyWorkers, cfg.NotifyQueueSize,
		cfg.AnalysisTimeout, logger.Named("analysis"), metrics)

	handlers := infrastructure.NewVideoHandlers(
		usecase.NewUploadVideoUseCase(repo, storage, dispatcher, logger.Named("upload")),
		usecase.NewDeleteVideoUseCase(repo, storage, logger.Named("delete")),
		usecase.NewGetVideoUseCase(repo),
		metrics,
		logger.Named("http"),
	)
	router := infrastructure.NewRouter(handlers, &infrastructure.HealthHandler{Checks: checks}, metrics,
		logger.Named("http"), cfg.MaxUploadBytes)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("video gateway listening", "port", cfg.Port, "storage", storage.Root(),
			"metadata", cfg.MetadataBackend, "notifier", cfg.Notifier)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("pending analysis notifications abandoned", "error", err)
	}
	return nil
}

func openRepository(ctx context.Context, cfg config.Config, logger hclog.Logger) (domain.VideoRepository, error) {
	var repo domain.VideoRepository
	connect := func(what string, fn func(ctx context.Context) (domain.VideoRepository, error)) error {
		return infrastructure.Retry(ctx, logger, what, connectAttempts, connectDelay, func(ctx context.Context) error {
			r, err := fn(ctx)
			if err == nil {
				repo = r
			}
			return err
		})
	}

	var err error
	switch cfg.MetadataBackend {
	case config.BackendMongo:
		err = connect("mongodb", func(ctx context.Context) (domain.VideoRepository, error) {
			return infrastructure.NewMongoVideoRepository(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		})
	case config.BackendPostgres:
		p := cfg.Postgres
		connStr := infrastructure.PostgresConnString(p.Host, p.Port, p.User, p.Password, p.Name)
		err = connect("postgres", func(ctx context.Context) (domain.VideoRepository, error) {
			return infrastructure.NewPostgresVideoRepository(ctx, connStr)
		})
	case config.BackendSQLite:
		repo, err = infrastructure.NewSQLiteVideoRepository(ctx, cfg.SQLitePath)
	case config.BackendMemory:
		logger.Warn("using in-memory metadata store, records are lost on restart")
		repo = infrastructure.NewMemoryVideoRepository()
	default:
		err = fmt.Errorf("unknown metadata backend %q", cfg.MetadataBackend)
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openNotifier(ctx context.Context, cfg config.Config, logger hclog.Logger) (domain.AnalysisNotifier, func(), error) {
	nop := func() {}
	switch cfg.Notifier {
	case config.NotifierHTTP:
		if cfg.AnalysisServiceURL == "" {
			logger.Warn("VIDEO_ANALYSIS_SERVICE_URL not set, analysis notifications disabled")
			return infrastructure.NopAnalysisNotifier{Logger: logger}, nop, nil
		}
		client := &http.Client{Timeout: cfg.AnalysisTimeout}
		return infrastructure.NewHTTPAnalysisNotifier(cfg.AnalysisServiceURL, client), nop, nil
	case config.NotifierRabbitMQ:
		r := cfg.RabbitMQ
		amqpURL := infrastructure.RabbitMQURL(r.User, r.Pass, r.Host, r.Port)
		var notifier *infrastructure.RabbitMQAnalysisNotifier
		err := infrastructure.Retry(ctx, logger, "rabbitmq", connectAttempts, connectDelay, func(context.Context) error {
			n, err := infrastructure.NewRabbitMQAnalysisNotifier(amqpURL, r.Queue)
			if err == nil {
				notifier = n
			}
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		return notifier, func() {
			if err := notifier.Close(); err != nil {
				logger.Warn("failed to close rabbitmq connection", "error", err)
			}
		}, nil
	default:
		return infrastructure.NopAnalysisNotifier{Logger: logger}, nop, nil
	}
}
