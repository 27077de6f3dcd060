package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cardenrich/internal/config"
	"cardenrich/internal/extraction"
	"cardenrich/internal/handler"
	"cardenrich/internal/logging"
	"cardenrich/internal/pipeline"
	"cardenrich/internal/port"
	"cardenrich/internal/router"
	"cardenrich/internal/service"
	s3storage "cardenrich/internal/storage/s3"
	"cardenrich/internal/vision"

	// Register vision providers
	_ "cardenrich/internal/vision/claude"
	_ "cardenrich/internal/vision/gemini"
	_ "cardenrich/internal/vision/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return errors.Wrap(err, "failed to build logger")
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize vision model
	model, err := vision.NewFromConfig(&cfg.Vision, logger)
	if err != nil {
		return errors.Wrap(err, "failed to initialize vision model")
	}

	// Initialize storage
	var signer port.URLSigner
	var objects port.ObjectReader
	if cfg.S3.Enabled {
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return errors.Wrap(err, "failed to initialize S3 client")
		}
		signer, objects = s3Client, s3Client
	}

	// Initialize pipeline
	fields := cfg.Pipeline.FieldSet()
	client, err := extraction.New(model, extraction.Options{
		Fields:        fields,
		Signer:        signer,
		PresignExpiry: cfg.S3.PresignExpiry,
		Logger:        logger,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize extraction client")
	}
	orchestrator := pipeline.New(client, pipeline.Options{
		Concurrency:    cfg.Pipeline.Concurrency,
		RequestTimeout: cfg.Pipeline.RequestTimeout,
		RateLimitRPS:   cfg.Pipeline.RateLimitRPS,
	}, logger)

	// Initialize services
	enrichSvc := service.NewEnrichmentService(orchestrator, objects, logger)

	// Initialize handlers
	extractH := handler.NewExtractHandler(enrichSvc, cfg.Server.MaxUploadMB<<20, logger)
	healthH := handler.NewHealthHandler(cfg.Vision.Provider, fields)

	// Setup router
	r := router.Setup(extractH, healthH, cfg.CORS.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("provider", cfg.Vision.Provider),
			zap.String("fields", string(fields)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "server failed")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}
