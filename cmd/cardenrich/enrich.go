package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cardenrich/internal/config"
	"cardenrich/internal/domain"
	"cardenrich/internal/extraction"
	"cardenrich/internal/logging"
	"cardenrich/internal/pipeline"
	"cardenrich/internal/port"
	"cardenrich/internal/service"
	s3storage "cardenrich/internal/storage/s3"
	"cardenrich/internal/vision"
)

var (
	enrichInput       string
	enrichOutput      string
	enrichFormat      string
	enrichFields      string
	enrichConcurrency int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich one sheet and write the result",
	Long: `Enrich one sheet read from a local file or an s3://bucket/key reference.

The result goes to --output, or to stdout when no output path is given.
Records whose image could not be read keep their row with empty extracted columns.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichInput, "input", "i", "", "Input CSV path or s3://bucket/key reference")
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "", "Output path (default: stdout)")
	enrichCmd.Flags().StringVarP(&enrichFormat, "format", "f", "csv", "Output format: csv or xlsx")
	enrichCmd.Flags().StringVar(&enrichFields, "fields", "", "Field set: contact or full (default: from config)")
	enrichCmd.Flags().IntVarP(&enrichConcurrency, "concurrency", "c", 0, "Concurrent vision calls (default: from config)")
	_ = enrichCmd.MarkFlagRequired("input")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	format, err := domain.ParseOutputFormat(enrichFormat)
	if err != nil {
		return errors.Wrapf(err, "--format=%q", enrichFormat)
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if enrichFields != "" {
		cfg.Pipeline.Fields = enrichFields
	}
	if enrichConcurrency > 0 {
		cfg.Pipeline.Concurrency = enrichConcurrency
	}
	if domain.IsObjectRef(enrichInput) {
		cfg.S3.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return errors.Wrap(err, "failed to build logger")
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var result *service.EnrichResult
	if domain.IsObjectRef(enrichInput) {
		result, err = svc.EnrichObject(ctx, enrichInput, format)
	} else {
		result, err = enrichFile(ctx, svc, enrichInput, format)
	}
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), enrichOutput, result.Body); err != nil {
		return err
	}
	logger.Info("cli.enrich.done",
		zap.String("input", enrichInput),
		zap.String("output", enrichOutput),
		zap.Int("records", result.Records),
		zap.Int("degraded", result.Summary.Degraded),
	)
	return nil
}

func buildService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.EnrichmentService, error) {
	model, err := vision.NewFromConfig(&cfg.Vision, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize vision model")
	}

	var signer port.URLSigner
	var objects port.ObjectReader
	if cfg.S3.Enabled {
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize S3 client")
		}
		signer, objects = s3Client, s3Client
	}

	client, err := extraction.New(model, extraction.Options{
		Fields:        cfg.Pipeline.FieldSet(),
		Signer:        signer,
		PresignExpiry: cfg.S3.PresignExpiry,
		Logger:        logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize extraction client")
	}
	orchestrator := pipeline.New(client, pipeline.Options{
		Concurrency:    cfg.Pipeline.Concurrency,
		RequestTimeout: cfg.Pipeline.RequestTimeout,
		RateLimitRPS:   cfg.Pipeline.RateLimitRPS,
	}, logger)

	return service.NewEnrichmentService(orchestrator, objects, logger), nil
}

func enrichFile(ctx context.Context, svc service.EnrichmentService, path string, format domain.OutputFormat) (*service.EnrichResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return svc.EnrichUpload(ctx, f, format)
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
