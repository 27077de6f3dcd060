package service

import (
	"bytes"
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"cardenrich/internal/csvexport"
	"cardenrich/internal/domain"
	"cardenrich/internal/pipeline"
	"cardenrich/internal/port"
	"cardenrich/internal/xlsxexport"
)

const csvContentType = "text/csv"

// EnrichResult is a rendered enrichment batch ready to return to a caller.
type EnrichResult struct {
	Body        []byte
	ContentType string
	Filename    string
	Records     int
	Summary     pipeline.Summary
}

// BatchRunner parses and enriches one uploaded sheet. *pipeline.Orchestrator satisfies it.
type BatchRunner interface {
	Run(ctx context.Context, src io.Reader) (*pipeline.Batch, error)
}

// EnrichmentService defines the upload enrichment contract.
type EnrichmentService interface {
	EnrichUpload(ctx context.Context, src io.Reader, format domain.OutputFormat) (*EnrichResult, error)
	EnrichObject(ctx context.Context, ref string, format domain.OutputFormat) (*EnrichResult, error)
}

type enrichmentService struct {
	runner  BatchRunner
	objects port.ObjectReader
	log     *zap.Logger
}

// NewEnrichmentService creates a new EnrichmentService. objects may be nil, in
// which case EnrichObject is unavailable.
func NewEnrichmentService(runner BatchRunner, objects port.ObjectReader, logger *zap.Logger) EnrichmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &enrichmentService{
		runner:  runner,
		objects: objects,
		log:     logger.Named("service.enrichment"),
	}
}

func (s *enrichmentService) EnrichUpload(ctx context.Context, src io.Reader, format domain.OutputFormat) (*EnrichResult, error) {
	if format == "" {
		format = domain.OutputFormatCSV
	}
	if format != domain.OutputFormatCSV && format != domain.OutputFormatXLSX {
		return nil, errors.Wrapf(domain.ErrUnsupportedFormat, "format %q", format)
	}

	batch, err := s.runner.Run(ctx, src)
	if err != nil {
		return nil, err
	}

	result := &EnrichResult{Records: len(batch.Records), Summary: batch.Summary}
	switch format {
	case domain.OutputFormatXLSX:
		body, err := xlsxexport.Render(batch.Records, batch.Fields)
		if err != nil {
			return nil, errors.Wrap(err, "rendering xlsx")
		}
		result.Body = body
		result.ContentType = xlsxexport.ContentType
		result.Filename = "enriched.xlsx"
	default:
		result.Body = csvexport.Render(batch.Records, batch.Fields)
		result.ContentType = csvContentType
		result.Filename = "enriched.csv"
	}

	s.log.Info("service.enrichment.rendered",
		zap.String("format", string(format)),
		zap.Int("records", result.Records),
		zap.Int("bytes", len(result.Body)),
	)
	return result, nil
}

func (s *enrichmentService) EnrichObject(ctx context.Context, ref string, format domain.OutputFormat) (*EnrichResult, error) {
	if s.objects == nil {
		return nil, errors.Newf("cannot read %s: object storage is not configured", ref)
	}
	bucket, key, err := domain.ParseObjectRef(ref)
	if err != nil {
		return nil, err
	}
	data, err := s.objects.Download(ctx, bucket, key)
	if err != nil {
		return nil, &pipeline.BatchFailureError{Err: err}
	}
	return s.EnrichUpload(ctx, bytes.NewReader(data), format)
}
