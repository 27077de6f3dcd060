// Package pipeline fans extraction out across the records of one upload and
// reassembles the enriched records in input order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"cardenrich/internal/domain"
	"cardenrich/internal/extraction"
	"cardenrich/internal/records"
)

// Extractor produces the fields for one image reference. *extraction.Client satisfies it.
type Extractor interface {
	Extract(ctx context.Context, imageURL string) (domain.ExtractedFields, extraction.Outcome)
	Fields() domain.FieldSet
}

// Options bound a batch run.
type Options struct {
	Concurrency    int
	RequestTimeout time.Duration
	RateLimitRPS   float64
}

const (
	defaultConcurrency    = 8
	defaultRequestTimeout = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	return o
}

// BatchFailureError means the input source failed mid-read. No partial output is produced.
type BatchFailureError struct {
	Err error
}

func (e *BatchFailureError) Error() string {
	return fmt.Sprintf("%v: %v", domain.ErrBatchFailure, e.Err)
}

func (e *BatchFailureError) Unwrap() error {
	return e.Err
}

// Is reports whether target is domain.ErrBatchFailure.
func (e *BatchFailureError) Is(target error) bool {
	return target == domain.ErrBatchFailure
}

// Summary counts how each record's fields were obtained.
type Summary struct {
	Total     int
	Decoded   int
	Recovered int
	Degraded  int
	Elapsed   time.Duration
}

func (s *Summary) add(o extraction.Outcome) {
	s.Total++
	switch o {
	case extraction.OutcomeDecoded:
		s.Decoded++
	case extraction.OutcomeRecovered:
		s.Recovered++
	default:
		s.Degraded++
	}
}

// Batch is the result of one Run.
type Batch struct {
	Records []domain.EnrichedRecord
	Fields  domain.FieldSet
	Summary Summary
}

// Orchestrator runs one extraction per record with bounded concurrency.
type Orchestrator struct {
	extractor Extractor
	opts      Options
	log       *zap.Logger
}

// New creates an Orchestrator.
func New(extractor Extractor, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		extractor: extractor,
		opts:      opts.withDefaults(),
		log:       logger.Named("pipeline"),
	}
}

// Fields returns the field set the underlying extractor emits.
func (o *Orchestrator) Fields() domain.FieldSet {
	return o.extractor.Fields()
}

type result struct {
	record  domain.EnrichedRecord
	outcome extraction.Outcome
}

// Enrich extracts fields for every record. The output has the same length and
// order as in; records not processed before ctx ends carry empty fields.
func (o *Orchestrator) Enrich(ctx context.Context, in []domain.InputRecord) ([]domain.EnrichedRecord, Summary) {
	start := time.Now()

	results := processAll(ctx, in,
		func(ctx context.Context, rec domain.InputRecord) result {
			fields, outcome := o.extractor.Extract(ctx, rec.ImageURL)
			return result{record: domain.EnrichedRecord{InputRecord: rec, ExtractedFields: fields}, outcome: outcome}
		},
		func(rec domain.InputRecord) result {
			return result{record: domain.EnrichedRecord{InputRecord: rec}, outcome: extraction.OutcomeDegraded}
		},
		poolOptions{
			Workers:        o.opts.Concurrency,
			RequestTimeout: o.opts.RequestTimeout,
			RateLimitRPS:   o.opts.RateLimitRPS,
		},
	)

	var summary Summary
	out := make([]domain.EnrichedRecord, len(results))
	for i, r := range results {
		out[i] = r.record
		summary.add(r.outcome)
	}
	summary.Elapsed = time.Since(start)

	o.log.Info("pipeline.enrich.done",
		zap.Int("total", summary.Total),
		zap.Int("decoded", summary.Decoded),
		zap.Int("recovered", summary.Recovered),
		zap.Int("degraded", summary.Degraded),
		zap.Duration("elapsed", summary.Elapsed),
		zap.Bool("canceled", ctx.Err() != nil),
	)
	return out, summary
}

// Run parses src and enriches every record. All records are read before the
// first extraction call. A bad header yields *records.MalformedInputError; a
// read failure after the header yields *BatchFailureError.
func (o *Orchestrator) Run(ctx context.Context, src io.Reader) (*Batch, error) {
	reader, err := records.NewReader(src)
	if err != nil {
		var malformed *records.MalformedInputError
		if errors.As(err, &malformed) {
			return nil, err
		}
		return nil, &BatchFailureError{Err: err}
	}

	var in []domain.InputRecord
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &BatchFailureError{Err: err}
		}
		in = append(in, rec)
	}
	o.log.Debug("pipeline.run.parsed", zap.Int("records", len(in)))

	out, summary := o.Enrich(ctx, in)
	return &Batch{Records: out, Fields: o.extractor.Fields(), Summary: summary}, nil
}
