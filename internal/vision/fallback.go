package vision

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"cardenrich/internal/port"
)

// circuitState tracks rate-limit backoff for a single model.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackModel tries models in order, skipping those with open circuits.
// It implements port.VisionModel.
type FallbackModel struct {
	models   []port.VisionModel
	circuits []*circuitState
	names    []string
	log      *zap.Logger
	now      func() time.Time
}

// NewFallbackModel creates a FallbackModel from an ordered list of models and their names.
func NewFallbackModel(models []port.VisionModel, names []string, logger *zap.Logger) *FallbackModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	circuits := make([]*circuitState, len(models))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackModel{
		models:   models,
		circuits: circuits,
		names:    names,
		log:      logger.Named("vision.fallback"),
		now:      time.Now,
	}
}

func (f *FallbackModel) Describe(ctx context.Context, req port.VisionRequest) (*port.VisionResponse, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, m := range f.models {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Debug("vision.fallback.skip",
				zap.String("provider", f.names[i]),
				zap.Time("reset_at", resetAt),
			)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := m.Describe(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(err, "vision call canceled")
		}

		f.log.Warn("vision.fallback.provider_failed", zap.String("provider", f.names[i]), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", errors.New("all vision models rate limited"), int(retryAfter.Seconds()))
	}

	return nil, errors.Wrap(lastErr, "all vision models failed")
}
