package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// poolOptions bound a single fan-out.
type poolOptions struct {
	Workers        int
	RequestTimeout time.Duration
	// RateLimitRPS is a global limit across all workers. Set to <=0 to disable.
	RateLimitRPS float64
}

// processAll runs process once per item on a fixed number of workers and
// returns the outputs in input order. Items not yet started when ctx ends, or
// that cannot get a rate-limit token, get skipped(item) instead.
func processAll[In any, Out any](
	ctx context.Context,
	items []In,
	process func(context.Context, In) Out,
	skipped func(In) Out,
	opts poolOptions,
) []Out {
	out := make([]Out, len(items))
	if len(items) == 0 {
		return out
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out[idx] = processOne(ctx, items[idx], process, skipped, limiter, opts.RequestTimeout)
			}
		}()
	}

	for idx := range items {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return out
}

func processOne[In any, Out any](
	ctx context.Context,
	item In,
	process func(context.Context, In) Out,
	skipped func(In) Out,
	limiter *rate.Limiter,
	timeout time.Duration,
) Out {
	if ctx.Err() != nil {
		return skipped(item)
	}
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return skipped(item)
		}
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return process(reqCtx, item)
}
