package tasks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

// BulkOpts tunes [Gateway.BulkUpdate].
type BulkOpts struct {
	Workers   int     // concurrent requests, default 4
	RateLimit float64 // requests per second, 0 for no limit
}

// BulkEntryResult is the outcome for one id.
type BulkEntryResult struct {
	ID    uint
	Entry models.Entry
	Err   error
}

// BulkResult summarises a bulk update. Results are in input order.
type BulkResult struct {
	Results   []BulkEntryResult
	Succeeded int
	Failed    int
}

// BulkUpdate applies the same update to many cached entries. Each entry goes
// through [Gateway.UpdateByID], so each gets its own notification. A
// cancelled ctx stops entries that have not started yet.
func (g *Gateway) BulkUpdate(ctx context.Context, progress chan<- ProgressUpdate, ids []uint, u Update, opts BulkOpts) (*BulkResult, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	total := len(ids)
	sendProgress(progress, queuedUpdate(total))

	var done atomic.Int64
	p := pool.NewWithResults[BulkEntryResult]().WithMaxGoroutines(opts.Workers)
	for _, id := range ids {
		p.Go(func() BulkEntryResult {
			if err := limiter.Wait(ctx); err != nil {
				return BulkEntryResult{ID: id, Err: err}
			}
			r := g.UpdateByID(ctx, id, u)
			step := int(done.Add(1))
			if r.OK() {
				sendProgress(progress, entryUpdatedUpdate(step, total, r.Value))
			} else {
				sendProgress(progress, entryFailedUpdate(step, total, id, r.Err))
			}
			return BulkEntryResult{ID: id, Entry: r.Value, Err: r.Err}
		})
	}
	collected := p.Wait()

	// The pool returns results in completion order.
	byID := make(map[uint][]BulkEntryResult, len(collected))
	for _, r := range collected {
		byID[r.ID] = append(byID[r.ID], r)
	}
	result := &BulkResult{Results: make([]BulkEntryResult, 0, total)}
	for _, id := range ids {
		r := byID[id][0]
		byID[id] = byID[id][1:]
		result.Results = append(result.Results, r)
		if r.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.Succeeded == 0 && result.Failed > 0 {
		return result, errors.Join(firstErrors(result.Results)...)
	}
	return result, nil
}

func firstErrors(results []BulkEntryResult) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
		if len(errs) == 3 {
			break
		}
	}
	return errs
}
