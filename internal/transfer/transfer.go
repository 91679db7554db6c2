// Package transfer drives the streaming row loop: it pulls rows from a
// source cursor one at a time and hands each to a caller-supplied handler
// before requesting the next one.
//
// The loop is strictly synchronous and fail-fast. It performs no implicit
// recovery: a handler error aborts the run, the cursor is released, and no
// further rows are read. Callers wanting per-row skip/continue semantics
// implement them explicitly inside their handler.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dbmover/internal/cursor"
	"dbmover/internal/metrics"
	"dbmover/internal/row"
)

// RowFunc handles one source row. It may read fields, resolve domain-value
// maps, and issue any number of target statements, in order. The row is only
// valid until the function returns.
type RowFunc func(*row.Row) error

// Options tune a run. The zero value is usable.
type Options struct {
	// Log receives progress and summary events; nil means slog.Default().
	Log *slog.Logger

	// Job labels metrics and log events for this run.
	Job string

	// ProgressEvery emits a debug progress line every N rows; 0 means 10000.
	ProgressEvery int64
}

// Run opens a cursor over querySQL on src and invokes fn once per row, in
// source order, before fetching the next row (strict pull-based
// backpressure). It returns the number of rows handled.
//
// On any failure the cursor is closed and the error propagates; rows after
// the failing one are never read, let alone handled.
func Run(ctx context.Context, src cursor.Querier, querySQL string, fn RowFunc, opts Options) (int64, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = 10000
	}
	log = log.With("run_id", uuid.NewString(), "job", opts.Job)

	start := time.Now()
	cur, err := cursor.Open(ctx, src, querySQL)
	if err != nil {
		metrics.RecordStep(opts.Job, "transfer", err, time.Since(start))
		return 0, err
	}
	defer cur.Close()

	var (
		n        int64
		lastTS   = start
		lastRows int64
	)
	for {
		// Cancellation is checked before the fetch so an aborted run never
		// pulls another row from the source.
		if err := ctx.Err(); err != nil {
			return finish(log, opts.Job, n, start, err)
		}
		if !cur.Next() {
			break
		}
		if err := fn(cur.Row()); err != nil {
			return finish(log, opts.Job, n, start, fmt.Errorf("row %d: %w", n+1, err))
		}
		n++

		if n%every == 0 {
			now := time.Now()
			sinceLast := now.Sub(lastTS)
			rps := float64(0)
			if sinceLast > 0 {
				rps = float64(n-lastRows) / sinceLast.Seconds()
			}
			log.Debug("transfer progress",
				"rows", n,
				"rps", rps,
				"elapsed", now.Sub(start).Truncate(time.Millisecond),
			)
			lastTS = now
			lastRows = n
		}
	}
	if err := cur.Err(); err != nil {
		return finish(log, opts.Job, n, start, fmt.Errorf("source iteration after %d rows: %w", n, err))
	}

	log.Info("transfer complete",
		"rows", n,
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
	return finish(log, opts.Job, n, start, nil)
}

func finish(log *slog.Logger, job string, n int64, start time.Time, err error) (int64, error) {
	metrics.RecordRow(job, "transferred", n)
	metrics.RecordStep(job, "transfer", err, time.Since(start))
	if err != nil {
		log.Error("transfer aborted", "rows", n, "err", err)
	}
	return n, err
}
