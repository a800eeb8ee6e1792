// Package deleter accumulates deletable message ids into bounded
// batches and issues paced delete requests. Rate-limited batches are
// retried with backoff up to a ceiling; every other failure is counted,
// never retried, and never aborts the sweep.
package deleter

import (
	"context"
	"errors"
	"time"

	"github.com/aatumaykin/sweepbot/internal/logger"
	"github.com/aatumaykin/sweepbot/internal/retry"
)

// ResultKind classifies the outcome of one delete-batch request.
type ResultKind int

const (
	// OK: every id in the batch was deleted (ids that were already
	// gone count as deleted; redelivery is a no-op, not an error).
	OK ResultKind = iota
	// Partial: some ids could not be deleted (too old under platform
	// policy); FailedIDs lists them. The rest were deleted.
	Partial
	// RateLimited: the batch was not applied at all; RetryAfter is the
	// platform-suggested wait, 0 if none was given.
	RateLimited
	// Fatal: the batch was rejected outright (permissions revoked).
	Fatal
)

// BatchResult is the typed outcome of one delete-batch call.
type BatchResult struct {
	Kind       ResultKind
	FailedIDs  []int
	RetryAfter time.Duration
	Reason     error
}

// DeleteClient issues one batch delete against the platform. A
// returned error is treated like a Fatal result. Implementations must
// treat an already-deleted id as success, not an error.
type DeleteClient interface {
	DeleteBatch(ctx context.Context, chatID int64, ids []int) (BatchResult, error)
}

// Recorder receives batch instrumentation; may be nil.
type Recorder interface {
	RecordBatch(result string)
	RecordRateLimit()
}

// Config bounds one deleter's behavior.
type Config struct {
	BatchSize           int           // max ids per delete call
	InterBatchDelay     time.Duration // mandatory pause between issued batches
	MaxRateLimitRetries int           // attempts per batch before counting it errored
}

// Outcome accumulates per-id results across all batches of a run.
type Outcome struct {
	Deleted int
	Errored int
}

// Deleter buffers deletable ids for a single chat within a single run.
// Not safe for concurrent use; each run owns its own deleter.
type Deleter struct {
	client  DeleteClient
	cfg     Config
	logger  *logger.Logger
	rec     Recorder
	chatID  int64
	buf     []int
	deleted []int
	outcome Outcome
	issued  bool
}

// New creates a deleter for one chat's run.
func New(client DeleteClient, cfg Config, chatID int64, log *logger.Logger, rec Recorder) *Deleter {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRateLimitRetries < 1 {
		cfg.MaxRateLimitRetries = 5
	}
	return &Deleter{
		client: client,
		cfg:    cfg,
		logger: log,
		rec:    rec,
		chatID: chatID,
		buf:    make([]int, 0, cfg.BatchSize),
	}
}

// Add buffers one deletable id, flushing when the buffer is full. The
// returned error is non-nil only on cancellation; per-batch failures
// are folded into the outcome and the sweep continues.
func (d *Deleter) Add(ctx context.Context, id int) error {
	d.buf = append(d.buf, id)
	if len(d.buf) < d.cfg.BatchSize {
		return nil
	}
	return d.flush(ctx)
}

// Drain flushes the non-empty remainder at end of stream.
func (d *Deleter) Drain(ctx context.Context) error {
	if len(d.buf) == 0 {
		return nil
	}
	return d.flush(ctx)
}

// Outcome returns the counts accumulated so far. Valid at any point,
// including after cancellation.
func (d *Deleter) Outcome() Outcome {
	return d.outcome
}

// DeletedIDs returns every id confirmed deleted so far.
func (d *Deleter) DeletedIDs() []int {
	return d.deleted
}

var errRateLimited = errors.New("rate limited")

func (d *Deleter) flush(ctx context.Context) error {
	// Cancellation is only ever honored between batches, never inside
	// one, so a batch is either fully issued or not issued at all.
	// Ids that were buffered but never issued still count errored so
	// the partial report accounts for every id exactly once.
	if err := ctx.Err(); err != nil {
		return d.abandon(err)
	}

	// Mandatory flood-control pacing between issued batches,
	// independent of whether a rate-limit signal was ever seen.
	if d.issued {
		if err := retry.Sleep(ctx, d.cfg.InterBatchDelay); err != nil {
			return d.abandon(err)
		}
	}

	batch := d.buf
	var result BatchResult

	err := retry.Do(ctx, retry.Config{MaxAttempts: d.cfg.MaxRateLimitRetries}, func(attempt int) (time.Duration, bool, error) {
		res, err := d.client.DeleteBatch(ctx, d.chatID, batch)
		if err != nil {
			res = BatchResult{Kind: Fatal, Reason: err}
		}

		if res.Kind == RateLimited {
			if d.rec != nil {
				d.rec.RecordRateLimit()
			}
			d.logger.WarnCtx(ctx, "delete batch rate limited",
				logger.Field{Key: "chat_id", Value: d.chatID},
				logger.Field{Key: "attempt", Value: attempt + 1},
				logger.Field{Key: "retry_after", Value: res.RetryAfter})
			return res.RetryAfter, true, errRateLimited
		}

		result = res
		return 0, false, nil
	})

	d.issued = true
	d.buf = d.buf[:0]

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Cancelled mid-backoff; the batch was not applied. Count it
		// errored so the partial report still accounts for every id.
		d.outcome.Errored += len(batch)
		d.record("cancelled")
		return err
	case errors.Is(err, errRateLimited):
		// Retry ceiling reached; count the batch and move on.
		d.outcome.Errored += len(batch)
		d.record("rate_limit_exhausted")
		d.logger.ErrorCtx(ctx, "delete batch gave up after rate limiting", err,
			logger.Field{Key: "chat_id", Value: d.chatID},
			logger.Field{Key: "batch_size", Value: len(batch)})
		return nil
	default:
		d.outcome.Errored += len(batch)
		d.record("error")
		return nil
	}

	switch result.Kind {
	case OK:
		d.outcome.Deleted += len(batch)
		d.deleted = append(d.deleted, batch...)
		d.record("ok")
	case Partial:
		failed := make(map[int]struct{}, len(result.FailedIDs))
		for _, id := range result.FailedIDs {
			failed[id] = struct{}{}
		}
		for _, id := range batch {
			if _, bad := failed[id]; bad {
				d.outcome.Errored++
			} else {
				d.outcome.Deleted++
				d.deleted = append(d.deleted, id)
			}
		}
		d.record("partial")
		d.logger.WarnCtx(ctx, "delete batch partially failed",
			logger.Field{Key: "chat_id", Value: d.chatID},
			logger.Field{Key: "failed", Value: len(result.FailedIDs)})
	case Fatal:
		d.outcome.Errored += len(batch)
		d.record("fatal")
		d.logger.ErrorCtx(ctx, "delete batch failed", result.Reason,
			logger.Field{Key: "chat_id", Value: d.chatID},
			logger.Field{Key: "batch_size", Value: len(batch)})
	}

	return nil
}

// abandon counts the unissued buffer as errored on cancellation.
func (d *Deleter) abandon(err error) error {
	d.outcome.Errored += len(d.buf)
	d.buf = d.buf[:0]
	d.record("cancelled")
	return err
}

func (d *Deleter) record(result string) {
	if d.rec != nil {
		d.rec.RecordBatch(result)
	}
}
