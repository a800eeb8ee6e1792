package deleter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/sweepbot/internal/logger"
)

const testChatID int64 = -100123

// scriptedClient replays a scripted sequence of batch results and
// records every issued batch.
type scriptedClient struct {
	script  []BatchResult
	batches [][]int
}

func (c *scriptedClient) DeleteBatch(ctx context.Context, chatID int64, ids []int) (BatchResult, error) {
	batch := make([]int, len(ids))
	copy(batch, ids)
	c.batches = append(c.batches, batch)

	if len(c.script) == 0 {
		return BatchResult{Kind: OK}, nil
	}
	res := c.script[0]
	c.script = c.script[1:]
	return res, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stdout"})
	require.NoError(t, err)
	return log
}

func newTestDeleter(t *testing.T, client DeleteClient, cfg Config) *Deleter {
	return New(client, cfg, testChatID, testLogger(t), nil)
}

func TestAdd_FlushesAtBatchSize(t *testing.T) {
	client := &scriptedClient{}
	d := newTestDeleter(t, client, Config{BatchSize: 3})

	ctx := context.Background()
	for id := 1; id <= 7; id++ {
		require.NoError(t, d.Add(ctx, id))
	}
	require.NoError(t, d.Drain(ctx))

	require.Len(t, client.batches, 3)
	assert.Equal(t, []int{1, 2, 3}, client.batches[0])
	assert.Equal(t, []int{4, 5, 6}, client.batches[1])
	assert.Equal(t, []int{7}, client.batches[2])

	for _, batch := range client.batches {
		assert.LessOrEqual(t, len(batch), 3)
	}

	assert.Equal(t, Outcome{Deleted: 7}, d.Outcome())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, d.DeletedIDs())
}

func TestDrain_EmptyBufferIssuesNothing(t *testing.T) {
	client := &scriptedClient{}
	d := newTestDeleter(t, client, Config{BatchSize: 3})

	require.NoError(t, d.Drain(context.Background()))
	assert.Empty(t, client.batches)
	assert.Equal(t, Outcome{}, d.Outcome())
}

func TestFlush_RateLimitedRetriesSameBatchOnce(t *testing.T) {
	client := &scriptedClient{script: []BatchResult{
		{Kind: RateLimited, RetryAfter: 5 * time.Millisecond},
		{Kind: OK},
	}}
	d := newTestDeleter(t, client, Config{BatchSize: 2, MaxRateLimitRetries: 3})

	ctx := context.Background()
	require.NoError(t, d.Add(ctx, 1))
	require.NoError(t, d.Add(ctx, 2))

	// Same batch issued twice, counted exactly once.
	require.Len(t, client.batches, 2)
	assert.Equal(t, client.batches[0], client.batches[1])
	assert.Equal(t, Outcome{Deleted: 2}, d.Outcome())
	assert.Equal(t, []int{1, 2}, d.DeletedIDs())
}

func TestFlush_RateLimitCeilingCountsBatchErrored(t *testing.T) {
	client := &scriptedClient{script: []BatchResult{
		{Kind: RateLimited, RetryAfter: time.Millisecond},
		{Kind: RateLimited, RetryAfter: time.Millisecond},
	}}
	d := newTestDeleter(t, client, Config{BatchSize: 2, MaxRateLimitRetries: 2})

	ctx := context.Background()
	require.NoError(t, d.Add(ctx, 1))
	require.NoError(t, d.Add(ctx, 2)) // flush: both attempts rate limited

	assert.Len(t, client.batches, 2)
	assert.Equal(t, Outcome{Errored: 2}, d.Outcome())
	assert.Empty(t, d.DeletedIDs())

	// The run continues: the next batch goes through.
	require.NoError(t, d.Add(ctx, 3))
	require.NoError(t, d.Drain(ctx))
	assert.Equal(t, Outcome{Deleted: 1, Errored: 2}, d.Outcome())
}

func TestFlush_PartialFailureSplitsCounts(t *testing.T) {
	client := &scriptedClient{script: []BatchResult{
		{Kind: Partial, FailedIDs: []int{2}},
	}}
	d := newTestDeleter(t, client, Config{BatchSize: 3})

	ctx := context.Background()
	require.NoError(t, d.Add(ctx, 1))
	require.NoError(t, d.Add(ctx, 2))
	require.NoError(t, d.Add(ctx, 3))

	assert.Equal(t, Outcome{Deleted: 2, Errored: 1}, d.Outcome())
	assert.Equal(t, []int{1, 3}, d.DeletedIDs())
}

func TestFlush_FatalCountsBatchAndContinues(t *testing.T) {
	client := &scriptedClient{script: []BatchResult{
		{Kind: Fatal, Reason: errors.New("not enough rights")},
		{Kind: OK},
	}}
	d := newTestDeleter(t, client, Config{BatchSize: 2})

	ctx := context.Background()
	require.NoError(t, d.Add(ctx, 1))
	require.NoError(t, d.Add(ctx, 2)) // fatal batch, counted errored

	require.NoError(t, d.Add(ctx, 3))
	require.NoError(t, d.Drain(ctx)) // next batch still issued

	assert.Equal(t, Outcome{Deleted: 1, Errored: 2}, d.Outcome())
	assert.Equal(t, []int{3}, d.DeletedIDs())
}

// errorClient always fails at the transport level.
type errorClient struct{ err error }

func (c *errorClient) DeleteBatch(ctx context.Context, chatID int64, ids []int) (BatchResult, error) {
	return BatchResult{}, c.err
}

func TestFlush_TransportErrorTreatedAsFatal(t *testing.T) {
	d := newTestDeleter(t, &errorClient{err: errors.New("connection reset")}, Config{BatchSize: 1})

	require.NoError(t, d.Add(context.Background(), 1))
	assert.Equal(t, Outcome{Errored: 1}, d.Outcome())
}

func TestFlush_CancelledBetweenBatches(t *testing.T) {
	client := &scriptedClient{}
	d := newTestDeleter(t, client, Config{BatchSize: 1})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Add(ctx, 1))
	cancel()

	err := d.Add(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)

	// Only the first batch was issued; the unissued id is counted
	// errored so every id lands in exactly one bucket.
	assert.Len(t, client.batches, 1)
	assert.Equal(t, Outcome{Deleted: 1, Errored: 1}, d.Outcome())
}

func TestFlush_InterBatchDelayApplied(t *testing.T) {
	client := &scriptedClient{}
	d := newTestDeleter(t, client, Config{BatchSize: 1, InterBatchDelay: 20 * time.Millisecond})

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, d.Add(ctx, 1))
	require.NoError(t, d.Add(ctx, 2))
	require.NoError(t, d.Add(ctx, 3))
	elapsed := time.Since(start)

	// Two inter-batch pauses between three batches.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

// countingRecorder verifies instrumentation hooks fire.
type countingRecorder struct {
	batches    map[string]int
	rateLimits int
}

func (r *countingRecorder) RecordBatch(result string) {
	if r.batches == nil {
		r.batches = make(map[string]int)
	}
	r.batches[result]++
}

func (r *countingRecorder) RecordRateLimit() { r.rateLimits++ }

func TestFlush_RecordsMetrics(t *testing.T) {
	client := &scriptedClient{script: []BatchResult{
		{Kind: RateLimited, RetryAfter: time.Millisecond},
		{Kind: OK},
		{Kind: Partial, FailedIDs: []int{3}},
	}}
	rec := &countingRecorder{}
	d := New(client, Config{BatchSize: 2, MaxRateLimitRetries: 3}, testChatID, testLogger(t), rec)

	ctx := context.Background()
	require.NoError(t, d.Add(ctx, 1))
	require.NoError(t, d.Add(ctx, 2))
	require.NoError(t, d.Add(ctx, 3))
	require.NoError(t, d.Add(ctx, 4))

	assert.Equal(t, 1, rec.rateLimits)
	assert.Equal(t, 1, rec.batches["ok"])
	assert.Equal(t, 1, rec.batches["partial"])
}
