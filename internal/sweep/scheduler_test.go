package sweep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/sweepbot/internal/chat"
	"github.com/aatumaykin/sweepbot/internal/config"
	"github.com/aatumaykin/sweepbot/internal/logger"
)

func schedulerLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stdout"})
	require.NoError(t, err)
	return log
}

func TestNewScheduler_RegistersJobs(t *testing.T) {
	f := newFixture(t, nil)

	sched, err := NewScheduler(f.svc, []config.ScheduleJob{
		{ChatID: testChatID, Cron: "0 3 * * *"},
		{ChatID: testChatID + 1, Cron: "*/30 * * * *"},
	}, schedulerLogger(t))
	require.NoError(t, err)

	sched.Start()
	sched.Stop()
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	f := newFixture(t, nil)

	_, err := NewScheduler(f.svc, []config.ScheduleJob{
		{ChatID: testChatID, Cron: "not a cron spec"},
	}, schedulerLogger(t))
	assert.Error(t, err)
}

func TestRunScheduled_ExecutesSweep(t *testing.T) {
	f := newFixture(t, mixedHistory())

	runScheduled(f.svc, testChatID, schedulerLogger(t))

	report, ok := f.svc.LastReport(testChatID)
	require.True(t, ok)
	assert.Equal(t, chat.StateDone, report.State)
	assert.Equal(t, chat.Counters{Kept: 3, Deleted: 2}, report.Counters)
}

func TestRunScheduled_SkipsWhenRunActive(t *testing.T) {
	f := newFixture(t, mixedHistory())
	f.deletes.gate = make(chan struct{})
	f.deletes.entered = make(chan struct{})

	done := make(chan struct{})
	go func() {
		_, _ = f.svc.Run(context.Background(), testChatID)
		close(done)
	}()
	<-f.deletes.entered

	// The tick lands during the active run and is dropped, not queued.
	runScheduled(f.svc, testChatID, schedulerLogger(t))

	close(f.deletes.gate)
	<-done

	assert.Len(t, f.deletes.batches, 1)
}
