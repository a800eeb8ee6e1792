// Package sweep orchestrates cleanup runs: it resolves the chat's
// admin set, walks the recorded history newest-first, classifies each
// message and feeds deletable ids to the batch deleter, then publishes
// a report. At most one run is active per chat at any time.
package sweep

import (
	"context"
	"errors"
	"time"

	"github.com/aatumaykin/sweepbot/internal/chat"
	"github.com/aatumaykin/sweepbot/internal/classify"
	"github.com/aatumaykin/sweepbot/internal/deleter"
	"github.com/aatumaykin/sweepbot/internal/logger"
	"github.com/aatumaykin/sweepbot/internal/metrics"
)

// RightsChecker verifies the bot holds the delete-messages right in a
// chat. A missing right is reported as chat.ErrInsufficientRights.
type RightsChecker interface {
	CheckDeleteRights(ctx context.Context, chatID int64) error
}

// AdminResolver provides the chat's administrator identities. Refresh
// forces re-resolution so a run never starts on a stale admin set;
// the resolved set then stays fixed for the whole run.
type AdminResolver interface {
	Refresh(ctx context.Context, chatID int64) (chat.AdminSet, error)
}

// HistoryWalker streams the chat's recorded history newest-first.
type HistoryWalker interface {
	Walk(ctx context.Context, chatID int64, fn func(page []chat.Message) error) error
}

// BatchDeleter accumulates and deletes message ids for one run.
type BatchDeleter interface {
	Add(ctx context.Context, id int) error
	Drain(ctx context.Context) error
	Outcome() deleter.Outcome
	DeletedIDs() []int
}

// Forgetter drops deleted ids from the message index so a re-run does
// not observe them again.
type Forgetter interface {
	Forget(chatID int64, ids []int) error
}

// Deps wires a Service. Metrics may be nil.
type Deps struct {
	Rights     RightsChecker
	Admins     AdminResolver
	Pager      HistoryWalker
	Policy     *classify.Policy
	NewDeleter func(chatID int64) BatchDeleter
	Index      Forgetter
	Metrics    *metrics.SweepMetrics
	Logger     *logger.Logger
}

// Service runs cleanup sweeps and tracks their lifecycle.
type Service struct {
	deps     Deps
	registry *registry
}

// New creates a sweep service.
func New(deps Deps) *Service {
	return &Service{
		deps:     deps,
		registry: newRegistry(),
	}
}

// Run executes a full cleanup for chatID and blocks until it finishes.
// It returns chat.ErrRunInProgress when the chat already has an active
// run. Any other failure mode ends the run in StateFailed and is
// reported through the returned report, not the error.
func (s *Service) Run(ctx context.Context, chatID int64) (chat.Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	run := newRun(chatID, cancel)

	if err := s.registry.begin(run); err != nil {
		cancel()
		return chat.Report{}, err
	}
	defer cancel()

	if s.deps.Metrics != nil {
		s.deps.Metrics.RunStarted()
	}

	report := s.execute(runCtx, run)

	s.registry.end(chatID, report)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RunFinished()
		outcome := "done"
		if report.State == chat.StateFailed {
			outcome = string(report.Reason)
		}
		s.deps.Metrics.RecordRun(outcome, report.Duration())
		s.deps.Metrics.RecordMessages(report.Counters.Kept, report.Counters.Deleted, report.Counters.Errored)
	}

	return report, nil
}

// Cancel requests cancellation of the chat's active run. Returns false
// when no run is active.
func (s *Service) Cancel(chatID int64) bool {
	run := s.registry.get(chatID)
	if run == nil {
		return false
	}
	run.Cancel()
	return true
}

// Status returns the active run's state and counters. ok is false when
// no run is active.
func (s *Service) Status(chatID int64) (state chat.RunState, counters chat.Counters, ok bool) {
	run := s.registry.get(chatID)
	if run == nil {
		return chat.StateIdle, chat.Counters{}, false
	}
	state, counters = run.Snapshot()
	return state, counters, true
}

// LastReport returns the most recent finished report for the chat.
func (s *Service) LastReport(chatID int64) (chat.Report, bool) {
	return s.registry.lastReport(chatID)
}

func (s *Service) execute(ctx context.Context, run *Run) chat.Report {
	log := s.deps.Logger.With(
		logger.Field{Key: "run_id", Value: run.id},
		logger.Field{Key: "chat_id", Value: run.chatID},
	)
	log.Info("cleanup run started")

	run.setState(chat.StateAuthorizing)
	if err := s.deps.Rights.CheckDeleteRights(ctx, run.chatID); err != nil {
		reason := chat.ReasonInsufficientRights
		if isCancel(err) {
			reason = chat.ReasonCancelled
		} else if !errors.Is(err, chat.ErrInsufficientRights) {
			reason = chat.ReasonFatal
		}
		return s.fail(run, reason, err, log)
	}

	run.setState(chat.StateResolving)
	admins, err := s.deps.Admins.Refresh(ctx, run.chatID)
	if err != nil {
		reason := chat.ReasonDirectory
		if isCancel(err) {
			reason = chat.ReasonCancelled
		}
		return s.fail(run, reason, err, log)
	}

	run.setState(chat.StateSweeping)
	del := s.deps.NewDeleter(run.chatID)
	kept := 0

	walkErr := s.deps.Pager.Walk(ctx, run.chatID, func(page []chat.Message) error {
		for _, msg := range page {
			if s.deps.Policy.IsProtected(msg, admins) {
				kept++
				continue
			}
			if err := del.Add(ctx, msg.ID); err != nil {
				return err
			}
		}
		run.setCounters(totals(kept, del.Outcome()))
		return nil
	})

	// Flush the remainder. After a history failure the already
	// classified ids are still deleted so the partial report reflects
	// real work; on a cancelled context the deleter folds its unissued
	// buffer into the errored count without deleting anything.
	if err := del.Drain(ctx); err != nil && walkErr == nil {
		walkErr = err
	}

	run.setCounters(totals(kept, del.Outcome()))

	// Deleted ids leave the index regardless of how the run ends, so a
	// re-run never observes them again.
	if ids := del.DeletedIDs(); len(ids) > 0 {
		if err := s.deps.Index.Forget(run.chatID, ids); err != nil {
			log.Error("failed to forget deleted messages", err,
				logger.Field{Key: "count", Value: len(ids)})
		}
	}

	if walkErr != nil {
		reason := chat.ReasonFatal
		var histErr *chat.HistoryError
		switch {
		case isCancel(walkErr):
			reason = chat.ReasonCancelled
			walkErr = chat.ErrCancelled
		case errors.As(walkErr, &histErr):
			reason = chat.ReasonHistory
		}
		return s.fail(run, reason, walkErr, log)
	}

	run.setState(chat.StateReporting)
	report := s.report(run, chat.StateDone, "")
	run.setState(chat.StateDone)

	log.Info("cleanup run completed",
		logger.Field{Key: "kept", Value: report.Counters.Kept},
		logger.Field{Key: "deleted", Value: report.Counters.Deleted},
		logger.Field{Key: "errored", Value: report.Counters.Errored},
		logger.Field{Key: "duration", Value: report.Duration().String()})

	return report
}

func (s *Service) fail(run *Run, reason chat.FailReason, err error, log *logger.Logger) chat.Report {
	run.setState(chat.StateFailed)
	report := s.report(run, chat.StateFailed, reason)

	log.Error("cleanup run failed", err,
		logger.Field{Key: "reason", Value: string(reason)},
		logger.Field{Key: "kept", Value: report.Counters.Kept},
		logger.Field{Key: "deleted", Value: report.Counters.Deleted},
		logger.Field{Key: "errored", Value: report.Counters.Errored})

	return report
}

func (s *Service) report(run *Run, state chat.RunState, reason chat.FailReason) chat.Report {
	_, counters := run.Snapshot()
	return chat.Report{
		RunID:      run.id,
		ChatID:     run.chatID,
		State:      state,
		Reason:     reason,
		Counters:   counters,
		StartedAt:  run.started,
		FinishedAt: time.Now(),
	}
}

func totals(kept int, out deleter.Outcome) chat.Counters {
	return chat.Counters{
		Kept:    kept,
		Deleted: out.Deleted,
		Errored: out.Errored,
	}
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
