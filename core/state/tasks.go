package state

import (
	"context"
	"errors"
	"slices"

	"github.com/JoongWonSeo/ws-sync/pkg/async"
	"github.com/JoongWonSeo/ws-sync/pkg/logger"
)

// RunningTasks returns the names of currently running tasks in start order.
func (s *Sync) RunningTasks() []string {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	return slices.Clone(s.runningOrder)
}

// handleTaskStart spawns the named task on its own goroutine. A task that is
// already running is not started twice; the duplicate request is ignored.
// When task exposure is on, the updated running list is synced immediately,
// so the client sees the task as running before it produces any state.
func (s *Sync) handleTaskStart(ctx context.Context, data any) error {
	name, kwargs, err := decodeCall(data)
	if err != nil {
		return err
	}

	binding, ok := s.tasks[name]
	if !ok {
		s.logger.Warn("no handler for task", logger.Key(s.key), logger.Action(name))
		return nil
	}

	params, err := s.decodeParams(binding, kwargs)
	if err != nil {
		return err
	}

	// Tasks outlive the dispatch and even the connection, so they run on a
	// context detached from cancellation but keeping the session binding.
	taskCtx := context.WithoutCancel(ctx)
	h := async.New(func(tctx context.Context) error {
		defer s.finishTask(taskCtx, name)

		err := binding.invoke(tctx, params)
		if errors.Is(tctx.Err(), context.Canceled) {
			s.logger.Info("task cancelled", logger.Key(s.key), logger.Action(name))
			s.invokeCancelHook(taskCtx, name)
		}
		return err
	})

	s.runningMu.Lock()
	if _, exists := s.running[name]; exists {
		s.runningMu.Unlock()
		s.logger.Warn("task already running", logger.Key(s.key), logger.Action(name))
		return nil
	}
	s.running[name] = h
	s.runningOrder = append(s.runningOrder, name)
	s.runningMu.Unlock()

	if s.taskExposure != "" {
		if err := s.Sync(ctx); err != nil {
			s.logger.Warn("failed to sync running tasks", logger.Key(s.key), logger.Error(err))
		}
	}

	h.Start(taskCtx)
	return nil
}

// handleTaskCancel requests cooperative cancellation of the named task.
// Cancelling a task that is not running is ignored.
func (s *Sync) handleTaskCancel(ctx context.Context, data any) error {
	name, _, err := decodeCall(data)
	if err != nil {
		return err
	}

	s.runningMu.Lock()
	h, ok := s.running[name]
	s.runningMu.Unlock()

	if !ok {
		s.logger.Warn("task not running", logger.Key(s.key), logger.Action(name))
		return nil
	}
	h.Cancel()
	return nil
}

// finishTask removes the task from the running set and republishes the
// running list. It runs on completion, cancellation, and error alike.
func (s *Sync) finishTask(ctx context.Context, name string) {
	s.runningMu.Lock()
	delete(s.running, name)
	if i := slices.Index(s.runningOrder, name); i >= 0 {
		s.runningOrder = slices.Delete(s.runningOrder, i, i+1)
	}
	s.runningMu.Unlock()

	if s.taskExposure != "" {
		if err := s.Sync(ctx); err != nil {
			s.logger.Warn("failed to sync running tasks", logger.Key(s.key), logger.Error(err))
		}
	}
}

func (s *Sync) invokeCancelHook(ctx context.Context, name string) {
	hook, ok := s.taskCancels[name]
	if !ok {
		return
	}
	if err := hook(ctx); err != nil {
		s.logger.Error("task cancel hook failed", logger.Key(s.key), logger.Action(name), logger.Error(err))
	}
}
