package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/Dosada05/pickleball-tournament/repositories"
)

const saveTimeout = 10 * time.Second

// persistJob - накопленные, еще не записанные изменения. Новые изменения
// сливаются с ожидающими: сохраняется только последний снимок.
type persistJob struct {
	reset bool
	state *models.TournamentState
	role  *models.Role
}

// snapshotSaver пишет состояние в хранилище асинхронно и строго по порядку.
// Ошибки записи логируются и не откатывают состояние в памяти.
type snapshotSaver struct {
	store  repositories.TournamentStore
	logger *slog.Logger

	mu      sync.Mutex
	pending *persistJob
	lastErr error
	// held != nil: записи придерживаются, ожидающий снимок не пишется и не теряется.
	held error

	writeMu sync.Mutex
	wake    chan struct{}
}

func newSnapshotSaver(store repositories.TournamentStore, logger *slog.Logger) *snapshotSaver {
	return &snapshotSaver{
		store:  store,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Run writes pending jobs until ctx is cancelled, then flushes what is left.
// Work enqueued after Run returns stays pending until the next Flush.
func (s *snapshotSaver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			if err := s.Flush(flushCtx); err != nil {
				s.logger.Error("final tournament flush failed", slog.Any("error", err))
			}
			cancel()
			return
		case <-s.wake:
			writeCtx, cancel := context.WithTimeout(ctx, saveTimeout)
			s.Flush(writeCtx)
			cancel()
		}
	}
}

func (s *snapshotSaver) enqueueState(state models.TournamentState) {
	s.mu.Lock()
	if s.pending == nil {
		s.pending = &persistJob{}
	}
	s.pending.state = &state
	s.mu.Unlock()
	s.signal()
}

func (s *snapshotSaver) enqueueRole(role models.Role) {
	s.mu.Lock()
	if s.pending == nil {
		s.pending = &persistJob{}
	}
	s.pending.role = &role
	s.mu.Unlock()
	s.signal()
}

// enqueueReset replaces everything pending: the store is cleared and the
// current role written back.
func (s *snapshotSaver) enqueueReset(role models.Role) {
	s.mu.Lock()
	s.pending = &persistJob{reset: true, role: &role}
	s.mu.Unlock()
	s.signal()
}

// hold suspends writes until release; pending work is kept.
func (s *snapshotSaver) hold(reason error) {
	s.mu.Lock()
	s.held = reason
	s.lastErr = reason
	s.mu.Unlock()
}

// release resumes writes. dropPending discards work queued while held, used
// when the in-memory state has just been replaced by the stored one.
func (s *snapshotSaver) release(dropPending bool) {
	s.mu.Lock()
	if s.held != nil {
		s.lastErr = nil
	}
	s.held = nil
	if dropPending {
		s.pending = nil
	}
	s.mu.Unlock()
}

func (s *snapshotSaver) isHeld() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held != nil
}

func (s *snapshotSaver) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush synchronously writes the pending job, if any.
func (s *snapshotSaver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.held != nil {
		held := s.held
		s.mu.Unlock()
		return held
	}
	job := s.pending
	s.pending = nil
	s.mu.Unlock()

	if job == nil {
		return nil
	}

	err := s.write(ctx, job)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("failed to persist tournament, in-memory state remains authoritative", slog.Any("error", err))
	}
	return err
}

func (s *snapshotSaver) write(ctx context.Context, job *persistJob) error {
	if job.reset {
		if err := s.store.ClearAll(ctx); err != nil {
			return fmt.Errorf("clear tournament: %w", err)
		}
	}
	if job.state != nil {
		if err := s.store.SaveTournament(ctx, *job.state); err != nil {
			return fmt.Errorf("save tournament: %w", err)
		}
	}
	if job.role != nil {
		var err error
		if *job.role == models.RoleAdmin {
			err = s.store.SaveRole(ctx, models.RoleAdmin)
		} else {
			err = s.store.ClearRole(ctx)
		}
		if err != nil {
			return fmt.Errorf("persist role: %w", err)
		}
	}
	return nil
}

// LastError returns the error of the most recent write, nil if it succeeded.
func (s *snapshotSaver) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
