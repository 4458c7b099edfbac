package autosave

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/clock"
)

// Loader reads the stored write-up a new session starts from.
type Loader interface {
	LoadDraft(ctx context.Context, jobNumber string) (Draft, error)
}

// Registry owns the live sessions, one per job number.
type Registry struct {
	loader Loader
	saver  Saver
	clock  clock.Clock
	delays Delays
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(loader Loader, saver Saver, clk clock.Clock, delays Delays, logger *zap.Logger) *Registry {
	return &Registry{
		loader:   loader,
		saver:    saver,
		clock:    clk,
		delays:   delays,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for the job, if any.
func (r *Registry) Get(jobNumber string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[jobNumber]
	return s, ok
}

// Open returns the job's session, loading the stored write-up to start one
// when none is live.
func (r *Registry) Open(ctx context.Context, jobNumber string) (*Session, error) {
	if s, ok := r.Get(jobNumber); ok {
		return s, nil
	}

	draft, err := r.loader.LoadDraft(ctx, jobNumber)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[jobNumber]; ok {
		return s, nil
	}
	s := NewSession(jobNumber, draft, r.saver, r.clock, r.delays, r.logger)
	r.sessions[jobNumber] = s
	r.logger.Debug("autosave session opened", zap.String("job_number", jobNumber))
	return s, nil
}

// Discard closes the job's session without saving. It reports whether a
// session was live.
func (r *Registry) Discard(jobNumber string) bool {
	r.mu.Lock()
	s, ok := r.sessions[jobNumber]
	delete(r.sessions, jobNumber)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll flushes and closes every session.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Flush(ctx); err != nil {
			r.logger.Error("failed to flush autosave session",
				zap.String("job_number", s.JobNumber()),
				zap.Error(err))
			errs = append(errs, err)
		}
		s.Close()
	}
	return errors.Join(errs...)
}
