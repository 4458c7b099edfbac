package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/clock"
)

var ErrSessionClosed = errors.New("autosave session closed")

// Saver persists one channel of a draft.
type Saver interface {
	SavePartial(ctx context.Context, jobNumber string, snap Snapshot) error
}

type pendingSave struct {
	timer *clock.Timer
	gen   uint64
}

// Session debounces saves of one job's draft. Each channel has its own
// timer; a save only happens when the channel's signature differs from the
// last one the Saver accepted.
type Session struct {
	jobNumber string
	saver     Saver
	clock     clock.Clock
	delays    Delays
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// saveMu serializes Saver calls so a flush and a timer never race.
	saveMu sync.Mutex

	mu      sync.Mutex
	draft   Draft
	editor  string
	synced  map[Channel]string
	pending map[Channel]pendingSave
	gen     uint64
	closed  bool
}

// NewSession starts a session whose draft and last-synced state are initial.
func NewSession(jobNumber string, initial Draft, saver Saver, clk clock.Clock, delays Delays, logger *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		jobNumber: jobNumber,
		saver:     saver,
		clock:     clk,
		delays:    delays,
		logger:    logger.With(zap.String("job_number", jobNumber)),
		ctx:       ctx,
		cancel:    cancel,
		draft:     initial.Clone(),
		synced:    make(map[Channel]string, len(Channels)),
		pending:   make(map[Channel]pendingSave, len(Channels)),
	}
	for _, ch := range Channels {
		s.synced[ch] = initial.Signature(ch)
	}
	return s
}

func (s *Session) JobNumber() string { return s.jobNumber }

// Update applies mutate to the draft and restarts the channel's timer.
func (s *Session) Update(ch Channel, editor string, mutate func(*Draft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	mutate(&s.draft)
	if editor != "" {
		s.editor = editor
	}
	s.armLocked(ch)
	return nil
}

func (s *Session) armLocked(ch Channel) {
	if p, ok := s.pending[ch]; ok {
		p.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending[ch] = pendingSave{
		timer: s.clock.AfterFunc(s.delays.For(ch), func() { s.fire(ch, gen) }),
		gen:   gen,
	}
}

func (s *Session) fire(ch Channel, gen uint64) {
	s.mu.Lock()
	if p, ok := s.pending[ch]; !ok || p.gen != gen || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.pending, ch)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	// failures are logged by save and retried on the next change
	_ = s.save(s.ctx, ch)
}

func (s *Session) save(ctx context.Context, ch Channel) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	sig := s.draft.Signature(ch)
	if sig == s.synced[ch] {
		s.mu.Unlock()
		return nil
	}
	snap := Snapshot{Channel: ch, Editor: s.editor, Draft: s.draft.Clone()}
	s.mu.Unlock()

	if err := s.saver.SavePartial(ctx, s.jobNumber, snap); err != nil {
		s.logger.Warn("autosave failed",
			zap.String("channel", string(ch)),
			zap.Error(err))
		return fmt.Errorf("save %s: %w", ch, err)
	}

	s.mu.Lock()
	s.synced[ch] = sig
	s.mu.Unlock()

	s.logger.Debug("autosaved", zap.String("channel", string(ch)))
	return nil
}

// Flush saves every channel with unsynced changes now.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	for ch, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, ch)
	}
	s.mu.Unlock()

	var errs []error
	for _, ch := range Channels {
		if err := s.save(ctx, ch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ApplyRemote merges a remote change into the channel unless the channel
// has unsynced local edits. It reports whether the change was applied.
func (s *Session) ApplyRemote(ch Channel, remote Draft) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.draft.Signature(ch) != s.synced[ch] {
		return false
	}
	s.draft.merge(ch, remote)
	s.synced[ch] = s.draft.Signature(ch)
	return true
}

// Draft returns a copy of the local draft.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Dirty lists channels whose local state has not been saved.
func (s *Session) Dirty() []Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dirty []Channel
	for _, ch := range Channels {
		if s.draft.Signature(ch) != s.synced[ch] {
			dirty = append(dirty, ch)
		}
	}
	return dirty
}

// Close stops pending timers, cancels in-flight saves and waits for them.
// Unsaved changes are dropped; call Flush first to keep them.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for ch, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, ch)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
