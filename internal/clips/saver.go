package clips

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce collapses bursts of edits into one save shortly
// after the last change.
const DefaultDebounce = 1500 * time.Millisecond

// Saver is the debounced persistence port. The engine stays ignorant
// of when saves happen; callers Schedule after each mutation and Flush
// on clip switch or shutdown. A failing save is logged and dropped;
// in-memory state is never lost over it.
type Saver struct {
	debounce time.Duration
	save     func(ctx context.Context) error
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

func NewSaver(debounce time.Duration, save func(ctx context.Context) error, logger *slog.Logger) *Saver {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Saver{debounce: debounce, save: save, logger: logger}
}

// Schedule arms (or re-arms) the debounce timer.
func (s *Saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(context.Background())
	})
}

// Flush cancels any pending timer and saves immediately.
func (s *Saver) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.run(ctx)
}

// Pending reports whether a save is armed.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Saver) run(ctx context.Context) {
	s.mu.Lock()
	s.timer = nil
	s.mu.Unlock()

	if s.save == nil {
		return
	}
	if err := s.save(ctx); err != nil && s.logger != nil {
		s.logger.Warn("clip state save failed, keeping in-memory state", "error", err)
	}
}
