// Package warn shows warnings at most once per suppression window, so a
// problem that persists across frequent rebuilds is not repeated on every
// run but still resurfaces periodically.
package warn

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultWindow is how long an identical warning stays suppressed
const DefaultWindow = 72 * time.Hour

// Store remembers when each warning text was last shown
type Store interface {
	LastWarned(text string) (time.Time, bool)
	SetWarned(text string, t time.Time)
}

// Throttler suppresses repeated warnings
type Throttler struct {
	store  Store
	window time.Duration
	logger *log.Logger
	now    func() time.Time

	mu sync.Mutex
}

// New creates a throttler. A nil store shows every warning; a window of
// zero or less means DefaultWindow.
func New(store Store, window time.Duration, logger *log.Logger) *Throttler {
	if window <= 0 {
		window = DefaultWindow
	}

	if logger == nil {
		logger = log.Default()
	}

	return &Throttler{store: store, window: window, logger: logger, now: time.Now}
}

// Warn logs text unless it was shown within the window, and reports
// whether it was shown
func (t *Throttler) Warn(text string, keyvals ...any) bool {
	if t.store == nil {
		t.logger.Warn(text, keyvals...)
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.store.LastWarned(text); ok && now.Before(last.Add(t.window)) {
		t.logger.Debug("suppressed warning", "text", text, "last", last)
		return false
	}

	t.store.SetWarned(text, now)
	t.logger.Warn(text, keyvals...)

	return true
}
