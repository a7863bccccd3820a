// Package monitor polls the clipboard and notifies listeners when its text
// changes.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the poll period when Start is given zero.
const DefaultInterval = time.Second

// Reader is the clipboard read side the monitor depends on.
type Reader interface {
	ReadText(ctx context.Context) (string, error)
}

// Listener receives the new clipboard text.
type Listener func(text string) error

// Handle identifies a registered listener.
type Handle uint64

type registration struct {
	handle Handle
	fn     Listener
}

// Monitor owns one polling loop at a time.
type Monitor struct {
	reader Reader
	log    *slog.Logger

	// life serializes Start and Stop; mu guards the fields below.
	life sync.Mutex

	mu        sync.Mutex
	listeners []registration
	next      Handle
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a stopped Monitor. A nil logger uses slog.Default.
func New(reader Reader, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{reader: reader, log: log}
}

// AddListener registers fn. Listeners run in registration order.
func (m *Monitor) AddListener(fn Listener) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.listeners = append(m.listeners, registration{handle: m.next, fn: fn})
	return m.next
}

// RemoveListener unregisters h. Once it returns, h is not invoked for any
// later change. Unknown handles are ignored. Listeners may remove themselves.
func (m *Monitor) RemoveListener(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.listeners {
		if r.handle == h {
			m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
			return
		}
	}
}

// Start captures the current text as the baseline and polls every interval
// until Stop or ctx ends. A running loop is stopped first.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.life.Lock()
	defer m.life.Unlock()
	m.stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	var snapshot *string
	if text, err := m.reader.ReadText(loopCtx); err == nil {
		snapshot = &text
	} else {
		m.log.Warn("clipboard baseline read failed", "error", err)
	}

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	go m.loop(loopCtx, interval, snapshot, done)
	m.log.Info("clipboard monitor started", "interval", interval)
}

// Stop ends the loop and waits for it to exit. Safe to call when stopped.
// Listeners must not call Start or Stop.
func (m *Monitor) Stop() {
	m.life.Lock()
	defer m.life.Unlock()
	m.stop()
}

func (m *Monitor) stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.log.Info("clipboard monitor stopped")
}

// Running reports whether a loop is active. A loop whose parent context
// ended is not running.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (m *Monitor) loop(ctx context.Context, interval time.Duration, snapshot *string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		text, err := m.reader.ReadText(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.log.Debug("clipboard read failed", "error", err)
			continue
		}

		if snapshot == nil {
			snapshot = &text
			continue
		}
		if text == *snapshot {
			continue
		}
		snapshot = &text
		m.dispatch(ctx, text)
	}
}

func (m *Monitor) dispatch(ctx context.Context, text string) {
	m.mu.Lock()
	listeners := append([]registration(nil), m.listeners...)
	m.mu.Unlock()

	for _, r := range listeners {
		if ctx.Err() != nil {
			return
		}
		if !m.registered(r.handle) {
			continue
		}
		if err := invoke(r.fn, text); err != nil {
			m.log.Warn("clipboard listener failed", "listener", uint64(r.handle), "error", err)
		}
	}
}

func (m *Monitor) registered(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.listeners {
		if r.handle == h {
			return true
		}
	}
	return false
}

func invoke(fn Listener, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return fn(text)
}
