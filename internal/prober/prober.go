// Package prober answers "which window has focus" with a short-lived cache in
// front of the platform probe strategy.
package prober

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/platform"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// DefaultTTL is how long a successful probe is served from cache.
const DefaultTTL = 5 * time.Second

// Stats counts probe outcomes since construction.
type Stats struct {
	Hits         uint64
	Successes    uint64
	Timeouts     uint64
	LaunchErrors uint64
	ExitErrors   uint64
	ParseErrors  uint64
	Unsupported  uint64
	OtherErrors  uint64
}

// Misses is every lookup that had to consult the platform.
func (s Stats) Misses() uint64 {
	return s.Successes + s.Timeouts + s.LaunchErrors + s.ExitErrors + s.ParseErrors + s.Unsupported + s.OtherErrors
}

type entry struct {
	info window.WindowInfo
	at   time.Time
}

// Prober implements window.Prober.
type Prober struct {
	table   *platform.Table
	runner  runner.Runner
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	log     *slog.Logger

	group singleflight.Group

	mu     sync.Mutex
	cached *entry
	stats  Stats
}

var _ window.Prober = (*Prober)(nil)

// Option configures a Prober.
type Option func(*Prober)

// WithTTL sets the cache lifetime. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(p *Prober) { p.ttl = ttl }
}

// WithTimeout overrides the platform's probe timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Prober) { p.now = now }
}

// WithLogger sets the logger for probe outcomes.
func WithLogger(log *slog.Logger) Option {
	return func(p *Prober) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a Prober over table.
func New(table *platform.Table, r runner.Runner, opts ...Option) *Prober {
	p := &Prober{
		table:   table,
		runner:  r,
		ttl:     DefaultTTL,
		timeout: table.ProbeTimeout(),
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetActiveWindow returns the focused window, or window.Default when the
// platform cannot tell. Concurrent misses share one probe.
func (p *Prober) GetActiveWindow(ctx context.Context) window.WindowInfo {
	if info, ok := p.lookup(true); ok {
		return info
	}

	// The shared probe outlives any one caller; each caller waits on its own ctx.
	ch := p.group.DoChan("window", func() (any, error) {
		if info, ok := p.lookup(false); ok {
			return info, nil
		}
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.flightTimeout())
		defer cancel()
		return p.probe(flightCtx), nil
	})

	select {
	case res := <-ch:
		return res.Val.(window.WindowInfo).Clone()
	case <-ctx.Done():
		return window.Default(p.table.Platform(), p.now())
	}
}

func (p *Prober) flightTimeout() time.Duration {
	if p.timeout > 0 {
		return p.timeout
	}
	return runner.DefaultTimeout
}

// Invalidate drops the cached record so the next call probes.
func (p *Prober) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

// Stats returns a snapshot of the outcome counters.
func (p *Prober) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Prober) lookup(count bool) (window.WindowInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached == nil || p.ttl <= 0 {
		return window.WindowInfo{}, false
	}
	if p.now().Sub(p.cached.at) >= p.ttl {
		p.cached = nil
		return window.WindowInfo{}, false
	}
	if count {
		p.stats.Hits++
	}
	return p.cached.info.Clone(), true
}

func (p *Prober) probe(ctx context.Context) window.WindowInfo {
	platformTag := p.table.Platform()

	probe, ok := p.table.WindowProbe()
	if !ok {
		p.record(errs.New("probe", errs.CodeUnsupported, nil), 0)
		return window.Default(platformTag, p.now())
	}

	start := p.now()
	data, err := probe(ctx, p.runner, p.timeout)
	if err == nil {
		var info window.WindowInfo
		info, err = window.Decode(data)
		if err == nil {
			now := p.now()
			info.Timestamp = now
			info.Platform = platformTag

			p.mu.Lock()
			if p.ttl > 0 {
				p.cached = &entry{info: info.Clone(), at: now}
			}
			p.mu.Unlock()

			p.record(nil, now.Sub(start))
			return info
		}
	}

	p.record(err, p.now().Sub(start))
	return window.Default(platformTag, p.now())
}

func (p *Prober) record(err error, took time.Duration) {
	code := errs.CodeOf(err)

	p.mu.Lock()
	switch {
	case err == nil:
		p.stats.Successes++
	case code == errs.CodeTimeout:
		p.stats.Timeouts++
	case code == errs.CodeLaunch:
		p.stats.LaunchErrors++
	case code == errs.CodeExit:
		p.stats.ExitErrors++
	case code == errs.CodeParse:
		p.stats.ParseErrors++
	case code == errs.CodeUnsupported:
		p.stats.Unsupported++
	default:
		p.stats.OtherErrors++
	}
	p.mu.Unlock()

	if err == nil {
		p.log.Debug("window probe succeeded", "took", took)
		return
	}
	p.log.Debug("window probe failed", "outcome", code.String(), "took", took, "error", err)
}
