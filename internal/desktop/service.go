// Package desktop wires the platform table, prober, clipboard accessor,
// monitor and app query into one explicitly owned service.
package desktop

import (
	"context"
	"log/slog"
	"time"

	"github.com/snipnote/deskbridge/internal/apps"
	"github.com/snipnote/deskbridge/internal/clipboard"
	"github.com/snipnote/deskbridge/internal/monitor"
	"github.com/snipnote/deskbridge/internal/prober"
	"github.com/snipnote/deskbridge/pkg/platform"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// Options configures New. Zero values select defaults.
type Options struct {
	Table            *platform.Table // defaults to platform.Build(platform.Detect())
	Runner           runner.Runner   // defaults to runner.Exec{}
	CacheTTL         time.Duration   // zero disables caching
	ProbeTimeout     time.Duration
	ClipboardTimeout time.Duration
	Logger           *slog.Logger
}

// Status summarises what the host supports.
type Status struct {
	Platform       window.Platform `json:"platform"`
	DisplayServer  string          `json:"displayServer,omitempty"`
	Strategy       string          `json:"strategy"`
	Supported      []string        `json:"supported"`
	ReadTools      []string        `json:"readTools"`
	WriteTools     []string        `json:"writeTools"`
	ProbeStats     prober.Stats    `json:"probeStats"`
	MonitorRunning bool            `json:"monitorRunning"`
}

type Service struct {
	table     *platform.Table
	prober    *prober.Prober
	clipboard *clipboard.Accessor
	monitor   *monitor.Monitor
	apps      *apps.Query
	log       *slog.Logger
}

var _ window.Prober = (*Service)(nil)

// New builds a Service. Nothing is spawned until an operation is called.
func New(opts Options) *Service {
	table := opts.Table
	if table == nil {
		table = platform.Build(platform.Detect())
	}
	r := opts.Runner
	if r == nil {
		r = runner.Exec{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	cb := clipboard.New(table, r, opts.ClipboardTimeout, log)
	return &Service{
		table: table,
		prober: prober.New(table, r,
			prober.WithTTL(opts.CacheTTL),
			prober.WithTimeout(opts.ProbeTimeout),
			prober.WithLogger(log),
		),
		clipboard: cb,
		monitor:   monitor.New(cb, log),
		apps:      apps.New(table, r, 0, log),
		log:       log,
	}
}

// Platform is the detected platform tag.
func (s *Service) Platform() window.Platform { return s.table.Platform() }

// GetActiveWindow returns the focused window, possibly from cache.
func (s *Service) GetActiveWindow(ctx context.Context) window.WindowInfo {
	return s.prober.GetActiveWindow(ctx)
}

// GetActiveWindowFresh bypasses the cache.
func (s *Service) GetActiveWindowFresh(ctx context.Context) window.WindowInfo {
	s.prober.Invalidate()
	return s.prober.GetActiveWindow(ctx)
}

// ReadText returns the clipboard text.
func (s *Service) ReadText(ctx context.Context) (string, error) {
	return s.clipboard.ReadText(ctx)
}

// WriteText replaces the clipboard text.
func (s *Service) WriteText(ctx context.Context, text string) bool {
	return s.clipboard.WriteText(ctx, text)
}

// StartMonitor begins polling the clipboard; a running monitor is restarted.
func (s *Service) StartMonitor(ctx context.Context, interval time.Duration) {
	s.monitor.Start(ctx, interval)
}

// StopMonitor stops polling and waits for the loop to exit.
func (s *Service) StopMonitor() { s.monitor.Stop() }

// AddClipboardListener registers fn for clipboard changes.
func (s *Service) AddClipboardListener(fn monitor.Listener) monitor.Handle {
	return s.monitor.AddListener(fn)
}

// RemoveClipboardListener unregisters h.
func (s *Service) RemoveClipboardListener(h monitor.Handle) { s.monitor.RemoveListener(h) }

// IsAppRunning reports whether an application with a matching process name
// owns a titled window.
func (s *Service) IsAppRunning(ctx context.Context, name string) bool {
	return s.apps.IsAppRunning(ctx, name)
}

// Windows lists titled top-level windows.
func (s *Service) Windows(ctx context.Context) ([]window.Summary, error) {
	return s.apps.Windows(ctx)
}

// Status reports the resolved strategies and counters.
func (s *Service) Status() Status {
	read, write := s.clipboard.Tools()
	kinds := s.table.Kinds()
	supported := make([]string, len(kinds))
	for i, k := range kinds {
		supported[i] = k.String()
	}
	return Status{
		Platform:       s.table.Platform(),
		DisplayServer:  s.table.Environment().DisplayServer,
		Strategy:       s.table.Name(),
		Supported:      supported,
		ReadTools:      read,
		WriteTools:     write,
		ProbeStats:     s.prober.Stats(),
		MonitorRunning: s.monitor.Running(),
	}
}

// Close stops the monitor.
func (s *Service) Close() {
	s.monitor.Stop()
}
