// Package apps answers whether an application currently owns a window.
package apps

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/platform"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// DefaultTimeout bounds one enumeration.
const DefaultTimeout = 5 * time.Second

// Query enumerates windows on every call; results are never cached.
type Query struct {
	table   *platform.Table
	runner  runner.Runner
	timeout time.Duration
	log     *slog.Logger
}

// New creates a Query. timeout <= 0 selects DefaultTimeout.
func New(table *platform.Table, r runner.Runner, timeout time.Duration, log *slog.Logger) *Query {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Query{table: table, runner: r, timeout: timeout, log: log}
}

// Windows returns the titled top-level windows.
func (q *Query) Windows(ctx context.Context) ([]window.Summary, error) {
	enumerate, ok := q.table.AppEnumerator()
	if !ok {
		return nil, errs.New("enumerate", errs.CodeUnsupported, nil)
	}

	all, err := enumerate(ctx, q.runner, q.timeout)
	if err != nil {
		return nil, err
	}

	titled := make([]window.Summary, 0, len(all))
	for _, w := range all {
		if strings.TrimSpace(w.Title) == "" || w.Title == window.Unknown {
			continue
		}
		titled = append(titled, w)
	}
	return titled, nil
}

// IsAppRunning reports whether any titled window belongs to a process whose
// name contains name, ignoring case. Any failure answers false.
func (q *Query) IsAppRunning(ctx context.Context, name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return false
	}

	windows, err := q.Windows(ctx)
	if err != nil {
		q.log.Debug("window enumeration failed", "error", err)
		return false
	}
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.ProcessName), needle) {
			return true
		}
	}
	return false
}
