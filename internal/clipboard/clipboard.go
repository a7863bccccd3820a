// Package clipboard reads and writes the system clipboard as text by walking
// the platform's tool chain until one tool succeeds.
package clipboard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/integrations/common"
	"github.com/snipnote/deskbridge/pkg/platform"
	"github.com/snipnote/deskbridge/pkg/runner"
)

// DefaultTimeout bounds each tool invocation.
const DefaultTimeout = 5 * time.Second

// Accessor is safe for concurrent use; it holds no clipboard state.
type Accessor struct {
	read    common.ToolChain
	write   common.ToolChain
	runner  runner.Runner
	timeout time.Duration
	log     *slog.Logger
}

// New creates an Accessor. timeout <= 0 selects DefaultTimeout; a nil logger
// uses slog.Default.
func New(table *platform.Table, r runner.Runner, timeout time.Duration, log *slog.Logger) *Accessor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	read, _ := table.ClipboardReader()
	write, _ := table.ClipboardWriter()
	return &Accessor{read: read, write: write, runner: r, timeout: timeout, log: log}
}

// ReadText returns the clipboard as text. An empty clipboard is "", not an
// error. When no tool in the chain works the error matches
// errs.ClipboardUnavailable.
func (a *Accessor) ReadText(ctx context.Context) (string, error) {
	if len(a.read) == 0 {
		return "", errs.New("clipboard read", errs.CodeClipboardUnavailable, errs.Unsupported)
	}

	var last error
	for _, tool := range a.read {
		c := tool.Command(nil, a.timeout)
		res, err := a.runner.Run(ctx, c)
		if err == nil && !res.OK() {
			err = runner.ExitError(c, res)
		}
		if err != nil {
			a.log.Debug("clipboard reader failed", "tool", tool.Name, "error", err)
			last = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		text := res.Stdout
		if tool.TrimNewline {
			text = trimNewline(text)
		}
		return text, nil
	}

	a.log.Warn("no clipboard reader succeeded", "tools", a.read.Names())
	return "", errs.New("clipboard read", errs.CodeClipboardUnavailable, errors.Wrap(last, "all clipboard readers failed"))
}

// WriteText replaces the clipboard contents and reports success.
func (a *Accessor) WriteText(ctx context.Context, text string) bool {
	for _, tool := range a.write {
		c := tool.Command(&text, a.timeout)
		res, err := a.runner.Run(ctx, c)
		if err == nil && !res.OK() {
			err = runner.ExitError(c, res)
		}
		if err == nil {
			return true
		}
		a.log.Debug("clipboard writer failed", "tool", tool.Name, "error", err)
		if ctx.Err() != nil {
			break
		}
	}

	if len(a.write) > 0 {
		a.log.Warn("no clipboard writer succeeded", "tools", a.write.Names())
	}
	return false
}

// Tools returns the read and write chains in fallback order.
func (a *Accessor) Tools() (read, write []string) {
	return a.read.Names(), a.write.Names()
}

func trimNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
