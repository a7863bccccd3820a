// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/runner"
)

// Handler produces the outcome of one invocation.
type Handler func(ctx context.Context, c runner.Command) (*runner.Result, error)

// Fake dispatches commands by program name. Unknown programs fail to launch,
// as they would on a host without the tool.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []runner.Command
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{handlers: make(map[string]Handler)}
}

// On installs a handler for name.
func (f *Fake) On(name string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
	return f
}

// Reply makes name exit 0 with stdout.
func (f *Fake) Reply(name, stdout string) *Fake {
	return f.On(name, func(context.Context, runner.Command) (*runner.Result, error) {
		return &runner.Result{Stdout: stdout}, nil
	})
}

// Fail makes name exit with code and stderr.
func (f *Fake) Fail(name string, code int, stderr string) *Fake {
	return f.On(name, func(context.Context, runner.Command) (*runner.Result, error) {
		return &runner.Result{ExitCode: code, Stderr: stderr}, nil
	})
}

// Hang makes name block until its context ends, then report a timeout.
func (f *Fake) Hang(name string) *Fake {
	return f.On(name, func(ctx context.Context, c runner.Command) (*runner.Result, error) {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = runner.DefaultTimeout
		}
		select {
		case <-ctx.Done():
		case <-time.After(timeout):
		}
		return &runner.Result{ExitCode: -1, TimedOut: true}, errs.New(name, errs.CodeTimeout, errors.New("deadline exceeded"))
	})
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, c runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	h, ok := f.handlers[c.Name]
	f.mu.Unlock()

	if !ok {
		return nil, errs.New(c.Name, errs.CodeLaunch, &exec.Error{Name: c.Name, Err: exec.ErrNotFound})
	}
	return h(ctx, c)
}

// Calls returns a copy of every command seen so far.
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]runner.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many times name was invoked.
func (f *Fake) Count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}
