// Package runner executes short-lived external commands under a hard deadline.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/snipnote/deskbridge/pkg/errs"
)

const (
	// DefaultTimeout applies when a Command carries no timeout.
	DefaultTimeout = 5 * time.Second

	// waitDelay bounds how long Wait drains pipes held open by orphaned
	// descendants after the process itself is gone.
	waitDelay = 250 * time.Millisecond
)

// Command describes one external program invocation.
type Command struct {
	Name    string
	Args    []string
	Stdin   *string
	Timeout time.Duration
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a command that was started.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	PID      int
	Duration time.Duration
}

// OK reports a zero exit within the deadline.
func (r *Result) OK() bool {
	return r != nil && !r.TimedOut && r.ExitCode == 0
}

// Runner abstracts command execution so strategies can be tested without a desktop.
type Runner interface {
	// Run starts the command and waits for it. A non-zero exit is reported in
	// the Result, not as an error. Errors match errs.Launch when the program
	// cannot be started and errs.Timeout when the deadline killed it; in the
	// timeout case the partial Result is returned alongside the error.
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Exec runs commands on the local host.
type Exec struct{}

// Run implements Runner.
func (Exec) Run(parent context.Context, c Command) (*Result, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stdin != nil {
		cmd.Stdin = strings.NewReader(*c.Stdin)
	}
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errs.New(c.Name, errs.CodeLaunch, err)
	}

	res := &Result{PID: cmd.Process.Pid}
	err := cmd.Wait()
	res.Duration = time.Since(start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil && ctx.Err() != nil {
		res.ExitCode = -1
		if parent.Err() == nil || errors.Is(parent.Err(), context.DeadlineExceeded) {
			res.TimedOut = true
			return res, errs.Newf(c.Name, errs.CodeTimeout, "%s did not exit within %s", c.Name, timeout)
		}
		return res, pkgerrors.Wrapf(parent.Err(), "%s cancelled", c.Name)
	}

	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
		return res, nil
	}

	res.ExitCode = -1
	return res, errs.New(c.Name, errs.CodeUnknown, fmt.Errorf("wait: %w", err))
}

// Lookup reports whether name resolves to an executable on PATH.
func Lookup(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Text returns trimmed stdout of a successful run, or a classified error
// describing why the run did not succeed.
func Text(ctx context.Context, r Runner, c Command) (string, error) {
	res, err := r.Run(ctx, c)
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "", ExitError(c, res)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ExitError converts a non-zero exit into an errs.Exit error carrying stderr.
func ExitError(c Command, res *Result) error {
	e := errs.Newf(c.Name, errs.CodeExit, "%s exited with status %d", c.Name, res.ExitCode)
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return e.With("stderr", firstLine(msg))
	}
	return e
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
