//go:build unix

package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/snipnote/deskbridge/pkg/errs"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if !Lookup(name) {
		t.Skipf("%s not available on this system", name)
	}
}

func TestExecRun(t *testing.T) {
	requireTool(t, "sh")

	tests := []struct {
		name       string
		cmd        Command
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "success",
			cmd:        Command{Name: "sh", Args: []string{"-c", "printf hello"}},
			wantStdout: "hello",
		},
		{
			name:       "non-zero exit is not an error",
			cmd:        Command{Name: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}},
			wantCode:   3,
			wantStderr: "oops\n",
		},
		{
			name:       "stdin is piped",
			cmd:        Command{Name: "sh", Args: []string{"-c", "cat"}, Stdin: ptr("piped text")},
			wantStdout: "piped text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Exec{}.Run(context.Background(), tt.cmd)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if res.Stdout != tt.wantStdout {
				t.Errorf("Stdout = %q, want %q", res.Stdout, tt.wantStdout)
			}
			if res.Stderr != tt.wantStderr {
				t.Errorf("Stderr = %q, want %q", res.Stderr, tt.wantStderr)
			}
			if res.TimedOut {
				t.Error("TimedOut = true")
			}
			if res.PID == 0 {
				t.Error("PID not recorded")
			}
		})
	}
}

func TestExecRunLaunchError(t *testing.T) {
	res, err := Exec{}.Run(context.Background(), Command{Name: "deskbridge-no-such-tool-xyz"})
	if err == nil {
		t.Fatal("Run() error = nil, want launch error")
	}
	if !errors.Is(err, errs.Launch) {
		t.Errorf("error %v does not match errs.Launch", err)
	}
	if errors.Is(err, errs.Timeout) {
		t.Error("launch error matched errs.Timeout")
	}
	if res != nil {
		t.Errorf("Result = %+v, want nil", res)
	}
}

func TestExecRunTimeoutKillsProcess(t *testing.T) {
	requireTool(t, "sleep")

	start := time.Now()
	res, err := Exec{}.Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"30"},
		Timeout: 500 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if !errors.Is(err, errs.Timeout) {
		t.Fatalf("Run() error = %v, want errs.Timeout", err)
	}
	if res == nil || !res.TimedOut {
		t.Fatalf("Result = %+v, want TimedOut", res)
	}
	if elapsed < 450*time.Millisecond || elapsed > 2*time.Second {
		t.Errorf("Run() returned after %v, want about 500ms", elapsed)
	}

	// The child has been reaped, so the pid no longer exists.
	if err := unix.Kill(res.PID, 0); err != unix.ESRCH {
		t.Errorf("Kill(%d, 0) = %v, want ESRCH", res.PID, err)
	}
}

func TestExecRunShellWrapperGroupKilled(t *testing.T) {
	requireTool(t, "sh")
	requireTool(t, "sleep")

	start := time.Now()
	res, err := Exec{}.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 30; echo done"},
		Timeout: 300 * time.Millisecond,
	})
	if !errors.Is(err, errs.Timeout) {
		t.Fatalf("Run() error = %v, want errs.Timeout", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Run() blocked for %v after the deadline", time.Since(start))
	}
	if strings.Contains(res.Stdout, "done") {
		t.Error("wrapped command ran to completion")
	}
}

func TestExecRunParentCancel(t *testing.T) {
	requireTool(t, "sleep")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res, err := Exec{}.Run(ctx, Command{Name: "sleep", Args: []string{"30"}, Timeout: 5 * time.Second})
	if err == nil {
		t.Fatal("Run() error = nil, want cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
	if res.TimedOut {
		t.Error("cancellation reported as timeout")
	}
}

func TestText(t *testing.T) {
	requireTool(t, "sh")

	out, err := Text(context.Background(), Exec{}, Command{Name: "sh", Args: []string{"-c", "echo '  42  '"}})
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if out != "42" {
		t.Errorf("Text() = %q, want 42", out)
	}

	_, err = Text(context.Background(), Exec{}, Command{Name: "sh", Args: []string{"-c", "echo bad >&2; exit 1"}})
	if !errors.Is(err, errs.Exit) {
		t.Fatalf("Text() error = %v, want errs.Exit", err)
	}
	if !strings.Contains(err.Error(), "stderr=bad") {
		t.Errorf("error %q does not carry stderr", err)
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "xdotool", Args: []string{"getwindowname", "42"}}
	if got := c.String(); got != "xdotool getwindowname 42" {
		t.Errorf("String() = %q", got)
	}
	if got := (Command{Name: "pbpaste"}).String(); got != "pbpaste" {
		t.Errorf("String() = %q", got)
	}
}

func ptr(s string) *string { return &s }
