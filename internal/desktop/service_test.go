package desktop

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/snipnote/deskbridge/internal/prober"
	"github.com/snipnote/deskbridge/pkg/integrations/x11"
	"github.com/snipnote/deskbridge/pkg/platform"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/runner/runnertest"
	"github.com/snipnote/deskbridge/pkg/window"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type board struct {
	mu   sync.Mutex
	text string
}

func (b *board) set(s string) {
	b.mu.Lock()
	b.text = s
	b.mu.Unlock()
}

func (b *board) get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// x11Desktop scripts a small X11 session: one focused terminal window and a
// clipboard held by xclip.
func x11Desktop(clip *board) *runnertest.Fake {
	return runnertest.New().
		On("xdotool", func(_ context.Context, c runner.Command) (*runner.Result, error) {
			switch c.Args[0] {
			case "getactivewindow":
				return &runner.Result{Stdout: "4194311\n"}, nil
			case "getwindowname":
				return &runner.Result{Stdout: "~/src - bash\n"}, nil
			case "getwindowpid":
				return &runner.Result{Stdout: "5150\n"}, nil
			}
			return &runner.Result{ExitCode: 1}, nil
		}).
		On("ps", func(_ context.Context, c runner.Command) (*runner.Result, error) {
			// Enumeration asks for "pid comm" lines, the probe for the name alone.
			if slices.Contains(c.Args, "pid=,comm=") {
				return &runner.Result{Stdout: "5150 xterm\n"}, nil
			}
			return &runner.Result{Stdout: "xterm\n"}, nil
		}).
		Reply("readlink", "/usr/bin/xterm\n").
		Reply("wmctrl", "0x00400007  0 5150   host ~/src - bash\n").
		On("xclip", func(_ context.Context, c runner.Command) (*runner.Result, error) {
			if c.Stdin != nil {
				clip.set(*c.Stdin)
				return &runner.Result{}, nil
			}
			return &runner.Result{Stdout: clip.get()}, nil
		})
}

func newService(fake *runnertest.Fake) *Service {
	env := platform.Environment{Platform: window.PlatformLinux, DisplayServer: platform.DisplayX11}
	return New(Options{
		Table:    platform.NewTable(env, x11.Strategies()),
		Runner:   fake,
		CacheTTL: prober.DefaultTTL,
		Logger:   discard,
	})
}

func TestServiceEndToEnd(t *testing.T) {
	fake := x11Desktop(&board{text: "initial"})
	s := newService(fake)
	defer s.Close()
	ctx := context.Background()

	info := s.GetActiveWindow(ctx)
	if info.ProcessName != "xterm" || info.ProcessPath != "/usr/bin/xterm" || info.Platform != window.PlatformLinux {
		t.Errorf("GetActiveWindow() = %+v", info)
	}

	before := fake.Count("xdotool")
	s.GetActiveWindow(ctx)
	if fake.Count("xdotool") != before {
		t.Error("cached lookup spawned xdotool")
	}
	s.GetActiveWindowFresh(ctx)
	if fake.Count("xdotool") == before {
		t.Error("fresh lookup did not probe")
	}

	if !s.WriteText(ctx, "copied") {
		t.Fatal("WriteText() = false")
	}
	got, err := s.ReadText(ctx)
	if err != nil || got != "copied" {
		t.Errorf("ReadText() = %q, %v", got, err)
	}

	if !s.IsAppRunning(ctx, "XTERM") {
		t.Error("IsAppRunning(XTERM) = false")
	}
	if s.IsAppRunning(ctx, "") {
		t.Error("IsAppRunning(\"\") = true")
	}
}

func TestServiceMonitor(t *testing.T) {
	fake := x11Desktop(&board{text: "a"})
	s := newService(fake)
	defer s.Close()

	changes := make(chan string, 10)
	s.AddClipboardListener(func(text string) error {
		changes <- text
		return nil
	})

	s.StartMonitor(context.Background(), 5*time.Millisecond)
	if !s.Status().MonitorRunning {
		t.Error("Status().MonitorRunning = false")
	}
	s.WriteText(context.Background(), "b")

	select {
	case got := <-changes:
		if got != "b" {
			t.Errorf("listener got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	s.StopMonitor()
	if s.Status().MonitorRunning {
		t.Error("monitor still running after StopMonitor")
	}
}

func TestStatus(t *testing.T) {
	s := newService(x11Desktop(&board{}))

	st := s.Status()
	if st.Platform != window.PlatformLinux || st.Strategy != "x11" || st.DisplayServer != platform.DisplayX11 {
		t.Errorf("Status() = %+v", st)
	}
	if len(st.Supported) != 4 || st.ReadTools[0] != "xclip" {
		t.Errorf("Status() = %+v", st)
	}
}

func TestUnsupportedPlatform(t *testing.T) {
	fake := runnertest.New()
	s := New(Options{
		Table:  platform.Build(platform.Environment{Platform: window.PlatformOther}),
		Runner: fake,
		Logger: discard,
	})

	if info := s.GetActiveWindow(context.Background()); !info.IsUnknown() {
		t.Errorf("GetActiveWindow() = %+v", info)
	}
	if _, err := s.ReadText(context.Background()); err == nil {
		t.Error("ReadText() succeeded on unsupported platform")
	}
	if s.WriteText(context.Background(), "x") || s.IsAppRunning(context.Background(), "x") {
		t.Error("unsupported platform reported success")
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("spawned %v", fake.Calls())
	}
}
