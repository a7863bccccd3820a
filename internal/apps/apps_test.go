package apps

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/integrations/common"
	"github.com/snipnote/deskbridge/pkg/platform"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/runner/runnertest"
	"github.com/snipnote/deskbridge/pkg/window"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func staticEnumerator(list []window.Summary, err error) common.AppEnumerator {
	return func(context.Context, runner.Runner, time.Duration) ([]window.Summary, error) {
		return list, err
	}
}

func newQuery(enum common.AppEnumerator) *Query {
	table := platform.NewTable(
		platform.Environment{Platform: window.PlatformWindows},
		common.Strategies{AppEnumeration: enum},
	)
	return New(table, runnertest.New(), time.Second, discard)
}

func TestIsAppRunning(t *testing.T) {
	q := newQuery(staticEnumerator([]window.Summary{
		{Title: "Inbox - Outlook", ProcessName: "OUTLOOK"},
		{Title: "", ProcessName: "SearchHost"},
		{Title: "Untitled - Notepad", ProcessName: "notepad"},
	}, nil))

	tests := []struct {
		name string
		want bool
	}{
		{"outlook", true},
		{"OutLook", true},
		{"note", true},
		{"searchhost", false},
		{"chrome", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.IsAppRunning(context.Background(), tt.name); got != tt.want {
				t.Errorf("IsAppRunning(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsAppRunningFailures(t *testing.T) {
	failing := newQuery(staticEnumerator(nil, errs.New("wmctrl", errs.CodeTimeout, nil)))
	if failing.IsAppRunning(context.Background(), "anything") {
		t.Error("IsAppRunning() = true on enumeration failure")
	}

	unsupported := newQuery(nil)
	if unsupported.IsAppRunning(context.Background(), "anything") {
		t.Error("IsAppRunning() = true on unsupported platform")
	}
	if _, err := unsupported.Windows(context.Background()); !errs.IsUnsupported(err) {
		t.Errorf("Windows() error = %v, want unsupported", err)
	}
}

func TestWindowsFiltersUntitled(t *testing.T) {
	q := newQuery(staticEnumerator([]window.Summary{
		{Title: "a", ProcessName: "x"},
		{Title: "  ", ProcessName: "y"},
		{Title: window.Unknown, ProcessName: "z"},
	}, nil))

	got, err := q.Windows(context.Background())
	if err != nil {
		t.Fatalf("Windows() error = %v", err)
	}
	if len(got) != 1 || got[0].ProcessName != "x" {
		t.Errorf("Windows() = %+v", got)
	}
}

func TestEnumerationIsNotCached(t *testing.T) {
	calls := 0
	q := newQuery(func(context.Context, runner.Runner, time.Duration) ([]window.Summary, error) {
		calls++
		return []window.Summary{{Title: "t", ProcessName: "p"}}, nil
	})

	q.IsAppRunning(context.Background(), "p")
	q.IsAppRunning(context.Background(), "p")
	if calls != 2 {
		t.Errorf("enumerated %d times, want 2", calls)
	}
}
