package reporter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/snipnote/deskbridge/internal/journal"
	"github.com/snipnote/deskbridge/pkg/window"
)

// 2024-05-15 is a Wednesday.
var now = time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*Reporter, *journal.Repository) {
	t.Helper()
	db, err := journal.Connect(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := journal.NewRepository(db)
	r := New(repo)
	r.now = func() time.Time { return now }
	return r, repo
}

func add(t *testing.T, repo *journal.Repository, app, text string, at time.Time) {
	t.Helper()
	info := window.Default(window.PlatformLinux, at)
	info.ProcessName = app
	if err := repo.Create(journal.NewClip(text, info, at)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestGetPeriod(t *testing.T) {
	r := New(nil)
	r.now = func() time.Time { return now }

	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{"day", time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)},
		{"week", time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
		{"month", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			p, err := r.getPeriod(tt.period)
			if err != nil {
				t.Fatalf("getPeriod() error = %v", err)
			}
			if !p.Start.Equal(tt.start) || !p.End.Equal(tt.end) {
				t.Errorf("getPeriod(%s) = %v..%v", tt.period, p.Start, p.End)
			}
		})
	}

	if _, err := r.getPeriod("year"); err == nil {
		t.Error("getPeriod(year) accepted")
	}
}

func TestAppReport(t *testing.T) {
	r, repo := setup(t)
	add(t, repo, "firefox", "old", now.AddDate(0, 0, -3))
	add(t, repo, "firefox", "a", now.Add(-2*time.Hour))
	add(t, repo, "code", "b", now.Add(-time.Hour))
	add(t, repo, "firefox", "c", now.Add(-time.Minute))

	report, err := r.AppReport("day")
	if err != nil {
		t.Fatalf("AppReport() error = %v", err)
	}
	if report.TotalClips != 3 || len(report.Apps) != 2 {
		t.Fatalf("AppReport() = %+v", report)
	}
	if report.Apps[0].AppName != "firefox" || report.Apps[0].ClipCount != 2 {
		t.Errorf("top app = %+v", report.Apps[0])
	}
	if p := report.Apps[1].Percentage; p < 33.3 || p > 33.4 {
		t.Errorf("code percentage = %v", p)
	}

	text := r.FormatAppReportText(report)
	if !strings.Contains(text, "Total Clips: 3") || !strings.Contains(text, "firefox") {
		t.Errorf("FormatAppReportText() =\n%s", text)
	}
}

func TestHistory(t *testing.T) {
	r, repo := setup(t)

	h, err := r.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if !strings.Contains(r.FormatHistoryText(h), "No clips recorded yet.") {
		t.Error("empty history not reported")
	}

	add(t, repo, "term", "git status\ngit diff", now.Add(-90*time.Second))
	add(t, repo, "code", strings.Repeat("x", 100), now.Add(-5*time.Second))

	h, err = r.History(1)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(h.Clips) != 1 || h.Stored != 2 || h.Clips[0].AppName != "code" {
		t.Fatalf("History(1) = %+v", h)
	}

	h, _ = r.History(0)
	text := r.FormatHistoryText(h)
	for _, want := range []string{"5s ago", "1m ago", "git status git diff", "…", "Showing 2 of 2 stored clips"} {
		if !strings.Contains(text, want) {
			t.Errorf("FormatHistoryText() missing %q:\n%s", want, text)
		}
	}
}

func TestHistorySince(t *testing.T) {
	r, repo := setup(t)
	add(t, repo, "term", "old", now.Add(-3*time.Hour))
	add(t, repo, "term", "first", now.Add(-30*time.Minute))
	add(t, repo, "code", "second", now.Add(-time.Minute))

	h, err := r.HistorySince(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("HistorySince() error = %v", err)
	}
	if len(h.Clips) != 2 || h.Stored != 3 {
		t.Fatalf("HistorySince() = %d clips of %d", len(h.Clips), h.Stored)
	}
	if h.Clips[0].Text != "second" || h.Clips[1].Text != "first" {
		t.Errorf("HistorySince() order = %q, %q", h.Clips[0].Text, h.Clips[1].Text)
	}
}

func TestErrors(t *testing.T) {
	r, repo := setup(t)

	logs, err := r.Errors(0)
	if err != nil {
		t.Fatalf("Errors() error = %v", err)
	}
	if !strings.Contains(r.FormatErrorsText(logs), "No errors recorded.") {
		t.Error("empty error log not reported")
	}

	for i, msg := range []string{"disk full", "database is locked"} {
		l := &journal.ErrorLog{Timestamp: now.Add(time.Duration(i-2) * time.Minute), Source: "recorder", ErrorMsg: msg}
		if err := repo.CreateErrorLog(l); err != nil {
			t.Fatalf("CreateErrorLog() error = %v", err)
		}
	}

	logs, err = r.Errors(1)
	if err != nil {
		t.Fatalf("Errors() error = %v", err)
	}
	if len(logs) != 1 || logs[0].ErrorMsg != "database is locked" {
		t.Fatalf("Errors(1) = %+v", logs)
	}

	logs, _ = r.Errors(10)
	text := r.FormatErrorsText(logs)
	for _, want := range []string{"recorder", "disk full", "1m ago", "2m ago"} {
		if !strings.Contains(text, want) {
			t.Errorf("FormatErrorsText() missing %q:\n%s", want, text)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	r := New(nil)
	out, err := r.FormatJSON(&History{Stored: 3, GeneratedAt: now})
	if err != nil {
		t.Fatalf("FormatJSON() error = %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("FormatJSON() produced invalid JSON: %v", err)
	}
	if back["stored"].(float64) != 3 {
		t.Errorf("stored = %v", back["stored"])
	}
}
