package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/snipnote/deskbridge/internal/desktop"
	"github.com/snipnote/deskbridge/internal/journal"
	"github.com/snipnote/deskbridge/pkg/window"
)

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskbridge.toml")
	if err := os.WriteFile(path, []byte("[monitor]\ninterval = \"2s\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DESKBRIDGE_MONITOR_INTERVAL", "3s")
	t.Setenv("DESKBRIDGE_JOURNAL_RETENTION", "48h")

	cmd := newWatchCmd()
	if err := cmd.Flags().Parse([]string{"--config", path, "--interval", "250ms"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(cmd, viper.New())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Monitor.Interval != 250*time.Millisecond {
		t.Errorf("Interval = %v, want flag value 250ms", cfg.Monitor.Interval)
	}
	if cfg.Journal.Retention != 48*time.Hour {
		t.Errorf("Retention = %v, want env value 48h", cfg.Journal.Retention)
	}
}

func TestLoadConfigUnchangedFlagKeepsFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskbridge.toml")
	if err := os.WriteFile(path, []byte("[monitor]\ninterval = \"2s\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newWatchCmd()
	if err := cmd.Flags().Parse([]string{"--config", path}); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(cmd, viper.New())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Monitor.Interval != 2*time.Second {
		t.Errorf("Interval = %v, want 2s", cfg.Monitor.Interval)
	}
}

func TestLoadConfigRejectsOutOfRangeInterval(t *testing.T) {
	cmd := newWatchCmd()
	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Parse([]string{"--config", path, "--interval", "1ms"}); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(cmd, viper.New()); err == nil {
		t.Fatal("loadConfig() accepted an interval below the minimum")
	}
}

func TestPrintWindow(t *testing.T) {
	pid := 4242
	info := window.WindowInfo{
		Title:        "notes.txt - Editor",
		ProcessName:  "editor",
		ProcessID:    &pid,
		WindowHandle: "0x3a00007",
		WindowRect:   &window.Rect{Left: 10, Top: 20, Right: 810, Bottom: 620, Width: 800, Height: 600},
		Platform:     window.PlatformLinux,
	}

	var buf bytes.Buffer
	printWindow(&buf, info)
	out := buf.String()

	for _, want := range []string{"notes.txt - Editor", "PID:      4242", "0x3a00007", "800x600+10+20"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Path:") {
		t.Errorf("empty path should be omitted:\n%s", out)
	}
}

func TestPrintStatus(t *testing.T) {
	r := statusReport{
		Status: desktop.Status{
			Platform:      window.PlatformLinux,
			DisplayServer: "wayland",
			Strategy:      "wayland",
			ReadTools:     []string{"wl-paste", "xclip"},
		},
		Watcher: 99,
		Focused: window.Default(window.PlatformLinux, time.Now()),
		Missing: []string{"xclip"},
	}

	var buf bytes.Buffer
	printStatus(&buf, r)
	out := buf.String()

	for _, want := range []string{"running (PID: 99)", "linux (wayland)", "wl-paste, xclip", "Write:     none", "Missing:   xclip", "Clipboard: unavailable", "Unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMissingTools(t *testing.T) {
	got := missingTools(
		[]string{"deskbridge-no-such-tool", "go-test-absent"},
		[]string{"deskbridge-no-such-tool"},
	)
	want := []string{"deskbridge-no-such-tool", "go-test-absent"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("missingTools() = %v, want %v", got, want)
	}
}

func runHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newHistoryCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHistoryShowAndClear(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "deskbridge.toml")
	if err := os.WriteFile(cfgPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "journal.db")

	db, err := journal.Connect(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatal(err)
	}
	repo := journal.NewRepository(db)
	clip := journal.NewClip("line one\nline two", window.Default(window.PlatformLinux, time.Now()), time.Now())
	if err := repo.Create(clip); err != nil {
		t.Fatal(err)
	}
	db.Close()

	base := []string{"--config", cfgPath, "--journal", dbPath, "--log-level", "error"}

	out, err := runHistory(t, append(base, "--show", "1")...)
	if err != nil || out != "line one\nline two" {
		t.Fatalf("--show 1 = %q, %v", out, err)
	}
	if _, err := runHistory(t, append(base, "--show", "99")...); err == nil || !strings.Contains(err.Error(), "no clip with id 99") {
		t.Errorf("--show 99 error = %v", err)
	}
	if _, err := runHistory(t, append(base, "--clear", "--errors")...); err == nil {
		t.Error("--clear with --errors accepted")
	}

	if out, err := runHistory(t, append(base, "--clear")...); err != nil || !strings.Contains(out, "Journal cleared") {
		t.Fatalf("--clear = %q, %v", out, err)
	}
	out, err = runHistory(t, append(base, "--json")...)
	if err != nil || !strings.Contains(out, `"stored": 0`) {
		t.Errorf("history after clear = %q, %v", out, err)
	}
}
