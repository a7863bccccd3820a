package platform

import (
	"testing"

	"github.com/snipnote/deskbridge/pkg/integrations/common"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name           string
		sessionType    string
		waylandDisplay string
		x11Display     string
		want           string
	}{
		{"Wayland session", "wayland", "wayland-0", "", DisplayWayland},
		{"X11 session", "x11", "", ":0", DisplayX11},
		{"Unknown session", "", "", "", DisplayUnknown},
		{"Wayland display set", "", "wayland-1", "", DisplayWayland},
		{"X11 display set", "", "", ":1", DisplayX11},
		{"XWayland", "", "wayland-0", ":0", DisplayWayland},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := map[string]string{
				"XDG_SESSION_TYPE": tt.sessionType,
				"WAYLAND_DISPLAY":  tt.waylandDisplay,
				"DISPLAY":          tt.x11Display,
			}
			getenv := func(k string) string { return env[k] }

			if got := DetectDisplayServer(getenv); got != tt.want {
				t.Errorf("DetectDisplayServer() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPlatformOf(t *testing.T) {
	tests := map[string]window.Platform{
		"windows": window.PlatformWindows,
		"darwin":  window.PlatformMacOS,
		"linux":   window.PlatformLinux,
		"freebsd": window.PlatformLinux,
		"plan9":   window.PlatformOther,
		"js":      window.PlatformOther,
	}
	for goos, want := range tests {
		if got := PlatformOf(goos); got != want {
			t.Errorf("PlatformOf(%q) = %s, want %s", goos, got, want)
		}
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		env       Environment
		strategy  string
		readFirst string
		kinds     int
	}{
		{"windows", Environment{Platform: window.PlatformWindows}, "powershell", "powershell", 4},
		{"macos", Environment{Platform: window.PlatformMacOS}, "osascript", "pbpaste", 4},
		{"x11", Environment{Platform: window.PlatformLinux, DisplayServer: DisplayX11}, "x11", "xclip", 4},
		{"headless linux", Environment{Platform: window.PlatformLinux, DisplayServer: DisplayUnknown}, "x11", "xclip", 4},
		{"wayland", Environment{Platform: window.PlatformLinux, DisplayServer: DisplayWayland}, "wayland", "wl-paste", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Build(tt.env)
			if table.Name() != tt.strategy {
				t.Errorf("Name() = %q, want %q", table.Name(), tt.strategy)
			}
			if table.Platform() != tt.env.Platform {
				t.Errorf("Platform() = %s", table.Platform())
			}
			chain, ok := table.ClipboardReader()
			if !ok || chain[0].Name != tt.readFirst {
				t.Errorf("ClipboardReader() = %v, %v", chain.Names(), ok)
			}
			if got := len(table.Kinds()); got != tt.kinds {
				t.Errorf("Kinds() = %v, want %d kinds", table.Kinds(), tt.kinds)
			}
			if _, ok := table.WindowProbe(); !ok {
				t.Error("WindowProbe() unsupported")
			}
		})
	}
}

func TestBuildUnsupportedPlatform(t *testing.T) {
	table := Build(Environment{Platform: window.PlatformOther})

	if len(table.Kinds()) != 0 {
		t.Errorf("Kinds() = %v, want none", table.Kinds())
	}
	for _, k := range allKinds {
		if table.Supports(k) {
			t.Errorf("Supports(%s) = true", k)
		}
	}
	if _, ok := table.WindowProbe(); ok {
		t.Error("WindowProbe() reported support")
	}
	if _, ok := table.ClipboardWriter(); ok {
		t.Error("ClipboardWriter() reported support")
	}
	if _, ok := table.AppEnumerator(); ok {
		t.Error("AppEnumerator() reported support")
	}
	if table.ProbeTimeout() != runner.DefaultTimeout {
		t.Errorf("ProbeTimeout() = %v", table.ProbeTimeout())
	}
}

func TestTableIsImmutable(t *testing.T) {
	chain := common.ToolChain{{Name: "a"}, {Name: "b"}}
	table := NewTable(Environment{Platform: window.PlatformLinux}, common.Strategies{ClipboardRead: chain})

	chain[0].Name = "mutated"
	got, _ := table.ClipboardReader()
	if got[0].Name != "a" {
		t.Errorf("table observed caller mutation: %v", got.Names())
	}

	got[1].Name = "mutated"
	again, _ := table.ClipboardReader()
	if again[1].Name != "b" {
		t.Errorf("table observed accessor mutation: %v", again.Names())
	}
}

func TestKindString(t *testing.T) {
	if KindClipboardWrite.String() != "clipboard-write" || Kind(42).String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}
