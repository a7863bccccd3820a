package platform

import (
	"os"
	"runtime"

	"github.com/snipnote/deskbridge/pkg/window"
)

// Display servers reported by DetectDisplayServer.
const (
	DisplayX11     = "x11"
	DisplayWayland = "wayland"
	DisplayUnknown = "unknown"
)

// Environment is what Build needs to know about the host.
type Environment struct {
	Platform      window.Platform
	DisplayServer string
}

// Detect inspects the running process.
func Detect() Environment {
	env := Environment{Platform: PlatformOf(runtime.GOOS)}
	if env.Platform == window.PlatformLinux {
		env.DisplayServer = DetectDisplayServer(os.Getenv)
	}
	return env
}

// PlatformOf maps a GOOS value to a platform tag.
func PlatformOf(goos string) window.Platform {
	switch goos {
	case "windows":
		return window.PlatformWindows
	case "darwin":
		return window.PlatformMacOS
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return window.PlatformLinux
	default:
		return window.PlatformOther
	}
}

// DetectDisplayServer reads the session variables through getenv.
func DetectDisplayServer(getenv func(string) string) string {
	sessionType := getenv("XDG_SESSION_TYPE")
	waylandDisplay := getenv("WAYLAND_DISPLAY")
	x11Display := getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return DisplayWayland
	}

	if sessionType == "x11" || x11Display != "" {
		return DisplayX11
	}

	return DisplayUnknown
}
