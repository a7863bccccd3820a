package window

import (
	"context"
	"time"
)

// Unknown is the sentinel for string fields the probe could not determine.
const Unknown = "Unknown"

// Platform identifies the host operating system family.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformOther   Platform = "other"
)

// Rect is a window bounding box in screen coordinates
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRect builds a Rect from its edges
func NewRect(left, top, right, bottom int) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
		Width:  right - left,
		Height: bottom - top,
	}
}

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	Title        string    `json:"title"`
	ProcessName  string    `json:"processName"`
	ProcessPath  string    `json:"processPath"`
	ProcessID    *int      `json:"processId,omitempty"`
	WindowHandle string    `json:"windowHandle,omitempty"` // empty when unknown
	WindowRect   *Rect     `json:"windowRect,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Platform     Platform  `json:"platform"`
}

// Default returns the record used whenever a probe cannot produce one.
func Default(p Platform, now time.Time) WindowInfo {
	return WindowInfo{
		Title:       Unknown,
		ProcessName: Unknown,
		ProcessPath: Unknown,
		Timestamp:   now,
		Platform:    p,
	}
}

// IsUnknown reports whether info carries no discovered data.
func (w WindowInfo) IsUnknown() bool {
	return w.Title == Unknown && w.ProcessName == Unknown && w.ProcessPath == Unknown &&
		w.ProcessID == nil && w.WindowHandle == "" && w.WindowRect == nil
}

// Clone returns a deep copy so cached values cannot be mutated by callers.
func (w WindowInfo) Clone() WindowInfo {
	cp := w
	if w.ProcessID != nil {
		pid := *w.ProcessID
		cp.ProcessID = &pid
	}
	if w.WindowRect != nil {
		r := *w.WindowRect
		cp.WindowRect = &r
	}
	return cp
}

// Summary is one entry of a window enumeration
type Summary struct {
	Title       string `json:"title"`
	ProcessName string `json:"processName"`
}

// Prober is the interface satisfied by active window discovery
type Prober interface {
	// GetActiveWindow returns the focused window. It never fails; on any
	// probe failure it returns Default for the current platform.
	GetActiveWindow(ctx context.Context) WindowInfo
}
