// Package platform is the single place that decides which strategy
// implementations serve the current host.
package platform

import (
	"time"

	"github.com/snipnote/deskbridge/pkg/integrations/common"
	"github.com/snipnote/deskbridge/pkg/integrations/darwin"
	"github.com/snipnote/deskbridge/pkg/integrations/wayland"
	"github.com/snipnote/deskbridge/pkg/integrations/windows"
	"github.com/snipnote/deskbridge/pkg/integrations/x11"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// Kind identifies one capability.
type Kind int

const (
	KindWindowProbe Kind = iota
	KindClipboardRead
	KindClipboardWrite
	KindAppEnumeration
)

var allKinds = []Kind{KindWindowProbe, KindClipboardRead, KindClipboardWrite, KindAppEnumeration}

func (k Kind) String() string {
	switch k {
	case KindWindowProbe:
		return "window-probe"
	case KindClipboardRead:
		return "clipboard-read"
	case KindClipboardWrite:
		return "clipboard-write"
	case KindAppEnumeration:
		return "app-enumeration"
	default:
		return "unknown"
	}
}

// Table is an immutable strategy lookup for one environment.
type Table struct {
	env        Environment
	strategies common.Strategies
}

// Build selects the strategies for env.
func Build(env Environment) *Table {
	var s common.Strategies
	switch env.Platform {
	case window.PlatformWindows:
		s = windows.Strategies()
	case window.PlatformMacOS:
		s = darwin.Strategies()
	case window.PlatformLinux:
		if env.DisplayServer == DisplayWayland {
			s = wayland.Strategies()
		} else {
			s = x11.Strategies()
		}
	}
	return NewTable(env, s)
}

// NewTable wraps explicit strategies. The tool chains are copied.
func NewTable(env Environment, s common.Strategies) *Table {
	s.ClipboardRead = append(common.ToolChain(nil), s.ClipboardRead...)
	s.ClipboardWrite = append(common.ToolChain(nil), s.ClipboardWrite...)
	if s.ProbeTimeout <= 0 {
		s.ProbeTimeout = runner.DefaultTimeout
	}
	return &Table{env: env, strategies: s}
}

// Environment returns the environment the table was built for.
func (t *Table) Environment() Environment { return t.env }

// Platform is the tag stamped on every WindowInfo.
func (t *Table) Platform() window.Platform { return t.env.Platform }

// Name describes the selected strategy set, empty when nothing is supported.
func (t *Table) Name() string { return t.strategies.Name }

// WindowProbe returns the focused-window probe.
func (t *Table) WindowProbe() (common.WindowProbe, bool) {
	return t.strategies.WindowProbe, t.strategies.WindowProbe != nil
}

// ProbeTimeout is the platform default bound for one probe.
func (t *Table) ProbeTimeout() time.Duration { return t.strategies.ProbeTimeout }

// ClipboardReader returns a copy of the read chain.
func (t *Table) ClipboardReader() (common.ToolChain, bool) {
	c := t.strategies.ClipboardRead
	return append(common.ToolChain(nil), c...), len(c) > 0
}

// ClipboardWriter returns a copy of the write chain.
func (t *Table) ClipboardWriter() (common.ToolChain, bool) {
	c := t.strategies.ClipboardWrite
	return append(common.ToolChain(nil), c...), len(c) > 0
}

// AppEnumerator returns the window enumeration strategy.
func (t *Table) AppEnumerator() (common.AppEnumerator, bool) {
	return t.strategies.AppEnumeration, t.strategies.AppEnumeration != nil
}

// Supports reports whether kind has an implementation.
func (t *Table) Supports(kind Kind) bool {
	switch kind {
	case KindWindowProbe:
		return t.strategies.WindowProbe != nil
	case KindClipboardRead:
		return len(t.strategies.ClipboardRead) > 0
	case KindClipboardWrite:
		return len(t.strategies.ClipboardWrite) > 0
	case KindAppEnumeration:
		return t.strategies.AppEnumeration != nil
	default:
		return false
	}
}

// Kinds lists the supported capabilities in a fixed order.
func (t *Table) Kinds() []Kind {
	var kinds []Kind
	for _, k := range allKinds {
		if t.Supports(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
