package common

import (
	"context"
	"time"

	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// WindowProbe asks the OS for the focused window and returns one JSON
// window.Record. It must respect timeout for every command it spawns.
type WindowProbe func(ctx context.Context, r runner.Runner, timeout time.Duration) ([]byte, error)

// AppEnumerator lists top-level windows with their owning process names.
type AppEnumerator func(ctx context.Context, r runner.Runner, timeout time.Duration) ([]window.Summary, error)

// Tool is one clipboard utility invocation.
type Tool struct {
	Name string
	Args []string

	// Stdin sends the text on standard input instead of appending it to Args.
	Stdin bool

	// TrimNewline strips one trailing newline the tool appends to output.
	TrimNewline bool
}

// Command builds the runner command for this tool. text is only used by writers.
func (t Tool) Command(text *string, timeout time.Duration) runner.Command {
	c := runner.Command{
		Name:    t.Name,
		Args:    append([]string(nil), t.Args...),
		Timeout: timeout,
	}
	if text != nil {
		if t.Stdin {
			c.Stdin = text
		} else {
			c.Args = append(c.Args, *text)
		}
	}
	return c
}

// ToolChain is an ordered fallback list; the first tool that succeeds wins.
type ToolChain []Tool

// Names returns the tool names in order.
func (c ToolChain) Names() []string {
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name
	}
	return names
}

// Strategies is everything one platform implements. Nil or empty members are
// unsupported on that platform.
type Strategies struct {
	// Name describes the strategy set, e.g. "x11" or "powershell".
	Name string

	WindowProbe    WindowProbe
	ClipboardRead  ToolChain
	ClipboardWrite ToolChain
	AppEnumeration AppEnumerator

	// ProbeTimeout bounds a window probe on this platform.
	ProbeTimeout time.Duration
}
