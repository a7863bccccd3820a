// Package x11 implements the Linux X11 strategies on top of xdotool, xprop,
// wmctrl, xclip and xsel.
package x11

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/integrations/common"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// ProbeTimeout bounds one focused-window probe.
const ProbeTimeout = 3 * time.Second

// ClipboardRead is tried in order until one tool succeeds.
var ClipboardRead = common.ToolChain{
	{Name: "xclip", Args: []string{"-selection", "clipboard", "-o"}},
	{Name: "xsel", Args: []string{"--clipboard", "--output"}},
	{Name: "wl-paste", Args: []string{"--no-newline"}},
}

// ClipboardWrite sends the text on stdin.
var ClipboardWrite = common.ToolChain{
	{Name: "xclip", Args: []string{"-selection", "clipboard"}, Stdin: true},
	{Name: "xsel", Args: []string{"--clipboard", "--input"}, Stdin: true},
	{Name: "wl-copy", Stdin: true},
}

// Strategies returns the X11 strategy set.
func Strategies() common.Strategies {
	return common.Strategies{
		Name:           "x11",
		WindowProbe:    ProbeActiveWindow,
		ClipboardRead:  ClipboardRead,
		ClipboardWrite: ClipboardWrite,
		AppEnumeration: EnumerateWindows,
		ProbeTimeout:   ProbeTimeout,
	}
}

// ProbeActiveWindow resolves the focused window with xdotool and returns it as
// one encoded window.Record. Only the window id lookup is mandatory; every other
// attribute degrades to empty.
func ProbeActiveWindow(ctx context.Context, r runner.Runner, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	xdotool := func(args ...string) (string, error) {
		return runner.Text(ctx, r, runner.Command{Name: "xdotool", Args: args, Timeout: timeout})
	}

	id, err := xdotool("getactivewindow")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get active x11 window")
	}
	wid, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, errs.New("xdotool", errs.CodeParse, errors.Wrapf(err, "window id %q", id))
	}

	title, _ := xdotool("getwindowname", id)
	rec := window.Record{
		Title:        window.String(title),
		WindowHandle: window.String(fmt.Sprintf("0x%x", wid)),
	}

	var name, path string
	if out, err := xdotool("getwindowpid", id); err == nil {
		if pid, err := strconv.Atoi(out); err == nil && pid > 0 {
			rec.ProcessID = &pid
			name, _ = common.ProcessName(ctx, r, pid, timeout)
			path, _ = common.ProcessPath(ctx, r, pid, timeout)
		}
	}
	if name == "" {
		// Sandboxed clients often hide their pid; the class is still set.
		out, err := runner.Text(ctx, r, runner.Command{Name: "xprop", Args: []string{"-id", id, "WM_CLASS"}, Timeout: timeout})
		if err == nil {
			name = parseWMClass(out)
		}
	}
	rec.ProcessName = window.String(name)
	rec.ProcessPath = window.String(path)

	if out, err := xdotool("getwindowgeometry", "--shell", id); err == nil {
		if g, ok := parseGeometry(out); ok {
			rec.Rect = g
		}
	}

	return rec.Encode()
}

// EnumerateWindows lists managed windows with wmctrl and resolves their owners
// with one ps call.
func EnumerateWindows(ctx context.Context, r runner.Runner, timeout time.Duration) ([]window.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runner.Text(ctx, r, runner.Command{Name: "wmctrl", Args: []string{"-l", "-p"}, Timeout: timeout})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list x11 windows")
	}

	entries := parseWmctrl(out)
	seen := make(map[int]bool)
	var pids []int
	for _, e := range entries {
		if e.pid > 0 && !seen[e.pid] {
			seen[e.pid] = true
			pids = append(pids, e.pid)
		}
	}

	names, err := common.ProcessNames(ctx, r, pids, timeout)
	if err != nil {
		names = map[int]string{}
	}

	summaries := make([]window.Summary, 0, len(entries))
	for _, e := range entries {
		name := names[e.pid]
		if name == "" {
			name = window.Unknown
		}
		title := e.title
		if title == "" {
			title = window.Unknown
		}
		summaries = append(summaries, window.Summary{Title: title, ProcessName: name})
	}
	return summaries, nil
}

type wmctrlEntry struct {
	id    string
	pid   int
	title string
}

// parseWmctrl parses `wmctrl -l -p` lines: id, desktop, pid, host, title.
func parseWmctrl(out string) []wmctrlEntry {
	var entries []wmctrlEntry
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		pid, _ := strconv.Atoi(fields[2])
		entries = append(entries, wmctrlEntry{
			id:    fields[0],
			pid:   pid,
			title: strings.Join(fields[4:], " "),
		})
	}
	return entries
}

// parseGeometry reads the KEY=VALUE output of getwindowgeometry --shell.
func parseGeometry(out string) (*window.RecordRect, bool) {
	vals := make(map[string]int)
	for _, line := range strings.Split(out, "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		vals[k] = n
	}
	for _, k := range []string{"X", "Y", "WIDTH", "HEIGHT"} {
		if _, ok := vals[k]; !ok {
			return nil, false
		}
	}
	if vals["WIDTH"] < 0 || vals["HEIGHT"] < 0 {
		return nil, false
	}
	return &window.RecordRect{
		Left:   vals["X"],
		Top:    vals["Y"],
		Right:  vals["X"] + vals["WIDTH"],
		Bottom: vals["Y"] + vals["HEIGHT"],
	}, true
}

// parseWMClass extracts the class name from WM_CLASS property
func parseWMClass(output string) string {
	parts := strings.SplitN(output, "=", 2)
	if len(parts) < 2 {
		return ""
	}

	classes := strings.Split(strings.TrimSpace(parts[1]), ",")
	return strings.Trim(strings.TrimSpace(classes[len(classes)-1]), "\" ")
}
