// Package wayland implements the Linux Wayland strategies. The focused window
// comes from the compositor's IPC client (swaymsg, falling back to hyprctl);
// the clipboard goes through wl-clipboard with XWayland tools behind it.
package wayland

import (
	"context"
	"encoding/json"
	"strconv"
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
	{Name: "wl-paste", Args: []string{"--no-newline"}},
	{Name: "xclip", Args: []string{"-selection", "clipboard", "-o"}},
	{Name: "xsel", Args: []string{"--clipboard", "--output"}},
}

// ClipboardWrite sends the text on stdin.
var ClipboardWrite = common.ToolChain{
	{Name: "wl-copy", Stdin: true},
	{Name: "xclip", Args: []string{"-selection", "clipboard"}, Stdin: true},
	{Name: "xsel", Args: []string{"--clipboard", "--input"}, Stdin: true},
}

// Strategies returns the Wayland strategy set.
func Strategies() common.Strategies {
	return common.Strategies{
		Name:           "wayland",
		WindowProbe:    ProbeActiveWindow,
		ClipboardRead:  ClipboardRead,
		ClipboardWrite: ClipboardWrite,
		AppEnumeration: EnumerateWindows,
		ProbeTimeout:   ProbeTimeout,
	}
}

// ProbeActiveWindow asks sway for its tree and falls back to Hyprland when
// swaymsg is not installed.
func ProbeActiveWindow(ctx context.Context, r runner.Runner, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := runner.Text(ctx, r, runner.Command{Name: "swaymsg", Args: []string{"-t", "get_tree"}, Timeout: timeout})
	if err == nil {
		node, err := focusedSwayNode([]byte(out))
		if err != nil {
			return nil, err
		}
		return resolve(ctx, r, timeout, node.record(), node.fallbackName())
	}
	if !errs.IsLaunch(err) {
		return nil, errors.Wrap(err, "failed to query sway tree")
	}

	out, err = runner.Text(ctx, r, runner.Command{Name: "hyprctl", Args: []string{"activewindow", "-j"}, Timeout: timeout})
	if err != nil {
		return nil, errors.Wrap(err, "failed to query hyprland active window")
	}
	hw, err := parseHyprlandWindow([]byte(out))
	if err != nil {
		return nil, err
	}
	return resolve(ctx, r, timeout, hw.record(), hw.Class)
}

// EnumerateWindows lists every view in the sway tree, or every Hyprland
// client when swaymsg is not installed. Process names come from one ps call.
func EnumerateWindows(ctx context.Context, r runner.Runner, timeout time.Duration) ([]window.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var views []view
	out, err := runner.Text(ctx, r, runner.Command{Name: "swaymsg", Args: []string{"-t", "get_tree"}, Timeout: timeout})
	switch {
	case err == nil:
		views, err = swayViews([]byte(out))
	case errs.IsLaunch(err):
		out, err = runner.Text(ctx, r, runner.Command{Name: "hyprctl", Args: []string{"clients", "-j"}, Timeout: timeout})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list hyprland clients")
		}
		views, err = hyprlandViews([]byte(out))
	default:
		return nil, errors.Wrap(err, "failed to query sway tree")
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var pids []int
	for _, v := range views {
		if v.pid > 0 && !seen[v.pid] {
			seen[v.pid] = true
			pids = append(pids, v.pid)
		}
	}
	names, err := common.ProcessNames(ctx, r, pids, timeout)
	if err != nil {
		names = map[int]string{}
	}

	summaries := make([]window.Summary, 0, len(views))
	for _, v := range views {
		name := names[v.pid]
		if name == "" {
			name = v.appID
		}
		if name == "" {
			name = window.Unknown
		}
		title := v.title
		if title == "" {
			title = window.Unknown
		}
		summaries = append(summaries, window.Summary{Title: title, ProcessName: name})
	}
	return summaries, nil
}

// view is one compositor window as seen by enumeration.
type view struct {
	title string
	pid   int
	appID string
}

func swayViews(data []byte) ([]view, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errs.New("swaymsg", errs.CodeParse, err)
	}

	var views []view
	var walk func(n *swayNode)
	walk = func(n *swayNode) {
		if n.isView() && len(n.Nodes) == 0 && len(n.FloatingNodes) == 0 {
			title := ""
			if n.Name != nil {
				title = *n.Name
			}
			views = append(views, view{title: title, pid: n.PID, appID: n.fallbackName()})
			return
		}
		for i := range n.Nodes {
			walk(&n.Nodes[i])
		}
		for i := range n.FloatingNodes {
			walk(&n.FloatingNodes[i])
		}
	}
	walk(&root)
	return views, nil
}

func hyprlandViews(data []byte) ([]view, error) {
	var clients []hyprlandWindow
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, errs.New("hyprctl", errs.CodeParse, err)
	}
	views := make([]view, 0, len(clients))
	for _, c := range clients {
		views = append(views, view{title: c.Title, pid: c.PID, appID: c.Class})
	}
	return views, nil
}

// resolve fills in process name and path from the pid, using the
// compositor-provided app id when ps cannot see the process.
func resolve(ctx context.Context, r runner.Runner, timeout time.Duration, rec window.Record, appID string) ([]byte, error) {
	var name, path string
	if rec.ProcessID != nil {
		name, _ = common.ProcessName(ctx, r, *rec.ProcessID, timeout)
		path, _ = common.ProcessPath(ctx, r, *rec.ProcessID, timeout)
	}
	if name == "" {
		name = appID
	}
	rec.ProcessName = window.String(name)
	rec.ProcessPath = window.String(path)
	return rec.Encode()
}

type swayRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type swayWindowProperties struct {
	Class string `json:"class"`
}

type swayNode struct {
	ID               int64                 `json:"id"`
	Name             *string               `json:"name"`
	Type             string                `json:"type"`
	Focused          bool                  `json:"focused"`
	PID              int                   `json:"pid"`
	AppID            *string               `json:"app_id"`
	Rect             swayRect              `json:"rect"`
	WindowProperties *swayWindowProperties `json:"window_properties"`
	Nodes            []swayNode            `json:"nodes"`
	FloatingNodes    []swayNode            `json:"floating_nodes"`
}

func (n *swayNode) isView() bool {
	return n.Type == "con" || n.Type == "floating_con"
}

func (n *swayNode) fallbackName() string {
	if n.AppID != nil && *n.AppID != "" {
		return *n.AppID
	}
	if n.WindowProperties != nil {
		return n.WindowProperties.Class
	}
	return ""
}

func (n *swayNode) record() window.Record {
	title := ""
	if n.Name != nil {
		title = *n.Name
	}
	rec := window.Record{
		Title:        window.String(title),
		WindowHandle: window.String(formatID(n.ID)),
	}
	if n.PID > 0 {
		pid := n.PID
		rec.ProcessID = &pid
	}
	if n.Rect.Width >= 0 && n.Rect.Height >= 0 {
		rec.Rect = &window.RecordRect{
			Left:   n.Rect.X,
			Top:    n.Rect.Y,
			Right:  n.Rect.X + n.Rect.Width,
			Bottom: n.Rect.Y + n.Rect.Height,
		}
	}
	return rec
}

// focusedSwayNode walks the tree depth first for the focused view.
func focusedSwayNode(data []byte) (*swayNode, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errs.New("swaymsg", errs.CodeParse, err)
	}

	stack := []*swayNode{&root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Focused && n.isView() {
			return n, nil
		}
		for i := range n.FloatingNodes {
			stack = append(stack, &n.FloatingNodes[i])
		}
		for i := range n.Nodes {
			stack = append(stack, &n.Nodes[i])
		}
	}
	return nil, errs.Newf("swaymsg", errs.CodeParse, "no focused view in tree")
}

type hyprlandWindow struct {
	Address string `json:"address"`
	At      []int  `json:"at"`
	Size    []int  `json:"size"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
}

func (w *hyprlandWindow) record() window.Record {
	rec := window.Record{
		Title:        window.String(w.Title),
		WindowHandle: window.String(w.Address),
	}
	if w.PID > 0 {
		pid := w.PID
		rec.ProcessID = &pid
	}
	if len(w.At) == 2 && len(w.Size) == 2 && w.Size[0] >= 0 && w.Size[1] >= 0 {
		rec.Rect = &window.RecordRect{
			Left:   w.At[0],
			Top:    w.At[1],
			Right:  w.At[0] + w.Size[0],
			Bottom: w.At[1] + w.Size[1],
		}
	}
	return rec
}

func parseHyprlandWindow(data []byte) (*hyprlandWindow, error) {
	var w hyprlandWindow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errs.New("hyprctl", errs.CodeParse, err)
	}
	if w.Address == "" {
		return nil, errs.Newf("hyprctl", errs.CodeParse, "no active window")
	}
	return &w, nil
}

func formatID(id int64) string {
	return "con_" + strconv.FormatInt(id, 10)
}
