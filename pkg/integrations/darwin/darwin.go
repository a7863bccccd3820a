// Package darwin implements the macOS strategies with osascript (JXA),
// pbpaste and pbcopy.
package darwin

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/integrations/common"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// ProbeTimeout bounds one focused-window probe.
const ProbeTimeout = 3 * time.Second

// probeScript asks System Events for the frontmost process. Reading window
// attributes needs the Accessibility permission; without it title and bounds
// stay empty while the process fields still resolve.
const probeScript = `
var se = Application("System Events");
var p = se.applicationProcesses.whose({frontmost: true})[0];
var rec = {title: "", processName: "", processPath: ""};
try { rec.processName = p.name(); } catch (e) {}
try { rec.processId = p.unixId(); } catch (e) {}
try { rec.processPath = p.applicationFile().posixPath(); } catch (e) {}
try {
  var w = p.windows[0];
  rec.title = w.name() || "";
  var pos = w.position(), size = w.size();
  rec.rect = {left: pos[0], top: pos[1], right: pos[0] + size[0], bottom: pos[1] + size[1]};
} catch (e) {}
JSON.stringify(rec);
`

// enumScript lists titled windows of foreground processes.
const enumScript = `
var se = Application("System Events");
var out = [];
se.applicationProcesses.whose({backgroundOnly: false})().forEach(function (p) {
  try {
    p.windows().forEach(function (w) {
      var t = w.name();
      if (t) { out.push({title: t, processName: p.name()}); }
    });
  } catch (e) {}
});
JSON.stringify(out);
`

// ClipboardRead holds the single pbpaste reader.
var ClipboardRead = common.ToolChain{
	{Name: "pbpaste"},
}

// ClipboardWrite feeds pbcopy on stdin.
var ClipboardWrite = common.ToolChain{
	{Name: "pbcopy", Stdin: true},
}

// Strategies returns the macOS strategy set.
func Strategies() common.Strategies {
	return common.Strategies{
		Name:           "osascript",
		WindowProbe:    ProbeActiveWindow,
		ClipboardRead:  ClipboardRead,
		ClipboardWrite: ClipboardWrite,
		AppEnumeration: EnumerateWindows,
		ProbeTimeout:   ProbeTimeout,
	}
}

func jxa(script string, timeout time.Duration) runner.Command {
	return runner.Command{
		Name:    "osascript",
		Args:    []string{"-l", "JavaScript", "-e", script},
		Timeout: timeout,
	}
}

// ProbeActiveWindow runs the System Events probe script.
func ProbeActiveWindow(ctx context.Context, r runner.Runner, timeout time.Duration) ([]byte, error) {
	out, err := runner.Text(ctx, r, jxa(probeScript, timeout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to probe frontmost window")
	}
	return []byte(out), nil
}

// EnumerateWindows lists the titled windows of every foreground process.
func EnumerateWindows(ctx context.Context, r runner.Runner, timeout time.Duration) ([]window.Summary, error) {
	out, err := runner.Text(ctx, r, jxa(enumScript, timeout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate windows")
	}

	var list []window.Summary
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return nil, errs.New("enumerate", errs.CodeParse, err)
	}
	for i := range list {
		if list[i].ProcessName == "" {
			list[i].ProcessName = window.Unknown
		}
	}
	return list, nil
}
