// Package windows implements the Windows strategies through PowerShell.
package windows

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/integrations/common"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

// ProbeTimeout bounds one focused-window probe. PowerShell start-up plus
// Add-Type compilation is slow on a cold host.
const ProbeTimeout = 5 * time.Second

var shellArgs = []string{"-NoProfile", "-NonInteractive", "-Command"}

// probeScript emits one compressed JSON record for the foreground window.
const probeScript = `$ErrorActionPreference = 'Stop'
[Console]::OutputEncoding = (New-Object System.Text.UTF8Encoding $false)
Add-Type @"
using System;
using System.Text;
using System.Runtime.InteropServices;
public struct DeskRect { public int Left; public int Top; public int Right; public int Bottom; }
public static class DeskUser32 {
  [DllImport("user32.dll")] public static extern IntPtr GetForegroundWindow();
  [DllImport("user32.dll", CharSet = CharSet.Unicode)] public static extern int GetWindowText(IntPtr h, StringBuilder s, int n);
  [DllImport("user32.dll")] public static extern uint GetWindowThreadProcessId(IntPtr h, out uint pid);
  [DllImport("user32.dll")] public static extern bool GetWindowRect(IntPtr h, out DeskRect r);
}
"@
$h = [DeskUser32]::GetForegroundWindow()
if ($h -eq [IntPtr]::Zero) { throw 'no foreground window' }
$sb = New-Object System.Text.StringBuilder 1024
[void][DeskUser32]::GetWindowText($h, $sb, $sb.Capacity)
$procId = [uint32]0
[void][DeskUser32]::GetWindowThreadProcessId($h, [ref]$procId)
$name = ''
$path = ''
$p = Get-Process -Id $procId -ErrorAction SilentlyContinue
if ($p) {
  $name = $p.ProcessName
  try { $path = $p.MainModule.FileName } catch { $path = '' }
}
$rec = [ordered]@{
  title = $sb.ToString()
  processName = $name
  processPath = $path
  windowHandle = ('0x{0:x}' -f $h.ToInt64())
}
if ($procId -gt 0) { $rec.processId = [int]$procId }
$r = New-Object DeskRect
if ([DeskUser32]::GetWindowRect($h, [ref]$r) -and $r.Right -ge $r.Left -and $r.Bottom -ge $r.Top) {
  $rec.rect = [ordered]@{ left = $r.Left; top = $r.Top; right = $r.Right; bottom = $r.Bottom }
}
$rec | ConvertTo-Json -Compress`

const readScript = `[Console]::OutputEncoding = (New-Object System.Text.UTF8Encoding $false)
Get-Clipboard -Raw`

const writeScript = `[Console]::InputEncoding = (New-Object System.Text.UTF8Encoding $false)
$t = [Console]::In.ReadToEnd()
Set-Clipboard -Value $t`

const enumScript = `[Console]::OutputEncoding = (New-Object System.Text.UTF8Encoding $false)
$w = @(Get-Process | Where-Object { $_.MainWindowTitle } |
  ForEach-Object { [ordered]@{ title = $_.MainWindowTitle; processName = $_.ProcessName } })
ConvertTo-Json -InputObject $w -Compress`

func shell(name, script string, stdin bool) common.Tool {
	args := append(append([]string(nil), shellArgs...), script)
	return common.Tool{Name: name, Args: args, Stdin: stdin}
}

// reader marks that the host appends a line terminator after the value.
func reader(name string) common.Tool {
	t := shell(name, readScript, false)
	t.TrimNewline = true
	return t
}

// ClipboardRead tries Windows PowerShell, then PowerShell 7.
var ClipboardRead = common.ToolChain{
	reader("powershell"),
	reader("pwsh"),
}

// ClipboardWrite pipes the text through PowerShell, with clip.exe last.
var ClipboardWrite = common.ToolChain{
	shell("powershell", writeScript, true),
	shell("pwsh", writeScript, true),
	{Name: "clip", Stdin: true},
}

// Strategies returns the Windows strategy set.
func Strategies() common.Strategies {
	return common.Strategies{
		Name:           "powershell",
		WindowProbe:    ProbeActiveWindow,
		ClipboardRead:  ClipboardRead,
		ClipboardWrite: ClipboardWrite,
		AppEnumeration: EnumerateWindows,
		ProbeTimeout:   ProbeTimeout,
	}
}

// powershell runs script with powershell, falling back to pwsh when the
// former cannot be launched.
func powershell(ctx context.Context, r runner.Runner, script string, timeout time.Duration) (string, error) {
	var err error
	for _, name := range []string{"powershell", "pwsh"} {
		var out string
		out, err = runner.Text(ctx, r, shell(name, script, false).Command(nil, timeout))
		if err == nil || !errs.IsLaunch(err) {
			return strings.TrimPrefix(out, "\uFEFF"), err
		}
	}
	return "", err
}

// ProbeActiveWindow runs the user32 probe script.
func ProbeActiveWindow(ctx context.Context, r runner.Runner, timeout time.Duration) ([]byte, error) {
	out, err := powershell(ctx, r, probeScript, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to probe foreground window")
	}
	return []byte(out), nil
}

// EnumerateWindows lists processes that own a titled main window.
func EnumerateWindows(ctx context.Context, r runner.Runner, timeout time.Duration) ([]window.Summary, error) {
	out, err := powershell(ctx, r, enumScript, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate windows")
	}
	return parseSummaries([]byte(out))
}

// parseSummaries accepts an array, or a bare object as older ConvertTo-Json
// versions emit for single-element input.
func parseSummaries(data []byte) ([]window.Summary, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var list []window.Summary
	if data[0] == '{' {
		var one window.Summary
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, errs.New("enumerate", errs.CodeParse, err)
		}
		list = []window.Summary{one}
	} else if err := json.Unmarshal(data, &list); err != nil {
		return nil, errs.New("enumerate", errs.CodeParse, err)
	}

	for i := range list {
		list[i].Title = strings.TrimSpace(list[i].Title)
		if list[i].ProcessName == "" {
			list[i].ProcessName = window.Unknown
		}
	}
	return list, nil
}
