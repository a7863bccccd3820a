// deskbridge: focused window, clipboard and running-app queries for scripts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var (
	Version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errQuiet ends the process with status 1 without printing anything.
var errQuiet = errors.New("quiet failure")

func main() {
	root := &cobra.Command{
		Use:   "deskbridge",
		Short: "Desktop window and clipboard integration",
		Long: `deskbridge reports the focused window, reads and writes the clipboard as text,
checks whether an application has a window open, and can journal every
clipboard change together with the window it came from.

Everything is done through the host's own tools (PowerShell on Windows,
osascript and pbcopy/pbpaste on macOS, xdotool, xclip, wl-clipboard or
swaymsg on Linux), each under a deadline.

Config file search order (first found wins):
  /etc/deskbridge/deskbridge.toml
  $HOME/.config/deskbridge/deskbridge.toml
  path supplied via --config

Precedence (lowest to highest): defaults, config file, DESKBRIDGE_* env vars, flags`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newWindowCmd(),
		newPasteCmd(),
		newCopyCmd(),
		newRunningCmd(),
		newWatchCmd(),
		newHistoryCmd(),
		newStatusCmd(),
		newStopCmd(),
		newVersionCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errQuiet) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "deskbridge version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
