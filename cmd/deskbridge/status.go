package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snipnote/deskbridge/internal/daemon"
	"github.com/snipnote/deskbridge/internal/desktop"
	"github.com/snipnote/deskbridge/pkg/runner"
	"github.com/snipnote/deskbridge/pkg/window"
)

type statusReport struct {
	desktop.Status
	Watcher   int               `json:"watcherPid,omitempty"`
	PIDFile   string            `json:"pidFile"`
	Focused   window.WindowInfo `json:"focused"`
	Clipboard bool              `json:"clipboardReadable"`
	Missing   []string          `json:"missingTools,omitempty"`
}

func newStatusCmd() *cobra.Command {
	v := viper.New()
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the platform strategy, watcher state and focused window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			log := setupLogging(cfg)

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return err
			}

			svc := newService(cfg, log)
			defer svc.Close()

			ctx := cmd.Context()
			report := statusReport{
				PIDFile: dm.Path(),
				Focused: svc.GetActiveWindow(ctx),
			}
			if running {
				report.Watcher = pid
			}
			_, readErr := svc.ReadText(ctx)
			report.Clipboard = readErr == nil
			report.Status = svc.Status()
			report.Missing = missingTools(report.ReadTools, report.WriteTools)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().String("pid-file", "", "watcher PID file")
	addProbeFlags(cmd)
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	return cmd
}

func printStatus(w io.Writer, r statusReport) {
	if r.Watcher > 0 {
		fmt.Fprintf(w, "Watcher:   running (PID: %d)\n", r.Watcher)
	} else {
		fmt.Fprintln(w, "Watcher:   not running")
	}
	fmt.Fprintf(w, "Platform:  %s", r.Platform)
	if r.DisplayServer != "" {
		fmt.Fprintf(w, " (%s)", r.DisplayServer)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Strategy:  %s\n", r.Strategy)
	fmt.Fprintf(w, "Supports:  %s\n", joinOrNone(r.Supported))
	fmt.Fprintf(w, "Read:      %s\n", joinOrNone(r.ReadTools))
	fmt.Fprintf(w, "Write:     %s\n", joinOrNone(r.WriteTools))
	if len(r.Missing) > 0 {
		fmt.Fprintf(w, "Missing:   %s\n", strings.Join(r.Missing, ", "))
	}
	if r.Clipboard {
		fmt.Fprintln(w, "Clipboard: readable")
	} else {
		fmt.Fprintln(w, "Clipboard: unavailable")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Focused window:")
	printWindow(w, r.Focused)
}

// missingTools lists the clipboard tools not found on PATH, each once.
func missingTools(chains ...[]string) []string {
	seen := make(map[string]bool)
	var missing []string
	for _, chain := range chains {
		for _, name := range chain {
			if seen[name] {
				continue
			}
			seen[name] = true
			if !runner.Lookup(name) {
				missing = append(missing, name)
			}
		}
	}
	return missing
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ", ")
}
