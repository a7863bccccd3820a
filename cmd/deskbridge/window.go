package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snipnote/deskbridge/pkg/window"
)

func newWindowCmd() *cobra.Command {
	v := viper.New()
	var asJSON, fresh bool

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the focused window",
		Long: `Probe the focused window and print its title, owning process and geometry.

When no window can be identified the output carries the title "Unknown"
rather than failing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			svc := newService(cfg, setupLogging(cfg))
			defer svc.Close()

			ctx := cmd.Context()
			var info window.WindowInfo
			if fresh {
				info = svc.GetActiveWindowFresh(ctx)
			} else {
				info = svc.GetActiveWindow(ctx)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			printWindow(cmd.OutOrStdout(), info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "bypass the probe cache")
	addProbeFlags(cmd)
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	return cmd
}

func printWindow(w io.Writer, info window.WindowInfo) {
	fmt.Fprintf(w, "Title:    %s\n", info.Title)
	fmt.Fprintf(w, "Process:  %s\n", info.ProcessName)
	if info.ProcessPath != "" {
		fmt.Fprintf(w, "Path:     %s\n", info.ProcessPath)
	}
	if info.ProcessID != nil {
		fmt.Fprintf(w, "PID:      %d\n", *info.ProcessID)
	}
	if info.WindowHandle != "" {
		fmt.Fprintf(w, "Handle:   %s\n", info.WindowHandle)
	}
	if r := info.WindowRect; r != nil {
		fmt.Fprintf(w, "Geometry: %dx%d+%d+%d\n", r.Width, r.Height, r.Left, r.Top)
	}
	fmt.Fprintf(w, "Platform: %s\n", info.Platform)
}
