package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snipnote/deskbridge/internal/daemon"
)

func newStopCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			_, pid, _ := dm.IsRunning()
			if err := dm.Stop(); err != nil {
				if errors.Is(err, daemon.ErrNotRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "Watcher is not running")
					return nil
				}
				return errors.Wrap(err, "failed to stop watcher")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watcher stopped (PID: %d)\n", pid)
			return nil
		},
	}

	cmd.Flags().String("pid-file", "", "watcher PID file")
	addConfigFlag(cmd)
	return cmd
}
