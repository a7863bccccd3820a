package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunningCmd() *cobra.Command {
	v := viper.New()
	var list, quiet bool

	cmd := &cobra.Command{
		Use:   "running <name>",
		Short: "Check whether an application has a window open",
		Long: `Exit with status 0 when some titled window belongs to a process whose name
contains name (case-insensitive), and 1 otherwise.

With --list, print every visible window instead.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			svc := newService(cfg, setupLogging(cfg))
			defer svc.Close()

			out := cmd.OutOrStdout()
			if list {
				wins, err := svc.Windows(cmd.Context())
				if err != nil {
					return errors.Wrap(err, "failed to enumerate windows")
				}
				for _, w := range wins {
					fmt.Fprintf(out, "%-24s %s\n", w.ProcessName, w.Title)
				}
				return nil
			}

			if svc.IsAppRunning(cmd.Context(), args[0]) {
				if !quiet {
					fmt.Fprintf(out, "%s is running\n", args[0])
				}
				return nil
			}
			if !quiet {
				fmt.Fprintf(out, "%s is not running\n", args[0])
			}
			return errQuiet
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list visible windows")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "report only through the exit status")
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	return cmd
}
