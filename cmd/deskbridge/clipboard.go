package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()
	var newline bool

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print the clipboard text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			svc := newService(cfg, setupLogging(cfg))
			defer svc.Close()

			text, err := svc.ReadText(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			if newline {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&newline, "newline", "n", false, "append a newline to the output")
	addProbeFlags(cmd)
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	return cmd
}

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy [text]",
		Short: "Replace the clipboard text",
		Long: `Replace the clipboard contents with text.

With no argument the text is read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			svc := newService(cfg, setupLogging(cfg))
			defer svc.Close()

			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "failed to read stdin")
				}
				text = string(data)
			}

			if !svc.WriteText(cmd.Context(), text) {
				return errors.New("no clipboard tool accepted the text")
			}
			return nil
		},
	}

	addProbeFlags(cmd)
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	return cmd
}
