package main

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/snipnote/deskbridge/internal/reporter"
)

func newHistoryCmd() *cobra.Command {
	v := viper.New()
	var (
		limit     int
		asJSON    bool
		apps      string
		since     time.Duration
		showErrs  bool
		show      uint
		clearClip bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled clipboard changes",
		Long: `Show the most recent journaled clips, newest first.

With --since, show every clip from that far back instead of the last --limit.
With --apps day|week|month, count clips per source application over the
current period. --errors lists failures the watcher could not journal.
--show prints the full text of one clip, ready to pipe into "deskbridge copy".
--clear deletes every journaled clip.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			n := 0
			for _, set := range []bool{apps != "", showErrs, cmd.Flags().Changed("show"), clearClip, since > 0} {
				if set {
					n++
				}
			}
			if n > 1 {
				return errors.New("--since, --apps, --errors, --show and --clear are mutually exclusive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			setupLogging(cfg)

			db, repo, err := openJournal(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			switch {
			case clearClip:
				if err := repo.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Journal cleared")
				return nil
			case cmd.Flags().Changed("show"):
				clip, err := repo.GetByID(show)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errors.Errorf("no clip with id %d", show)
				}
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(out, reporter.New(repo), clip)
				}
				fmt.Fprint(out, clip.Text)
				return nil
			}

			rep := reporter.New(repo)
			var (
				report any
				text   string
			)
			switch {
			case apps != "":
				r, err := rep.AppReport(apps)
				if err != nil {
					return err
				}
				report, text = r, rep.FormatAppReportText(r)
			case showErrs:
				logs, err := rep.Errors(limit)
				if err != nil {
					return err
				}
				report, text = logs, rep.FormatErrorsText(logs)
			case since > 0:
				h, err := rep.HistorySince(time.Now().Add(-since))
				if err != nil {
					return err
				}
				report, text = h, rep.FormatHistoryText(h)
			default:
				h, err := rep.History(limit)
				if err != nil {
					return err
				}
				report, text = h, rep.FormatHistoryText(h)
			}

			if asJSON {
				return printJSON(out, rep, report)
			}
			fmt.Fprint(out, text)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&limit, "limit", "l", 20, "number of clips or errors to show")
	f.BoolVar(&asJSON, "json", false, "print as JSON")
	f.StringVar(&apps, "apps", "", "per-application report for day|week|month")
	f.DurationVar(&since, "since", 0, "show every clip captured within this duration")
	f.BoolVar(&showErrs, "errors", false, "show journaled recorder failures")
	f.UintVar(&show, "show", 0, "print the full text of the clip with this id")
	f.BoolVar(&clearClip, "clear", false, "delete every journaled clip")
	f.String("journal", "", "journal database path (default ~/.config/deskbridge/journal.db)")
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	return cmd
}

func printJSON(w io.Writer, rep *reporter.Reporter, v any) error {
	out, err := rep.FormatJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
