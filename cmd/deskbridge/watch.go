package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snipnote/deskbridge/internal/config"
	"github.com/snipnote/deskbridge/internal/daemon"
	"github.com/snipnote/deskbridge/internal/journal"
	"github.com/snipnote/deskbridge/internal/recorder"
	"github.com/snipnote/deskbridge/internal/reporter"
	"github.com/snipnote/deskbridge/internal/web"
	"github.com/snipnote/deskbridge/pkg/utils"
)

// detachedEnv marks the re-executed background watcher.
const detachedEnv = "DESKBRIDGE_DETACHED"

func newWatchCmd() *cobra.Command {
	v := viper.New()
	var noJournal, detach, quiet bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow clipboard changes and journal them",
		Long: `Poll the clipboard and, on every change, record the new text together with
the window that was focused at the time.

Only one watcher runs at a time; its PID is kept in the configured PID file
so that "deskbridge stop" and "deskbridge status" can find it.

With --listen the watcher also serves a read-only JSON API (focused window,
clipboard text, running apps, status, journal history and errors) on host:port.

With --detach the watcher re-executes itself in a new session and logs to
deskbridge.log next to the PID file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			dm := daemon.New(cfg.Daemon.PIDFile)

			if detach && os.Getenv(detachedEnv) != "1" {
				return spawnDetached(cmd, dm)
			}

			log := setupLogging(cfg)
			return runWatcher(cmd, cfg, dm, log, !noJournal, !quiet && os.Getenv(detachedEnv) != "1")
		},
	}

	f := cmd.Flags()
	f.Duration("interval", config.Default().Monitor.Interval, "clipboard poll interval")
	f.String("journal", "", "journal database path (default ~/.config/deskbridge/journal.db)")
	f.Duration("retention", config.Default().Journal.Retention, "prune journal entries older than this at startup (0 keeps all)")
	f.String("pid-file", config.Default().Daemon.PIDFile, "watcher PID file")
	f.String("listen", "", "serve the read-only JSON API on host:port")
	f.BoolVar(&noJournal, "no-journal", false, "do not record changes to the journal")
	f.BoolVar(&detach, "detach", false, "run in the background")
	f.BoolVarP(&quiet, "quiet", "q", false, "do not print changes to stdout")
	addProbeFlags(cmd)
	addConfigFlag(cmd)
	addLoggingFlags(cmd)
	return cmd
}

func runWatcher(cmd *cobra.Command, cfg *config.Config, dm *daemon.Daemon, log *slog.Logger, record, echo bool) error {
	if err := dm.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := dm.RemovePID(); err != nil {
			log.Warn("failed to remove PID file", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := newService(cfg, log)
	defer svc.Close()

	var reports web.Reports
	if record {
		db, repo, err := openJournal(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		prune(repo, cfg.Journal.Retention, log)

		rec := recorder.New(repo, svc, log)
		svc.AddClipboardListener(rec.Listener(ctx))
		reports = reporter.New(repo)
	}

	if cfg.Web.Listen != "" {
		srv := web.NewServer(cfg.Web.Listen, svc, reports, log)
		if err := srv.Listen(); err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(); err != nil {
				log.Error("query API failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("query API shutdown failed", "error", err)
			}
		}()
	}

	if echo {
		out := cmd.OutOrStdout()
		svc.AddClipboardListener(func(text string) error {
			_, err := fmt.Fprintf(out, "%s  %s\n", time.Now().Format("15:04:05"), utils.Preview(text, 72))
			return err
		})
	}

	log.Info("watcher started", "pid", os.Getpid(), "platform", svc.Platform(), "journal", record)
	log.Debug("configuration", "config", cfg.String())

	svc.StartMonitor(ctx, cfg.Monitor.Interval)
	<-ctx.Done()
	svc.StopMonitor()

	log.Info("watcher stopped")
	return nil
}

func prune(repo *journal.Repository, retention time.Duration, log *slog.Logger) {
	if retention <= 0 {
		return
	}
	n, err := repo.DeleteOlderThan(time.Now().Add(-retention))
	if err != nil {
		log.Warn("journal prune failed", "error", err)
		return
	}
	if n > 0 {
		log.Info("journal pruned", "removed", n, "retention", retention)
	}
}

// spawnDetached re-executes the current command line in a new session with
// its output appended to a log file beside the PID file.
func spawnDetached(cmd *cobra.Command, dm *daemon.Daemon) error {
	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check watcher status")
	}
	if running {
		return errors.Wrapf(daemon.ErrAlreadyRunning, "pid %d", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to locate executable")
	}

	logPath := filepath.Join(filepath.Dir(dm.Path()), "deskbridge.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create log directory")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}
	defer logFile.Close()

	child := exec.Command(exe, os.Args[1:]...)
	child.Env = append(os.Environ(), detachedEnv+"=1")
	child.Stdout = logFile
	child.Stderr = logFile
	detachAttrs(child)

	if err := child.Start(); err != nil {
		return errors.Wrap(err, "failed to start watcher")
	}
	pid = child.Process.Pid
	_ = child.Process.Release()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watcher started (PID: %d)\n", pid)
	fmt.Fprintf(out, "Logs: %s\n", logPath)
	return nil
}
