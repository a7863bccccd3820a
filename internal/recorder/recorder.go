// Package recorder journals clipboard changes together with the window that
// had focus when they happened.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/snipnote/deskbridge/internal/journal"
	"github.com/snipnote/deskbridge/internal/monitor"
	"github.com/snipnote/deskbridge/pkg/window"
)

// Store is the part of journal.Repository the recorder writes to.
type Store interface {
	Create(clip *journal.Clip) error
	CreateErrorLog(errorLog *journal.ErrorLog) error
}

type Recorder struct {
	store  Store
	prober window.Prober
	now    func() time.Time
	log    *slog.Logger
}

// New creates a Recorder. A nil logger uses slog.Default.
func New(store Store, prober window.Prober, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{store: store, prober: prober, now: time.Now, log: log}
}

// Listener adapts Record for monitor.AddListener. ctx bounds the window probe.
func (r *Recorder) Listener(ctx context.Context) monitor.Listener {
	return func(text string) error {
		return r.Record(ctx, text)
	}
}

// Record stores text with the current focused window. A cleared clipboard is
// not recorded.
func (r *Recorder) Record(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	source := r.prober.GetActiveWindow(ctx)
	clip := journal.NewClip(text, source, r.now().UTC())

	if err := r.store.Create(clip); err != nil {
		err = errors.Wrap(err, "failed to record clip")
		r.storeError(err)
		return err
	}

	r.log.Info("clip recorded", "id", clip.ID, "app", clip.AppName, "length", clip.Length)
	return nil
}

func (r *Recorder) storeError(err error) {
	errorLog := &journal.ErrorLog{
		Timestamp: r.now().UTC(),
		Source:    "recorder",
		ErrorMsg:  err.Error(),
	}

	if dbErr := r.store.CreateErrorLog(errorLog); dbErr != nil {
		r.log.Error("failed to store error in journal", "error", dbErr, "original", err)
	}
}
