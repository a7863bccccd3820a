package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/snipnote/deskbridge/internal/desktop"
	"github.com/snipnote/deskbridge/internal/journal"
	"github.com/snipnote/deskbridge/internal/reporter"
	"github.com/snipnote/deskbridge/pkg/errs"
	"github.com/snipnote/deskbridge/pkg/window"
)

// Desktop is the part of desktop.Service the API exposes.
type Desktop interface {
	GetActiveWindow(ctx context.Context) window.WindowInfo
	ReadText(ctx context.Context) (string, error)
	IsAppRunning(ctx context.Context, name string) bool
	Windows(ctx context.Context) ([]window.Summary, error)
	Status() desktop.Status
}

// Reports serves journal queries. A nil Reports disables the history routes.
type Reports interface {
	History(limit int) (*reporter.History, error)
	HistorySince(since time.Time) (*reporter.History, error)
	AppReport(periodType string) (*reporter.AppReport, error)
	Errors(limit int) ([]*journal.ErrorLog, error)
}

type Handler struct {
	desk    Desktop
	reports Reports
	log     *slog.Logger
	now     func() time.Time
}

func NewHandler(desk Desktop, reports Reports, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{desk: desk, reports: reports, log: log, now: time.Now}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/window", h.handleWindow)
	mux.HandleFunc("/api/clipboard", h.handleClipboard)
	mux.HandleFunc("/api/windows", h.handleWindows)
	mux.HandleFunc("/api/running", h.handleRunning)
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/history", h.handleHistory)
	mux.HandleFunc("/api/apps", h.handleApps)
	mux.HandleFunc("/api/errors", h.handleErrors)

	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleWindow(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	h.respondJSON(w, h.desk.GetActiveWindow(r.Context()))
}

func (h *Handler) handleClipboard(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	text, err := h.desk.ReadText(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, map[string]string{"text": text})
}

func (h *Handler) handleWindows(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	wins, err := h.desk.Windows(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if wins == nil {
		wins = []window.Summary{}
	}
	h.respondJSON(w, wins)
}

func (h *Handler) handleRunning(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	h.respondJSON(w, map[string]any{
		"name":    name,
		"running": h.desk.IsAppRunning(r.Context(), name),
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	h.respondJSON(w, h.desk.Status())
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) || !h.journalEnabled(w) {
		return
	}

	query := r.URL.Query()
	var (
		history *reporter.History
		err     error
	)
	if s := query.Get("since"); s != "" {
		d, perr := time.ParseDuration(s)
		if perr != nil || d <= 0 {
			http.Error(w, "since must be a positive duration", http.StatusBadRequest)
			return
		}
		history, err = h.reports.HistorySince(h.now().Add(-d))
	} else {
		limit, ok := parseLimit(w, r)
		if !ok {
			return
		}
		history, err = h.reports.History(limit)
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, history)
}

func (h *Handler) handleApps(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) || !h.journalEnabled(w) {
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}
	switch periodType {
	case "day", "week", "month":
	default:
		http.Error(w, "period must be day, week or month", http.StatusBadRequest)
		return
	}

	report, err := h.reports.AppReport(periodType)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, report)
}

func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) || !h.journalEnabled(w) {
		return
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	logs, err := h.reports.Errors(limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if logs == nil {
		logs = []*journal.ErrorLog{}
	}
	h.respondJSON(w, logs)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

func (h *Handler) journalEnabled(w http.ResponseWriter) bool {
	if h.reports == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return false
	}
	return true
}

// parseLimit reads ?limit=, defaulting to 20.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 20, true
	}
	l, err := strconv.Atoi(s)
	if err != nil || l <= 0 {
		http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return l, true
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// statusFor maps an error's code onto an HTTP status.
func statusFor(err error) int {
	switch errs.CodeOf(err) {
	case errs.CodeClipboardUnavailable:
		return http.StatusServiceUnavailable
	case errs.CodeUnsupported:
		return http.StatusNotImplemented
	case errs.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), code)
}

func (h *Handler) respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("error encoding JSON", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
