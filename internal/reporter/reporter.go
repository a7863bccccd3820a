package reporter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/snipnote/deskbridge/internal/journal"
	"github.com/snipnote/deskbridge/pkg/utils"
)

// Source is the part of journal.Repository reports are built from.
type Source interface {
	Recent(limit int) ([]*journal.Clip, error)
	Since(since time.Time) ([]*journal.Clip, error)
	AppCountsSince(since time.Time) ([]journal.AppCount, error)
	Count() (int64, error)
	RecentErrors(limit int) ([]*journal.ErrorLog, error)
}

// Period is the time range of an app report
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

// AppShare is one application's part of an app report
type AppShare struct {
	AppName    string    `json:"app_name"`
	ClipCount  int64     `json:"clip_count"`
	LastAt     time.Time `json:"last_at"`
	Percentage float64   `json:"percentage"`
}

// AppReport counts clips per source application over a period
type AppReport struct {
	Period      Period     `json:"period"`
	Apps        []AppShare `json:"apps"`
	TotalClips  int64      `json:"total_clips"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// History is the most recent clips, newest first
type History struct {
	Clips       []*journal.Clip `json:"clips"`
	Stored      int64           `json:"stored"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Reporter handles report generation
type Reporter struct {
	repo Source
	now  func() time.Time
}

// New creates a new reporter
func New(repo Source) *Reporter {
	return &Reporter{repo: repo, now: time.Now}
}

// History returns up to limit recent clips
func (r *Reporter) History(limit int) (*History, error) {
	if limit <= 0 {
		limit = 20
	}
	clips, err := r.repo.Recent(limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load history")
	}
	stored, err := r.repo.Count()
	if err != nil {
		return nil, errors.Wrap(err, "failed to count clips")
	}
	return &History{Clips: clips, Stored: stored, GeneratedAt: r.now()}, nil
}

// HistorySince returns every clip captured at or after since, newest first
func (r *Reporter) HistorySince(since time.Time) (*History, error) {
	clips, err := r.repo.Since(since)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load history")
	}
	slices.Reverse(clips)
	stored, err := r.repo.Count()
	if err != nil {
		return nil, errors.Wrap(err, "failed to count clips")
	}
	return &History{Clips: clips, Stored: stored, GeneratedAt: r.now()}, nil
}

// Errors returns up to limit journaled recorder failures, newest first
func (r *Reporter) Errors(limit int) ([]*journal.ErrorLog, error) {
	if limit <= 0 {
		limit = 20
	}
	logs, err := r.repo.RecentErrors(limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load error log")
	}
	return logs, nil
}

// AppReport generates a per-application report for the specified period
func (r *Reporter) AppReport(periodType string) (*AppReport, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	counts, err := r.repo.AppCountsSince(period.Start.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get app counts")
	}

	var total int64
	for _, c := range counts {
		total += c.ClipCount
	}

	apps := make([]AppShare, len(counts))
	for i, c := range counts {
		apps[i] = AppShare{AppName: c.AppName, ClipCount: c.ClipCount, LastAt: c.LastAt}
		if total > 0 {
			apps[i].Percentage = float64(c.ClipCount) / float64(total) * 100.0
		}
	}

	return &AppReport{
		Period:      *period,
		Apps:        apps,
		TotalClips:  total,
		GeneratedAt: r.now(),
	}, nil
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*Period, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &Period{Start: start, End: end, Type: periodType}, nil
}

// FormatHistoryText renders one line per clip: age, source app and a preview
func (r *Reporter) FormatHistoryText(h *History) string {
	var b strings.Builder
	if len(h.Clips) == 0 {
		b.WriteString("No clips recorded yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-10s %-20s %s\n", "Age", "Application", "Text")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, c := range h.Clips {
		fmt.Fprintf(&b, "%-10s %-20s %s\n",
			utils.FormatAge(c.CapturedAt, h.GeneratedAt),
			utils.Preview(c.AppName, 20),
			utils.Preview(c.Text, 48))
	}
	fmt.Fprintf(&b, "\nShowing %d of %d stored clips\n", len(h.Clips), h.Stored)
	return b.String()
}

// FormatErrorsText renders one line per journaled failure
func (r *Reporter) FormatErrorsText(logs []*journal.ErrorLog) string {
	var b strings.Builder
	if len(logs) == 0 {
		b.WriteString("No errors recorded.\n")
		return b.String()
	}

	now := r.now()
	fmt.Fprintf(&b, "%-10s %-10s %s\n", "Age", "Source", "Error")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, l := range logs {
		fmt.Fprintf(&b, "%-10s %-10s %s\n",
			utils.FormatAge(l.Timestamp, now),
			l.Source,
			utils.Preview(l.ErrorMsg, 58))
	}
	return b.String()
}

// FormatAppReportText formats the report as human-readable text
func (r *Reporter) FormatAppReportText(report *AppReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Clip Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total Clips: %d\n\n", report.TotalClips)

	if len(report.Apps) == 0 {
		b.WriteString("No clips recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-30s %10s %10s %12s\n", "Application", "Clips", "Percent", "Last")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	for _, app := range report.Apps {
		fmt.Fprintf(&b, "%-30s %10d %9.1f%% %12s\n",
			utils.Preview(app.AppName, 30),
			app.ClipCount,
			app.Percentage,
			utils.FormatAge(app.LastAt, report.GeneratedAt))
	}
	return b.String()
}

// FormatJSON renders any report as indented JSON
func (r *Reporter) FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}
