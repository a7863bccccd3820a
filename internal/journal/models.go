package journal

import (
	"time"
	"unicode/utf8"

	"github.com/snipnote/deskbridge/pkg/window"
)

// Clip is one observed clipboard change and the window that had focus.
type Clip struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CapturedAt  time.Time `gorm:"not null;index" json:"captured_at"`
	Text        string    `gorm:"not null" json:"text"`
	Length      int       `gorm:"not null" json:"length"` // in runes
	AppName     string    `gorm:"not null;index" json:"app_name"`
	WindowTitle string    `gorm:"not null" json:"window_title"`
	ProcessPath string    `gorm:"not null" json:"process_path"`
	Platform    string    `gorm:"not null" json:"platform"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// NewClip pairs text with the window it was copied from.
func NewClip(text string, source window.WindowInfo, at time.Time) *Clip {
	return &Clip{
		CapturedAt:  at,
		Text:        text,
		Length:      utf8.RuneCountInString(text),
		AppName:     source.ProcessName,
		WindowTitle: source.Title,
		ProcessPath: source.ProcessPath,
		Platform:    string(source.Platform),
	}
}

// ErrorLog records failures of the capture pipeline.
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Source    string    `gorm:"not null" json:"source"`
	ErrorMsg  string    `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AppCount aggregates clips per source application.
type AppCount struct {
	AppName   string    `json:"app_name"`
	ClipCount int64     `json:"clip_count"`
	LastAt    time.Time `json:"last_at"`
}
