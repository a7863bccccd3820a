package journal

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Repository handles all database operations for clips
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new clip
func (r *Repository) Create(clip *Clip) error {
	result := r.db.Create(clip)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert clip")
	}
	return nil
}

// GetByID retrieves a clip by its ID
func (r *Repository) GetByID(id uint) (*Clip, error) {
	var clip Clip
	result := r.db.First(&clip, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get clip")
	}
	return &clip, nil
}

// Recent returns up to limit clips, newest first
func (r *Repository) Recent(limit int) ([]*Clip, error) {
	var clips []*Clip
	result := r.db.Order("captured_at DESC").Order("id DESC").Limit(limit).Find(&clips)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query recent clips")
	}
	return clips, nil
}

// Since returns clips captured at or after since, oldest first
func (r *Repository) Since(since time.Time) ([]*Clip, error) {
	var clips []*Clip
	result := r.db.Where("captured_at >= ?", since).Order("captured_at ASC").Find(&clips)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query clips")
	}
	return clips, nil
}

// AppCountsSince groups clips by source application, busiest first
func (r *Repository) AppCountsSince(since time.Time) ([]AppCount, error) {
	var counts []struct {
		AppName   string
		ClipCount int64
		LastAt    string
	}

	result := r.db.Model(&Clip{}).
		Select("app_name, COUNT(*) AS clip_count, MAX(captured_at) AS last_at").
		Where("captured_at >= ?", since).
		Group("app_name").
		Order("clip_count DESC").
		Order("app_name ASC").
		Scan(&counts)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query app counts")
	}

	out := make([]AppCount, len(counts))
	for i, c := range counts {
		out[i] = AppCount{AppName: c.AppName, ClipCount: c.ClipCount, LastAt: parseSQLiteTime(c.LastAt)}
	}
	return out, nil
}

// DeleteOlderThan removes clips captured before the cutoff
func (r *Repository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("captured_at < ?", before).Delete(&Clip{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old clips")
	}
	return result.RowsAffected, nil
}

// Count returns the number of stored clips
func (r *Repository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&Clip{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count clips")
	}
	return n, nil
}

// Latest retrieves the most recent clip, or nil when the journal is empty
func (r *Repository) Latest() (*Clip, error) {
	var clip Clip
	result := r.db.Order("captured_at DESC").Order("id DESC").First(&clip)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest clip")
	}
	return &clip, nil
}

// CreateErrorLog inserts a new error log
func (r *Repository) CreateErrorLog(errorLog *ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecentErrors returns up to limit error logs, newest first
func (r *Repository) RecentErrors(limit int) ([]*ErrorLog, error) {
	var logs []*ErrorLog
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// Clear removes all clips
func (r *Repository) Clear() error {
	result := r.db.Where("1 = 1").Delete(&Clip{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear clips")
	}
	return nil
}

// sqlite hands aggregate timestamps back as text.
func parseSQLiteTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05Z07:00",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
