package model

import "time"

// SaveBackup records a snapshot written before a save was overwritten.
type SaveBackup struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"index:idx_backup_session;size:36;not null" json:"session_id"`
	Source    string    `gorm:"index:idx_backup_source;size:512;not null" json:"source"`
	Path      string    `gorm:"size:512;not null" json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `gorm:"index:idx_backup_created;autoCreateTime:milli" json:"created_at"`
}
