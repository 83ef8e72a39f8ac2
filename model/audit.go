package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records every mutation applied to an open save.
type AuditLog struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_audit_trace;size:36;not null" json:"trace_id"`
	SessionID  string         `gorm:"index:idx_audit_session;size:36" json:"session_id"`
	SavePath   string         `gorm:"size:512" json:"save_path"`
	Action     string         `gorm:"size:64;not null" json:"action"`
	Handle     uint32         `json:"handle"`
	Hero       uint8          `json:"hero"`
	Request    datatypes.JSON `json:"request"`
	Response   datatypes.JSON `json:"response"`
	Code       string         `gorm:"size:64" json:"code"`
	Error      string         `gorm:"type:text" json:"error"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
