package models

import (
	"time"
)

// PersonalizationRecord is the locally cached copy of one user's
// personalization, keyed by (applicationId, userId, taskId).
type PersonalizationRecord struct {
	RecordID      uint64 `gorm:"primaryKey;autoIncrement"`
	ApplicationID string `gorm:"size:255;not null;index:idx_personalization_scope,unique"`
	UserID        string `gorm:"size:255;not null;index:idx_personalization_scope,unique"`
	TaskID        string `gorm:"size:255;not null;default:'';index:idx_personalization_scope,unique"`
	Payload       JSON   `gorm:"type:json"`
	Version       uint64 `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the table name for PersonalizationRecord
func (PersonalizationRecord) TableName() string {
	return "personalization_records"
}

// ReportSnapshot is a write-only diagnostic copy of a resolved report. The
// in-memory TTL cache stays authoritative; snapshots are never read back
// into the resolver.
type ReportSnapshot struct {
	SnapshotID uint64 `gorm:"primaryKey;autoIncrement"`
	CacheKey   string `gorm:"uniqueIndex;size:512;not null"`
	Payload    JSON   `gorm:"type:json"`
	ResolvedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for ReportSnapshot
func (ReportSnapshot) TableName() string {
	return "report_snapshots"
}
