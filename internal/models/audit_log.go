package models

import "time"

// AuditLog records a single persistence operation for observability. Entries
// carry no business meaning and are pruned by the retention job.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Action     string    `gorm:"not null;index" json:"action"`
	Resource   string    `gorm:"index" json:"resource"`
	Result     string    `gorm:"not null" json:"result"`
	DurationMS int64     `json:"duration_ms"`
	Rows       int64     `json:"rows"`
	Metadata   string    `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
