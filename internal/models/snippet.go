package models

import (
	"time"

	"gorm.io/datatypes"
)

// Snippet is a stored code fragment with its metadata. The server owns the
// identifier and creation timestamp; both are frozen once assigned.
type Snippet struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	CodeContent string                      `gorm:"type:text;not null" json:"code_content"`
	Language    string                      `gorm:"type:varchar(50);not null;index" json:"language"`
	Description *string                     `gorm:"type:text" json:"description,omitempty"`
	Tags        datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	IsFavorite  bool                        `gorm:"not null;default:false" json:"is_favorite"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
}

// TagList returns the tags as a plain string slice, never nil.
func (s *Snippet) TagList() []string {
	if s == nil || s.Tags == nil {
		return []string{}
	}
	return []string(s.Tags)
}
