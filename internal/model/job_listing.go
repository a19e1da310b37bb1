package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobListing is gorm model for a job posting mirrored from an external job board.
// The triple (user_id, source, external_id) is unique: re-ingesting the same
// external job returns the existing row instead of creating a duplicate, so the
// user-side flags below survive repeated searches.
type JobListing struct {
	ID     uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_listing_dedup;<-:create" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"-"`

	// Source is the platform identifier, ExternalID the platform-native job id
	Source     string `gorm:"type:text;not null;uniqueIndex:idx_listing_dedup;<-:create" json:"source"`
	ExternalID string `gorm:"type:text;not null;uniqueIndex:idx_listing_dedup;<-:create" json:"external_id"`

	Title       string     `gorm:"type:text" json:"title"`
	Company     string     `gorm:"type:text" json:"company"`
	Location    *string    `gorm:"type:text" json:"location,omitempty"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Salary      *string    `gorm:"type:text" json:"salary,omitempty"`
	URL         string     `gorm:"type:text" json:"url"`
	IsRemote    *bool      `json:"is_remote,omitempty"`
	PostedAt    *time.Time `gorm:"type:timestamp" json:"posted_at,omitempty"`
	SavedAt     time.Time  `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"saved_at"`

	Applied bool `gorm:"not null;default:false" json:"applied"`
	Hidden  bool `gorm:"not null;default:false" json:"hidden"`

	// Details keeps the raw platform response verbatim for forward compatibility
	Details datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
}
