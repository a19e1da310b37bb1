package model

import (
	"time"

	"github.com/google/uuid"
)

var (
	// ApplicationStatusApplied indicates the external platform accepted the application
	ApplicationStatusApplied = "applied"
)

// Application represents a job application submitted through an external platform
type Application struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AppliedAt time.Time `gorm:"type:timestamp" json:"applied_at"`
	Status    string    `gorm:"type:text" json:"status"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"-"`

	// ListingID references the local JobListing row the user applied to
	ListingID uint       `gorm:"not null;index" json:"listing_id"`
	Listing   JobListing `gorm:"foreignKey:ListingID;references:ID" json:"-"`

	// Snapshot of the listing at apply time
	Title   string `gorm:"type:text" json:"title"`
	Company string `gorm:"type:text" json:"company"`

	// ExternalApplicationID is the platform-returned id, when the platform
	// reports one. Always optional, success is never blocked on its presence.
	ExternalApplicationID *string `gorm:"type:text" json:"external_application_id,omitempty"`

	ResumeID      *int   `json:"resume_id,omitempty"`
	Resume        File   `gorm:"foreignKey:ResumeID;references:ID" json:"-"`
	CoverLetterID *int   `json:"cover_letter_id,omitempty"`
	CoverLetter   File   `gorm:"foreignKey:CoverLetterID;references:ID" json:"-"`
	Message       string `gorm:"type:text" json:"message,omitempty"`
}
