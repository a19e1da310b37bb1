// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

// User is gorm model for an account that owns saved listings, credentials and applications
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username  string    `gorm:"type:text;unique;not null" json:"username"`
	Email     *string   `gorm:"type:text" json:"email"`
	CreatedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`

	Credentials  []PlatformCredential `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Listings     []JobListing         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Applications []Application        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserStats keeps per-user aggregate counters. Incremented on successful apply,
// one row per user.
type UserStats struct {
	UserID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalApplications uint      `gorm:"default:0" json:"total_applications"`
}
