package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// PlatformLinkedIn identifies the LinkedIn job board
	PlatformLinkedIn = "linkedin"
	// PlatformIndeed identifies the Indeed job board
	PlatformIndeed = "indeed"
)

// PlatformCredential stores one user's credentials for one external job board.
// Platforms use different shapes: LinkedIn-style platforms use an access token
// with optional refresh metadata, Indeed-style platforms use a publisher id and
// API key pair. Both shapes live in one row keyed by (user, platform); the
// adapter for each platform knows which fields it needs. This subsystem only
// reads credentials, it never refreshes them.
type PlatformCredential struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_platform" json:"user_id"`
	Platform string    `gorm:"type:text;not null;uniqueIndex:idx_user_platform" json:"platform"`

	// Token-style platforms
	AccessToken  string         `gorm:"type:text" json:"access_token,omitempty"`
	RefreshToken string         `gorm:"type:text" json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time     `gorm:"type:timestamp" json:"expires_at,omitempty"`
	Scopes       pq.StringArray `gorm:"type:text[]" json:"scopes,omitempty"`

	// Key-pair-style platforms
	PublisherID string `gorm:"type:text" json:"publisher_id,omitempty"`
	APIKey      string `gorm:"type:text" json:"api_key,omitempty"`

	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}
