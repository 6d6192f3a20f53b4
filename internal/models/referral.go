package models

import (
	"time"

	"github.com/google/uuid"
)

type Referral struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReferrerID int64     `gorm:"not null;index"`
	ReferredID int64     `gorm:"not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// ReferredUser is one row of a referrer's list, joined with the referred user's profile.
// Registered is false when the referred user row is missing.
type ReferredUser struct {
	UserID      int64
	Username    string
	DisplayName string
	Registered  bool
	CreatedAt   time.Time
}

type LeaderboardEntry struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
}
