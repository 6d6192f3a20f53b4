package models

import (
	"time"
)

type User struct {
	UserID      int64     `gorm:"primaryKey;autoIncrement:false"`
	Username    string    `gorm:"size:255"`
	DisplayName string    `gorm:"size:255"`
	JoinedAt    time.Time `gorm:"not null"`
	ReferrerID  *int64    `gorm:"index"` // set once, by the ledger's credit transaction
}
