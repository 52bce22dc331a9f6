package models

import "time"

// Operator is one row per privileged principal. The dashboard gate looks the
// user up here on every request; a row's presence is what grants access, and
// deleting the row revokes it without touching the account itself.
type Operator struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Note      string `gorm:"size:255"`
}
