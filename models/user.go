package models

import "time"

// User is an authenticated principal. Holding an account is not enough to
// reach the dashboard; the principal must also appear in the operators
// registry (see Operator).
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Email          string `gorm:"size:255;not null;unique"`
	HashedPassword []byte `gorm:"not null"`
}
