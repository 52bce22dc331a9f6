package models

import "time"

// Lead is a contact request submitted through the public demo form. Status is
// deliberately a free-form string with a single recognized sentinel
// ("completed", case-insensitive); anything else counts as not completed.
// Already-stored rows rely on that loose contract, so it is not an enum.
type Lead struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	MobileNumber string    `gorm:"column:mobile_number;size:32;not null" json:"mobile_number"`
	City         string    `gorm:"size:128;not null" json:"city"`
	Status       string    `gorm:"size:64;not null;default:'new'" json:"status"`
}
