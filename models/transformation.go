package models

import "time"

// Transformation is one before/after staging pair plus the metadata shown in
// the public gallery. DisplayOrder drives presentation order (ascending) and
// need not be unique; inactive rows stay visible in the dashboard but are
// excluded from public listings.
type Transformation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	BeforeImageURL string    `gorm:"column:before_image_url;size:1024;not null" json:"before_image_url"`
	AfterImageURL  string    `gorm:"column:after_image_url;size:1024;not null" json:"after_image_url"`
	RoomType       string    `gorm:"size:128;not null" json:"room_type"`
	DisplayOrder   int       `gorm:"not null;default:0;index" json:"display_order"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
}
