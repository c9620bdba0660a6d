package db

import "time"

// Publishable carries the moderation flag and creation time shared by the
// content tables. IsPublished has no column default: gorm would skip a false
// value on insert and let the default win.
type Publishable struct {
	IsPublished bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index"`
}
