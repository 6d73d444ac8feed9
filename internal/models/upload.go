package models

import "gorm.io/gorm"

// Upload is an append-only accounting row for an accepted blob. The sum of
// FileSize across all rows is the global storage usage counter.
type Upload struct {
	gorm.Model
	UserID   uint   `gorm:"not null;index"`
	FileKey  string `gorm:"size:512;not null"`
	FileSize int64  `gorm:"not null"`
}
