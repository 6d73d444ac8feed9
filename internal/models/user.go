package models

import "gorm.io/gorm"

// User represents a registered account.
type User struct {
	gorm.Model
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	ProfilePic   string `gorm:"size:512"`
	Bio          string
}
