package models

import "gorm.io/gorm"

// Comment belongs to exactly one post.
type Comment struct {
	gorm.Model
	PostID uint   `gorm:"not null;index"`
	UserID uint   `gorm:"not null;index"`
	Text   string `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;references:ID"`
}
