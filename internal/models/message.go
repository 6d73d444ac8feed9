package models

import "gorm.io/gorm"

// Message is a directed text item between two users.
type Message struct {
	gorm.Model
	SenderID    uint   `gorm:"not null;index"`
	RecipientID uint   `gorm:"not null;index"`
	Text        string `gorm:"not null"`

	Sender User `gorm:"foreignKey:SenderID;references:ID"`
}
