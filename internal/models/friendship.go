package models

import "gorm.io/gorm"

// Friendship is an undirected edge between two users, optionally flagged
// close. The pair is stored canonically with the smaller id in UserAID so
// that (A,B) and (B,A) resolve to the same row.
type Friendship struct {
	gorm.Model
	UserAID uint `gorm:"not null;uniqueIndex:idx_friendship_pair"`
	UserBID uint `gorm:"not null;uniqueIndex:idx_friendship_pair"`
	IsClose bool `gorm:"not null;default:false"`

	UserA User `gorm:"foreignKey:UserAID;references:ID"`
	UserB User `gorm:"foreignKey:UserBID;references:ID"`
}

// CanonicalPair orders two user ids into friendship slot order.
func CanonicalPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// OtherUser returns the participant that is not the given user.
func (f *Friendship) OtherUser(userID uint) uint {
	if f.UserAID == userID {
		return f.UserBID
	}
	return f.UserAID
}
