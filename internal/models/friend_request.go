package models

import "gorm.io/gorm"

// RequestKind distinguishes a plain friend request from a close-friend
// upgrade proposal.
type RequestKind string

const (
	// RequestKindFriend proposes creating a new friendship edge.
	RequestKindFriend RequestKind = "friend"

	// RequestKindClose proposes upgrading an existing edge to close.
	RequestKindClose RequestKind = "close"
)

// FriendRequest is a directed pending proposal. It exists only while
// unresolved; accepting or declining deletes the row.
type FriendRequest struct {
	gorm.Model
	FromID uint        `gorm:"not null;index"`
	ToID   uint        `gorm:"not null;index"`
	Kind   RequestKind `gorm:"size:20;not null;default:'friend'"`

	From User `gorm:"foreignKey:FromID;references:ID"`
	To   User `gorm:"foreignKey:ToID;references:ID"`
}
