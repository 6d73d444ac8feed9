package models

import "gorm.io/gorm"

// Visibility is a post's audience tier. Higher values narrow the audience;
// a feed request at tier N includes qualifying posts with Level <= N.
type Visibility int

const (
	VisibilityPublic       Visibility = 10
	VisibilityFriends      Visibility = 20
	VisibilityCloseFriends Visibility = 30
)

// Valid reports whether v is one of the defined tiers.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityCloseFriends:
		return true
	}
	return false
}

// Post is a content item owned by one user.
type Post struct {
	gorm.Model
	UserID   uint       `gorm:"not null;index"`
	Text     string     `gorm:"not null"`
	MediaURL string     `gorm:"size:512"`
	Level    Visibility `gorm:"not null;default:10;index"`

	User     User      `gorm:"foreignKey:UserID;references:ID"`
	Comments []Comment `gorm:"foreignKey:PostID"`
}
