package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"voidspace/backend/internal/apperr"
	"voidspace/backend/internal/models"

	"gorm.io/gorm"
)

// MessageRepository owns direct messages and the derived conversation view.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Conversation is one row of the conversation projection: a friend plus the
// latest message (if any) exchanged with them.
type Conversation struct {
	FriendID      uint
	Username      string
	ProfilePic    string
	IsClose       bool
	LastMessage   *string
	LastMessageAt *time.Time
}

// History returns every message exchanged between the two users, oldest
// first, with sender preloaded.
func (r *MessageRepository) History(ctx context.Context, userID, friendID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, friendID, friendID, userID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// Send stores a message to an existing recipient and returns it with the
// sender preloaded.
func (r *MessageRepository) Send(ctx context.Context, senderID, recipientID uint, text string) (*models.Message, error) {
	tx := r.db.WithContext(ctx)

	var recipient models.User
	err := tx.Select("id").First(&recipient, recipientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	msg := models.Message{SenderID: senderID, RecipientID: recipientID, Text: text}
	if err := tx.Create(&msg).Error; err != nil {
		return nil, err
	}

	if err := tx.Preload("Sender").First(&msg, msg.ID).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Conversations projects the viewer's friend list onto the latest message
// exchanged with each friend, sorted most-recent first. Friends with no
// messages sort last.
func (r *MessageRepository) Conversations(ctx context.Context, viewerID uint) ([]Conversation, error) {
	tx := r.db.WithContext(ctx)

	var edges []models.Friendship
	err := tx.Preload("UserA").Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", viewerID, viewerID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	conversations := make([]Conversation, 0, len(edges))
	for _, e := range edges {
		friend := e.UserA
		if e.UserAID == viewerID {
			friend = e.UserB
		}
		if friend.ID == 0 {
			continue
		}

		conv := Conversation{
			FriendID:   friend.ID,
			Username:   friend.Username,
			ProfilePic: friend.ProfilePic,
			IsClose:    e.IsClose,
		}

		var last models.Message
		err := tx.Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			viewerID, friend.ID, friend.ID, viewerID).
			Order("created_at DESC, id DESC").
			First(&last).Error
		switch {
		case err == nil:
			text := last.Text
			at := last.CreatedAt
			conv.LastMessage = &text
			conv.LastMessageAt = &at
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}

		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessageAt, conversations[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	return conversations, nil
}
