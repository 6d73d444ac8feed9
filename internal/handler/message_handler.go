package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"voidspace/backend/internal/auth"
	"voidspace/backend/internal/models"
	"voidspace/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves direct messages and the conversation list.
type MessageHandler struct {
	messages *repository.MessageRepository
	users    *repository.UserRepository
}

func NewMessageHandler(messages *repository.MessageRepository, users *repository.UserRepository) *MessageHandler {
	return &MessageHandler{messages: messages, users: users}
}

// region --- DTOs ---

// SendMessageInput defines the structure for sending a message.
type SendMessageInput struct {
	Text string `json:"text" binding:"required" example:"hey"`
}

// MessageResponse is a stored message with its sender's username.
type MessageResponse struct {
	ID             uint      `json:"id"`
	SenderID       uint      `json:"sender_id"`
	RecipientID    uint      `json:"recipient_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	SenderUsername string    `json:"sender_username"`
}

// ConversationResponse is one row of the conversation list: a friend and
// the latest message exchanged with them, if any.
type ConversationResponse struct {
	ID            uint       `json:"id"`
	Username      string     `json:"username"`
	ProfilePic    string     `json:"profile_pic"`
	IsClose       bool       `json:"is_close"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

// endregion

// GetConversations godoc
// @Summary      List conversations
// @Description  Every friend with the latest exchanged message, most recent first; friends with no messages last.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]ConversationResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /messages [get]
func (h *MessageHandler) GetConversations(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	conversations, err := h.messages.Conversations(c.Request.Context(), viewerID)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, ConversationResponse{
			ID:            conv.FriendID,
			Username:      conv.Username,
			ProfilePic:    conv.ProfilePic,
			IsClose:       conv.IsClose,
			LastMessage:   conv.LastMessage,
			LastMessageAt: conv.LastMessageAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// GetHistory godoc
// @Summary      Message history with a user
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        friendId path int true "Friend's user ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /messages/{friendId} [get]
func (h *MessageHandler) GetHistory(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	friendID, err := strconv.ParseUint(c.Param("friendId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend ID"})
		return
	}

	friend, err := h.users.FindByID(c.Request.Context(), uint(friendID))
	if err != nil {
		fail(c, err)
		return
	}

	messages, err := h.messages.History(c.Request.Context(), viewerID, friend.ID)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, buildMessageResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": out,
		"friend": SessionUserResponse{
			ID:         friend.ID,
			Username:   friend.Username,
			ProfilePic: friend.ProfilePic,
		},
	})
}

// SendMessage godoc
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        friendId path int              true "Recipient's user ID"
// @Param        input    body SendMessageInput true "Message"
// @Success      201  {object}  map[string]MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /messages/{friendId} [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	friendID, err := strconv.ParseUint(c.Param("friendId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid friend ID"})
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text required"})
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), viewerID, uint(friendID), text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": buildMessageResponse(*msg)})
}

func buildMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
		SenderUsername: m.Sender.Username,
	}
}
