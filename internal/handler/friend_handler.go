package handler

import (
	"net/http"
	"time"

	"voidspace/backend/internal/auth"
	"voidspace/backend/internal/models"
	"voidspace/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// FriendHandler serves the friend list and the request queue.
type FriendHandler struct {
	friends *repository.FriendRepository
}

func NewFriendHandler(friends *repository.FriendRepository) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// region --- DTOs ---

// SendRequestInput defines the structure for sending a friend request.
type SendRequestInput struct {
	Username string `json:"username" binding:"required" example:"bob"`
	Type     string `json:"type" binding:"omitempty,oneof=friend close" example:"friend"`
}

// ResolveRequestInput defines the structure for accepting or declining.
type ResolveRequestInput struct {
	RequestID uint   `json:"requestId" binding:"required" example:"3"`
	Action    string `json:"action" binding:"required,oneof=accept decline" example:"accept"`
}

// FriendResponse is one entry of the friend list.
type FriendResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	Bio        string `json:"bio"`
	IsClose    bool   `json:"is_close"`
}

// FriendRequestResponse is one pending incoming request.
type FriendRequestResponse struct {
	ID             uint      `json:"id"`
	FromID         uint      `json:"from_id"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
	FromUsername   string    `json:"from_username"`
	FromProfilePic string    `json:"from_profile_pic"`
}

// endregion

// ListFriends godoc
// @Summary      List friends
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]FriendResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /friends [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	friends, err := h.friends.ListFriends(c.Request.Context(), viewerID)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]FriendResponse, 0, len(friends))
	for _, f := range friends {
		out = append(out, FriendResponse{
			ID:         f.User.ID,
			Username:   f.User.Username,
			ProfilePic: f.User.ProfilePic,
			Bio:        f.User.Bio,
			IsClose:    f.IsClose,
		})
	}
	c.JSON(http.StatusOK, gin.H{"friends": out})
}

// SendRequest godoc
// @Summary      Send a friend or close-friend request
// @Description  A friend request proposes a new edge; a close request proposes upgrading an existing friendship.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendRequestInput true "Request"
// @Success      201  {object}  map[string]bool
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /friends [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	var input SendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := models.RequestKindFriend
	if input.Type == string(models.RequestKindClose) {
		kind = models.RequestKindClose
	}

	if err := h.friends.SendRequest(c.Request.Context(), viewerID, input.Username, kind); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// ListRequests godoc
// @Summary      List incoming friend requests
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]FriendRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/requests [get]
func (h *FriendHandler) ListRequests(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	requests, err := h.friends.ListIncoming(c.Request.Context(), viewerID)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]FriendRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, FriendRequestResponse{
			ID:             r.ID,
			FromID:         r.FromID,
			Type:           string(r.Kind),
			CreatedAt:      r.CreatedAt,
			FromUsername:   r.From.Username,
			FromProfilePic: r.From.ProfilePic,
		})
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

// ResolveRequest godoc
// @Summary      Accept or decline a friend request
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ResolveRequestInput true "Decision"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /friends/requests [post]
func (h *FriendHandler) ResolveRequest(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	var input ResolveRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.friends.Resolve(c.Request.Context(), input.RequestID, viewerID, input.Action == "accept")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
