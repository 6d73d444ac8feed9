package handler

import (
	"net/http"
	"strconv"
	"time"

	"voidspace/backend/internal/auth"
	"voidspace/backend/internal/cache"
	"voidspace/backend/internal/repository"
	"voidspace/backend/pkg/hash"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves profile reads and updates.
type ProfileHandler struct {
	users   *repository.UserRepository
	posts   *repository.PostRepository
	friends *repository.FriendRepository
	hasher  hash.Hasher
	stats   *cache.RedisCache
}

func NewProfileHandler(users *repository.UserRepository, posts *repository.PostRepository, friends *repository.FriendRepository, hasher hash.Hasher, stats *cache.RedisCache) *ProfileHandler {
	return &ProfileHandler{users: users, posts: posts, friends: friends, hasher: hasher, stats: stats}
}

// region --- DTOs ---

// UpdateProfileInput defines the structure for a partial profile update.
// Bio is a pointer so it can be cleared explicitly.
type UpdateProfileInput struct {
	Bio        *string `json:"bio"`
	Username   string  `json:"username"`
	Email      string  `json:"email" binding:"omitempty,email"`
	Password   string  `json:"password" binding:"omitempty,min=6"`
	ProfilePic string  `json:"profile_pic"`
}

// ProfileResponse is a user's profile with derived counts.
type ProfileResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	ProfilePic  string    `json:"profile_pic"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	PostCount   int64     `json:"postCount"`
	FriendCount int64     `json:"friendCount"`
}

// endregion

// GetProfile godoc
// @Summary      Read a profile
// @Description  Returns a user's profile (the viewer's own when userId is absent) with post and friend counts.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        userId query int false "User ID (defaults to viewer)"
// @Success      200  {object}  map[string]ProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	userID := viewerID
	if q := c.Query("userId"); q != "" {
		parsed, err := strconv.ParseUint(q, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		userID = uint(parsed)
	}

	ctx := c.Request.Context()

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}

	postCount, ok := h.stats.GetCount(ctx, cache.KeyForPostCount(userID))
	if !ok {
		postCount, err = h.posts.CountByUser(ctx, userID)
		if err != nil {
			fail(c, err)
			return
		}
		_ = h.stats.SetCount(ctx, cache.KeyForPostCount(userID), postCount)
	}

	friendCount, ok := h.stats.GetCount(ctx, cache.KeyForFriendCount(userID))
	if !ok {
		friendCount, err = h.friends.CountFriends(ctx, userID)
		if err != nil {
			fail(c, err)
			return
		}
		_ = h.stats.SetCount(ctx, cache.KeyForFriendCount(userID), friendCount)
	}

	c.JSON(http.StatusOK, gin.H{"profile": ProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		ProfilePic:  user.ProfilePic,
		Bio:         user.Bio,
		CreatedAt:   user.CreatedAt,
		PostCount:   postCount,
		FriendCount: friendCount,
	}})
}

// UpdateProfile godoc
// @Summary      Update the viewer's profile
// @Description  Applies a partial update; any of bio, username, email, password, profile_pic.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Fields to update"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Username != "" {
		updates["username"] = input.Username
	}
	if input.Email != "" {
		updates["email"] = input.Email
	}
	if input.Password != "" {
		hashed, err := h.hasher.Hash(input.Password)
		if err != nil {
			fail(c, err)
			return
		}
		updates["password_hash"] = hashed
	}
	if input.ProfilePic != "" {
		updates["profile_pic"] = input.ProfilePic
	}

	if err := h.users.Update(c.Request.Context(), viewerID, updates); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
