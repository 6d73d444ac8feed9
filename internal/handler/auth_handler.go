package handler

import (
	"net/http"

	"voidspace/backend/internal/auth"
	"voidspace/backend/internal/repository"
	"voidspace/backend/pkg/hash"
	"voidspace/backend/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login, logout and session introspection.
type AuthHandler struct {
	users  *repository.UserRepository
	signer *token.Signer
	hasher hash.Hasher
}

func NewAuthHandler(users *repository.UserRepository, signer *token.Signer, hasher hash.Hasher) *AuthHandler {
	return &AuthHandler{users: users, signer: signer, hasher: hasher}
}

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required,min=6" example:"hunter22"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"hunter22"`
}

// SessionUserResponse is the user fragment returned by auth endpoints.
type SessionUserResponse struct {
	ID         uint   `json:"id" example:"1"`
	Username   string `json:"username" example:"alice"`
	Email      string `json:"email,omitempty" example:"alice@example.com"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// endregion

// Register godoc
// @Summary      Register a new user
// @Description  Creates a new user and sets the session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := h.hasher.Hash(input.Password)
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), input.Email, input.Username, hashed)
	if err != nil {
		fail(c, err)
		return
	}

	tokenString, err := h.signer.Sign(token.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}

	auth.SetSessionCookie(c, tokenString)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    SessionUserResponse{ID: user.ID, Username: user.Username},
	})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates with email and password and sets the session cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil || !h.hasher.Verify(user.PasswordHash, input.Password) {
		// Unknown user and wrong password get the same response.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.signer.Sign(token.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}

	auth.SetSessionCookie(c, tokenString)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    SessionUserResponse{ID: user.ID, Username: user.Username},
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session cookie.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me godoc
// @Summary      Current user
// @Description  Returns the authenticated user's account.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]SessionUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		// A valid token for a vanished user is still no session.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": SessionUserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
	}})
}
