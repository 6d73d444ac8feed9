package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"voidspace/backend/internal/auth"
	"voidspace/backend/internal/cache"
	"voidspace/backend/internal/models"
	"voidspace/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// PostHandler serves the feed, post creation, and comments.
type PostHandler struct {
	posts *repository.PostRepository
	stats *cache.RedisCache
}

func NewPostHandler(posts *repository.PostRepository, stats *cache.RedisCache) *PostHandler {
	return &PostHandler{posts: posts, stats: stats}
}

// region --- DTOs ---

// CreatePostInput defines the structure for creating a post.
type CreatePostInput struct {
	Text     string `json:"text" binding:"required" example:"hello"`
	MediaURL string `json:"media_url" example:"/api/media/uploads/171234-abc.png"`
	Level    int    `json:"level" example:"20"`
}

// CreateCommentInput defines the structure for commenting on a post.
type CreateCommentInput struct {
	Text string `json:"text" binding:"required" example:"nice one"`
}

// CommentResponse is a comment with its author's public fields.
type CommentResponse struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profile_pic"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostResponse is a feed entry: a post with its author's public fields and
// its full ordered comment list.
type PostResponse struct {
	ID         uint              `json:"id"`
	UserID     uint              `json:"user_id"`
	Username   string            `json:"username"`
	ProfilePic string            `json:"profile_pic"`
	Text       string            `json:"text"`
	MediaURL   string            `json:"media_url,omitempty"`
	Level      int               `json:"level"`
	CreatedAt  time.Time         `json:"created_at"`
	Comments   []CommentResponse `json:"comments"`
}

// endregion

// GetFeed godoc
// @Summary      Read a feed
// @Description  Returns posts visible to the viewer at the requested tier (10 public, 20 friends, 30 close friends), newest first, 20 per page.
// @Tags         posts
// @Produce      json
// @Param        level query int false "Visibility tier" default(10)
// @Param        page  query int false "Page number" default(1)
// @Success      200  {object}  map[string][]PostResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [get]
func (h *PostHandler) GetFeed(c *gin.Context) {
	var viewerID *uint
	if id, ok := auth.CurrentUserID(c); ok {
		viewerID = &id
	}

	level, err := strconv.Atoi(c.DefaultQuery("level", "10"))
	if err != nil {
		level = int(models.VisibilityPublic)
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	posts, err := h.posts.Feed(c.Request.Context(), viewerID, models.Visibility(level), page)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, buildPostResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"posts": out})
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a post owned by the viewer. An unknown level falls back to public.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreatePostInput true "Post"
// @Success      201  {object}  map[string]bool
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post text is required"})
		return
	}

	level := models.Visibility(input.Level)
	if !level.Valid() {
		level = models.VisibilityPublic
	}

	if _, err := h.posts.Create(c.Request.Context(), viewerID, text, input.MediaURL, level); err != nil {
		fail(c, err)
		return
	}

	_ = h.stats.Invalidate(c.Request.Context(), cache.KeyForPostCount(viewerID))

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                true "Post ID"
// @Param        input body CreateCommentInput true "Comment"
// @Success      201  {object}  map[string]CommentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
func (h *PostHandler) CreateComment(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text is required"})
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), uint(postID), viewerID, text)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": buildCommentResponse(*comment)})
}

// region --- Helpers ---

func buildPostResponse(p models.Post) PostResponse {
	comments := make([]CommentResponse, 0, len(p.Comments))
	for _, cm := range p.Comments {
		comments = append(comments, buildCommentResponse(cm))
	}
	return PostResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Username:   p.User.Username,
		ProfilePic: p.User.ProfilePic,
		Text:       p.Text,
		MediaURL:   p.MediaURL,
		Level:      int(p.Level),
		CreatedAt:  p.CreatedAt,
		Comments:   comments,
	}
}

func buildCommentResponse(cm models.Comment) CommentResponse {
	return CommentResponse{
		ID:         cm.ID,
		PostID:     cm.PostID,
		UserID:     cm.UserID,
		Username:   cm.User.Username,
		ProfilePic: cm.User.ProfilePic,
		Text:       cm.Text,
		CreatedAt:  cm.CreatedAt,
	}
}

// endregion
