package repository

import (
	"context"
	"errors"
	"fmt"

	"voidspace/backend/internal/apperr"
	"voidspace/backend/internal/models"

	"gorm.io/gorm"
)

// FeedPageSize is the fixed page size of the feed.
const FeedPageSize = 20

// PostRepository owns posts and their comments, including the feed
// visibility resolver.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post for the given author.
func (r *PostRepository) Create(ctx context.Context, userID uint, text, mediaURL string, level models.Visibility) (*models.Post, error) {
	post := models.Post{
		UserID:   userID,
		Text:     text,
		MediaURL: mediaURL,
		Level:    level,
	}
	if err := r.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Feed resolves the visible post set for a viewer at the requested tier,
// newest first, offset-paginated at FeedPageSize.
//
// Tier 10 is the public feed and needs no viewer. Tier 20 returns posts at
// level <= 20 authored by the viewer or any friend; tier 30 returns posts
// at level <= 30 authored by the viewer or any close friend. The <= filter
// makes a narrower relationship a superset audience: a close friend also
// sees the author's public and friends-tier posts through the same feed.
// Any other tier, or a missing viewer above tier 10, is unauthorized.
func (r *PostRepository) Feed(ctx context.Context, viewerID *uint, level models.Visibility, page int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}

	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User")

	switch {
	case level == models.VisibilityPublic:
		query = query.Where("level = ?", models.VisibilityPublic)

	case level == models.VisibilityFriends && viewerID != nil:
		query = query.Where("level <= ?", models.VisibilityFriends).
			Where("user_id = ? OR user_id IN (?)", *viewerID, r.friendIDs(*viewerID, false))

	case level == models.VisibilityCloseFriends && viewerID != nil:
		query = query.Where("level <= ?", models.VisibilityCloseFriends).
			Where("user_id = ? OR user_id IN (?)", *viewerID, r.friendIDs(*viewerID, true))

	default:
		return nil, fmt.Errorf("%w: sign in to view this feed", apperr.ErrUnauthorized)
	}

	var posts []models.Post
	err := query.
		Order("created_at DESC, id DESC").
		Limit(FeedPageSize).
		Offset((page - 1) * FeedPageSize).
		Find(&posts).Error
	return posts, err
}

// friendIDs builds the subquery selecting the ids of the viewer's friends,
// optionally restricted to close edges.
func (r *PostRepository) friendIDs(viewerID uint, closeOnly bool) *gorm.DB {
	sub := r.db.Model(&models.Friendship{}).
		Select("CASE WHEN user_a_id = ? THEN user_b_id ELSE user_a_id END", viewerID).
		Where("user_a_id = ? OR user_b_id = ?", viewerID, viewerID)
	if closeOnly {
		sub = sub.Where("is_close = ?", true)
	}
	return sub
}

// AddComment appends a comment to a post and returns it with the author
// preloaded.
func (r *PostRepository) AddComment(ctx context.Context, postID, userID uint, text string) (*models.Comment, error) {
	tx := r.db.WithContext(ctx)

	var post models.Post
	err := tx.Select("id").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: post not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	comment := models.Comment{PostID: postID, UserID: userID, Text: text}
	if err := tx.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := tx.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// CountByUser returns the number of posts authored by the user.
func (r *PostRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
