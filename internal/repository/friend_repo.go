package repository

import (
	"context"
	"errors"
	"fmt"

	"voidspace/backend/internal/apperr"
	"voidspace/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository owns the friendship graph and the pending request queue.
//
// Friendship edges are undirected and stored canonically (smaller id in the
// first slot), so every lookup goes through models.CanonicalPair. A plain
// friend request produces a new edge on accept; a close request upgrades an
// existing edge in place. Accept and decline both consume the request row,
// inside a single transaction with the edge mutation.
type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// Friend is one entry of a user's friend list.
type Friend struct {
	User    models.User
	IsClose bool
}

// Edge returns the friendship row for the unordered pair (a,b), or
// gorm.ErrRecordNotFound.
func (r *FriendRepository) Edge(ctx context.Context, a, b uint) (*models.Friendship, error) {
	ua, ub := models.CanonicalPair(a, b)
	var edge models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", ua, ub).
		First(&edge).Error
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// SendRequest creates a pending request from fromID to the named user.
//
// A friend-kind request is rejected when the pair already has an edge; a
// close-kind request requires one, since it proposes an upgrade rather than
// a new edge.
func (r *FriendRepository) SendRequest(ctx context.Context, fromID uint, toUsername string, kind models.RequestKind) error {
	tx := r.db.WithContext(ctx)

	var target models.User
	err := tx.Where("username = ?", toUsername).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if target.ID == fromID {
		return fmt.Errorf("%w: cannot add yourself", apperr.ErrBadRequest)
	}

	_, err = r.Edge(ctx, fromID, target.ID)
	switch {
	case err == nil && kind != models.RequestKindClose:
		return fmt.Errorf("%w: already friends", apperr.ErrConflict)
	case errors.Is(err, gorm.ErrRecordNotFound) && kind == models.RequestKindClose:
		return fmt.Errorf("%w: not friends yet", apperr.ErrConflict)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	var count int64
	err = tx.Model(&models.FriendRequest{}).
		Where("from_id = ? AND to_id = ? AND kind = ?", fromID, target.ID, kind).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: request already sent", apperr.ErrConflict)
	}

	req := models.FriendRequest{FromID: fromID, ToID: target.ID, Kind: kind}
	return tx.Create(&req).Error
}

// ListIncoming returns pending requests targeting the user, newest first,
// with sender preloaded.
func (r *FriendRepository) ListIncoming(ctx context.Context, toID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("From").
		Where("to_id = ?", toID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

// Resolve consumes the pending request with the given id, which must target
// actorID. On accept, a friend-kind request creates the edge (idempotently,
// in case a reverse request won a race) and a close-kind request upgrades
// the existing edge. Consuming the request and mutating the edge happen in
// one transaction, so a close upgrade with no edge to upgrade rolls back
// entirely and surfaces as a conflict.
func (r *FriendRepository) Resolve(ctx context.Context, requestID, actorID uint, accept bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.FriendRequest
		err := tx.Where("id = ? AND to_id = ?", requestID, actorID).First(&req).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: request not found", apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		if accept {
			ua, ub := models.CanonicalPair(req.FromID, req.ToID)

			if req.Kind == models.RequestKindClose {
				res := tx.Model(&models.Friendship{}).
					Where("user_a_id = ? AND user_b_id = ?", ua, ub).
					Update("is_close", true)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: no friendship to upgrade", apperr.ErrConflict)
				}
			} else {
				edge := models.Friendship{UserAID: ua, UserBID: ub}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
					DoNothing: true,
				}).Create(&edge).Error
				if err != nil {
					return err
				}
			}
		}

		return tx.Delete(&models.FriendRequest{}, req.ID).Error
	})
}

// ListFriends returns every friend of the user together with the close flag
// of the connecting edge.
func (r *FriendRepository) ListFriends(ctx context.Context, userID uint) ([]Friend, error) {
	var edges []models.Friendship
	err := r.db.WithContext(ctx).
		Preload("UserA").
		Preload("UserB").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	friends := make([]Friend, 0, len(edges))
	for _, e := range edges {
		other := e.UserA
		if e.UserAID == userID {
			other = e.UserB
		}
		if other.ID == 0 {
			continue
		}
		friends = append(friends, Friend{User: other, IsClose: e.IsClose})
	}
	return friends, nil
}

// CountFriends returns the number of edges the user participates in.
func (r *FriendRepository) CountFriends(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}
