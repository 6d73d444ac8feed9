package repository

import (
	"context"
	"errors"
	"fmt"

	"voidspace/backend/internal/apperr"
	"voidspace/backend/internal/models"

	"gorm.io/gorm"
)

// UserRepository owns the identity store.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user after checking email/username uniqueness.
func (r *UserRepository) Create(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	tx := r.db.WithContext(ctx)

	var existing models.User
	err := tx.Where("email = ? OR username = ?", email, username).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: email or username already taken", apperr.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns the user with the given username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns the user with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies a partial profile update. Column names follow the schema
// (bio, username, email, password_hash, profile_pic).
func (r *UserRepository) Update(ctx context.Context, userID uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: nothing to update", apperr.ErrBadRequest)
	}

	tx := r.db.WithContext(ctx)

	// Uniqueness has to be checked against other rows before writing.
	if username, ok := updates["username"].(string); ok {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", username, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: username already taken", apperr.ErrConflict)
		}
	}
	if email, ok := updates["email"].(string); ok {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: email already taken", apperr.ErrConflict)
		}
	}

	res := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	return nil
}
