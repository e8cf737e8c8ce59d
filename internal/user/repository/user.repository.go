package repository

import (
	"context"
	"errors"

	"beleske/pkg/logger"
	"beleske/store"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *store.User) error {
	err := r.DB.WithContext(ctx).Create(user).Error
	if err != nil {
		logger.Sugar.Errorf("Failed to create user %s: %v", user.Username, err)
	}
	return store.Classify(err)
}

// GetByUsername looks a user up by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	var user store.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Sugar.Errorf("Failed to get user %s: %v", username, err)
		}
		return nil, store.Classify(err)
	}
	return &user, nil
}

func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&store.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		logger.Sugar.Errorf("Failed to check username %s: %v", username, err)
		return false, store.Classify(err)
	}
	return count > 0, nil
}
