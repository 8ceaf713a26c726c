package repository

import (
	"context"
	"onlinecourse_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", at).Error
}

func (r *UserRepository) CreateLearner(ctx context.Context, learner *model.Learner) error {
	return r.DB.WithContext(ctx).Create(learner).Error
}

func (r *UserRepository) FindLearnerByUser(ctx context.Context, userID uint) (*model.Learner, error) {
	var learner model.Learner
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id desc").First(&learner).Error
	if err != nil {
		return nil, err
	}
	return &learner, nil
}
