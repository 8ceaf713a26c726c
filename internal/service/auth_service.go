package service

import (
	"context"
	"errors"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/util"
	"onlinecourse_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo  *repository.UserRepository
	Blacklist TokenBlacklist
	Cfg       *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, blacklist TokenBlacklist, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:  userRepo,
		Blacklist: blacklist,
		Cfg:       cfg,
	}
}

type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=150"`
	Password   string `json:"password" binding:"required,min=8"`
	FirstName  string `json:"firstName" binding:"max=150"`
	LastName   string `json:"lastName" binding:"max=150"`
	Occupation string `json:"occupation" binding:"omitempty,oneof=student developer data_scientist dba"`
	SocialLink string `json:"socialLink" binding:"omitempty,url,max=200"`
}

// Register 注册学员账号，同时创建学员档案
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	_, err := s.UserRepo.FindByUsername(ctx, req.Username)
	if err == nil {
		return nil, util.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
		Role:      model.RoleLearner,
	}

	occupation := model.Occupation(req.Occupation)
	if !occupation.Valid() {
		occupation = model.OccupationStudent
	}

	err = s.UserRepo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.Learner{
			UserID:     user.ID,
			Occupation: occupation,
			SocialLink: req.SocialLink,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint("userId", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Log.Warn("update last login failed", zap.Uint("userId", user.ID), zap.Error(err))
	}
	return token, user, nil
}

// Logout 将令牌加入黑名单直至过期
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.Blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type Profile struct {
	User    *model.User    `json:"user"`
	Learner *model.Learner `json:"learner,omitempty"`
}

func (s *AuthService) GetProfile(ctx context.Context, id uint) (*Profile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user}
	learner, err := s.UserRepo.FindLearnerByUser(ctx, id)
	if err == nil {
		profile.Learner = learner
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return profile, nil
}
