package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"coach_backend/internal/config"
	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.JWTConfig
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.JWTConfig) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.UserRepo.FindByEmail(ctx, email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashedPassword),
		Timezone: "UTC",
		Language: "en",
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login returns a signed token for valid credentials. Unknown emails and bad
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return "", nil, util.ErrInvalidLogin
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidLogin
	}

	token, err := util.GenerateJWT(user, s.Cfg.Secret, s.Cfg.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	user.LastLogin = &now
	_ = s.UserRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"last_login": now})
	return token, user, nil
}
