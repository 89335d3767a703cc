package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/internal/util"
)

// UserService 处理用户资料相关的业务逻辑
type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Storage:  storage,
	}
}

type ProfileUpdate struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	Timezone *string `json:"timezone" binding:"omitempty,max=64"`
	Language *string `json:"language" binding:"omitempty,max=10"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*model.User, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Bio != nil {
		fields["bio"] = *in.Bio
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return nil, util.NewInvalidInput("INVALID_TIMEZONE", "unknown timezone")
		}
		fields["timezone"] = *in.Timezone
	}
	if in.Language != nil {
		fields["language"] = *in.Language
	}
	if len(fields) > 0 {
		if err := s.UserRepo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.UserRepo.FindByID(ctx, userID)
}

// UploadAvatar stores an image and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename string, r io.Reader, size int64) (*model.User, error) {
	if size > util.MaxAvatarSize {
		return nil, util.NewInvalidInput("AVATAR_TOO_LARGE", "avatar must be 5MB or smaller")
	}
	br := bufio.NewReaderSize(r, 512)
	head, _ := br.Peek(512)
	mimeType, err := util.ValidateMimeType(bytes.NewReader(head), []string{util.MimeImage})
	if err != nil {
		return nil, util.NewInvalidInput("INVALID_AVATAR", "avatar must be an image")
	}

	key := fmt.Sprintf("%s/%d/%s%s", util.AvatarDirectory, userID, model.GenerateUUID(), strings.ToLower(path.Ext(filename)))
	url, err := s.Storage.Upload(ctx, key, br, size, mimeType)
	if err != nil {
		return nil, util.NewPersistence(err)
	}
	if err := s.UserRepo.UpdateFields(ctx, userID, map[string]interface{}{"avatar_url": url}); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(ctx, userID)
}
