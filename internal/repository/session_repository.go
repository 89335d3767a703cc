package repository

import (
	"context"

	"coach_backend/internal/model"
	"coach_backend/internal/util"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: tx}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.CoachingSession) error {
	return translate(r.DB.WithContext(ctx).Create(session).Error, nil)
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*model.CoachingSession, error) {
	var session model.CoachingSession
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translate(err, util.ErrSessionNotFound)
	}
	return &session, nil
}

// Save writes every column of session.
func (r *SessionRepository) Save(ctx context.Context, session *model.CoachingSession) error {
	return translate(r.DB.WithContext(ctx).Save(session).Error, nil)
}

func (r *SessionRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.CoachingSession, error) {
	var sessions []model.CoachingSession
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, translate(err, nil)
}

// ListByUser returns all sessions oldest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uint) ([]model.CoachingSession, error) {
	var sessions []model.CoachingSession
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&sessions).Error
	return sessions, translate(err, nil)
}
