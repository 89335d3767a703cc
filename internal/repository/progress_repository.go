package repository

import (
	"context"

	"coach_backend/internal/model"

	"gorm.io/gorm"
)

// ProgressRepository appends to and reads the progress ledger.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) Append(ctx context.Context, rec *model.ProgressTracking) error {
	return translate(r.DB.WithContext(ctx).Create(rec).Error, nil)
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID uint) ([]model.ProgressTracking, error) {
	var recs []model.ProgressTracking
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&recs).Error
	return recs, translate(err, nil)
}

func (r *ProgressRepository) ListByGoal(ctx context.Context, goalID string) ([]model.ProgressTracking, error) {
	var recs []model.ProgressTracking
	err := r.DB.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("created_at ASC, id ASC").
		Find(&recs).Error
	return recs, translate(err, nil)
}
