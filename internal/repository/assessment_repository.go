package repository

import (
	"context"
	"time"

	"coach_backend/internal/model"
	"coach_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) ListActiveTemplates(ctx context.Context) ([]model.AssessmentTemplate, error) {
	var templates []model.AssessmentTemplate
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&templates).Error
	return templates, translate(err, nil)
}

func (r *AssessmentRepository) FindActiveTemplate(ctx context.Context, id string) (*model.AssessmentTemplate, error) {
	var t model.AssessmentTemplate
	err := r.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&t).Error
	if err != nil {
		return nil, translate(err, util.ErrTemplateNotFound)
	}
	return &t, nil
}

func (r *AssessmentRepository) Create(ctx context.Context, a *model.Assessment) error {
	return translate(r.DB.WithContext(ctx).Create(a).Error, nil)
}

func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, translate(err, util.ErrAssessmentMissing)
	}
	return &a, nil
}

func (r *AssessmentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Assessment, error) {
	var list []model.Assessment
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, translate(err, nil)
}

type Submission struct {
	Answers     datatypes.JSON
	Score       int
	Results     datatypes.JSON
	CompletedAt time.Time
}

// Submit writes the submission in one conditional update. It returns
// ErrAlreadySubmitted when the row was completed before this call.
func (r *AssessmentRepository) Submit(ctx context.Context, id string, userID uint, s Submission) error {
	res := r.DB.WithContext(ctx).
		Model(&model.Assessment{}).
		Where("id = ? AND user_id = ? AND completed_at IS NULL", id, userID).
		Updates(map[string]interface{}{
			"answers":      s.Answers,
			"score":        s.Score,
			"results":      s.Results,
			"completed_at": s.CompletedAt,
		})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return util.ErrAlreadySubmitted
	}
	return nil
}
