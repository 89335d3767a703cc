package repository

import (
	"context"

	"coach_backend/internal/model"
	"coach_backend/internal/util"

	"gorm.io/gorm"
)

// GoalRepository 处理目标的数据访问
type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

// WithTx returns a repository bound to tx.
func (r *GoalRepository) WithTx(tx *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: tx}
}

func orderedSubGoals(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, created_at ASC")
}

func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return translate(r.DB.WithContext(ctx).Omit("SubGoals").Create(goal).Error, nil)
}

func (r *GoalRepository) FindByID(ctx context.Context, id string) (*model.Goal, error) {
	var goal model.Goal
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&goal).Error; err != nil {
		return nil, translate(err, util.ErrGoalNotFound)
	}
	return &goal, nil
}

// FindWithSubGoals loads a goal and its children ordered by orderIndex.
func (r *GoalRepository) FindWithSubGoals(ctx context.Context, id string) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.WithContext(ctx).
		Preload("SubGoals", orderedSubGoals).
		Where("id = ?", id).
		First(&goal).Error
	if err != nil {
		return nil, translate(err, util.ErrGoalNotFound)
	}
	return &goal, nil
}

// ListMainByUser returns the user's main goals, newest first, with sub goals.
func (r *GoalRepository) ListMainByUser(ctx context.Context, userID uint) ([]model.Goal, error) {
	var goals []model.Goal
	err := r.DB.WithContext(ctx).
		Preload("SubGoals", orderedSubGoals).
		Where("user_id = ? AND parent_goal_id IS NULL", userID).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, translate(err, nil)
}

// ListByUser returns every goal the user owns regardless of level.
func (r *GoalRepository) ListByUser(ctx context.Context, userID uint) ([]model.Goal, error) {
	var goals []model.Goal
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&goals).Error
	return goals, translate(err, nil)
}

func (r *GoalRepository) ListSubGoals(ctx context.Context, parentID string) ([]model.Goal, error) {
	var goals []model.Goal
	err := orderedSubGoals(r.DB.WithContext(ctx)).
		Where("parent_goal_id = ?", parentID).
		Find(&goals).Error
	return goals, translate(err, nil)
}

func (r *GoalRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.DB.WithContext(ctx).Model(&model.Goal{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return util.ErrGoalNotFound
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Goal{})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return util.ErrGoalNotFound
	}
	return nil
}

func (r *GoalRepository) DeleteSubGoals(ctx context.Context, parentID string) error {
	return translate(r.DB.WithContext(ctx).Where("parent_goal_id = ?", parentID).Delete(&model.Goal{}).Error, nil)
}
