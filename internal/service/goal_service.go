package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"coach_backend/internal/engine"
	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/internal/util"
	"coach_backend/pkg/logger"
	"coach_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GoalService 处理目标、子目标与进度的业务逻辑
type GoalService struct {
	GoalRepo     *repository.GoalRepository
	ProgressRepo *repository.ProgressRepository
	SessionRepo  *repository.SessionRepository
	Tx           repository.TxRunner
	Cache        repository.AnalyticsCache
}

func NewGoalService(
	goalRepo *repository.GoalRepository,
	progressRepo *repository.ProgressRepository,
	sessionRepo *repository.SessionRepository,
	tx repository.TxRunner,
	cache repository.AnalyticsCache,
) *GoalService {
	if cache == nil {
		cache = repository.NoopAnalyticsCache{}
	}
	return &GoalService{
		GoalRepo:     goalRepo,
		ProgressRepo: progressRepo,
		SessionRepo:  sessionRepo,
		Tx:           tx,
		Cache:        cache,
	}
}

// CreateGoalRequest 创建目标的请求结构
type CreateGoalRequest struct {
	Title        string             `json:"title" binding:"required,max=255"`
	Description  string             `json:"description" binding:"max=5000"`
	Category     model.GoalCategory `json:"category"`
	Priority     model.GoalPriority `json:"priority"`
	Weight       *float64           `json:"weight"`
	OrderIndex   int                `json:"orderIndex"`
	Deadline     *string            `json:"deadline"`
	ParentGoalID *string            `json:"parentGoalId"`
}

// UpdateGoalRequest 更新目标的请求结构，nil 字段保持不变
type UpdateGoalRequest struct {
	Title       *string             `json:"title" binding:"omitempty,max=255"`
	Description *string             `json:"description" binding:"omitempty,max=5000"`
	Category    *model.GoalCategory `json:"category"`
	Priority    *model.GoalPriority `json:"priority"`
	Weight      *float64            `json:"weight"`
	OrderIndex  *int                `json:"orderIndex"`
	Status      *model.GoalStatus   `json:"status"`
	Deadline    *string             `json:"deadline"`
}

type ProgressUpdateRequest struct {
	Progress  *int    `json:"progress" binding:"required,min=0,max=100"`
	SessionID *string `json:"sessionId"`
	Notes     string  `json:"notes" binding:"max=2000"`
}

// SubGoalDraft is one item of a batch sub goal creation.
type SubGoalDraft struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Weight      *float64 `json:"weight"`
	Deadline    *string  `json:"deadline"`
	OrderIndex  int      `json:"orderIndex"`
}

func parseDeadline(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(*s)
	for _, layout := range []string{util.DateFormat, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, util.NewInvalidInput("INVALID_DEADLINE", "deadline must be YYYY-MM-DD or RFC 3339")
}

func weightOrDefault(w *float64) (float64, error) {
	if w == nil {
		return 1, nil
	}
	if err := engine.ValidateWeight(*w); err != nil {
		return 0, util.ErrInvalidWeight
	}
	return *w, nil
}

func (s *GoalService) invalidate(ctx context.Context, userID uint) {
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		logger.Log.Warn("analytics cache invalidation failed", zap.Uint("userID", userID), zap.Error(err))
	}
}

// owned loads a goal and rejects callers that do not own it.
func owned(ctx context.Context, repo *repository.GoalRepository, userID uint, goalID string) (*model.Goal, error) {
	goal, err := repo.FindByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return goal, nil
}

func withAggregate(g *model.Goal) *model.Goal {
	if g.IsMain() {
		agg := engine.AggregateGoal(g)
		g.AggregatedProgress = &agg
	}
	return g
}

func (s *GoalService) Create(ctx context.Context, userID uint, req CreateGoalRequest) (*model.Goal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.NewInvalidInput("TITLE_REQUIRED", "title is required")
	}
	if !req.Category.Valid() {
		return nil, util.ErrInvalidCategory
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, util.ErrInvalidPriority
	}
	weight, err := weightOrDefault(req.Weight)
	if err != nil {
		return nil, err
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	goal := &model.Goal{
		UserID:         userID,
		Title:          title,
		Description:    req.Description,
		Category:       req.Category,
		Priority:       priority,
		GoalType:       model.GoalTypeMain,
		Weight:         weight,
		OrderIndex:     req.OrderIndex,
		Status:         model.GoalActive,
		ProgressStatus: model.ProgressNotStarted,
		Deadline:       deadline,
	}

	if req.ParentGoalID != nil && *req.ParentGoalID != "" {
		parent, err := s.parentFor(ctx, s.GoalRepo, userID, *req.ParentGoalID)
		if err != nil {
			return nil, err
		}
		goal.ParentGoalID = &parent.ID
		goal.GoalType = model.GoalTypeSub
	}

	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		logger.Log.Error("create goal failed", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	s.invalidate(ctx, userID)
	return goal, nil
}

// parentFor resolves a parent goal a new sub goal may attach to.
func (s *GoalService) parentFor(ctx context.Context, repo *repository.GoalRepository, userID uint, parentID string) (*model.Goal, error) {
	parent, err := owned(ctx, repo, userID, parentID)
	if errors.Is(err, util.ErrGoalNotFound) {
		return nil, util.ErrParentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !parent.IsMain() || parent.GoalType != model.GoalTypeMain {
		return nil, util.ErrParentNotMain
	}
	return parent, nil
}

// List returns the user's main goals with their sub goals and rollup.
func (s *GoalService) List(ctx context.Context, userID uint) ([]model.Goal, error) {
	goals, err := s.GoalRepo.ListMainByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		withAggregate(&goals[i])
	}
	return goals, nil
}

func (s *GoalService) Get(ctx context.Context, userID uint, goalID string) (*model.Goal, error) {
	goal, err := s.GoalRepo.FindWithSubGoals(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return withAggregate(goal), nil
}

func (s *GoalService) SubGoals(ctx context.Context, userID uint, goalID string) ([]model.Goal, error) {
	if _, err := owned(ctx, s.GoalRepo, userID, goalID); err != nil {
		return nil, err
	}
	return s.GoalRepo.ListSubGoals(ctx, goalID)
}

func (s *GoalService) Update(ctx context.Context, userID uint, goalID string, req UpdateGoalRequest) (*model.Goal, error) {
	if _, err := owned(ctx, s.GoalRepo, userID, goalID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, util.NewInvalidInput("TITLE_REQUIRED", "title is required")
		}
		fields["title"] = title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, util.ErrInvalidCategory
		}
		fields["category"] = *req.Category
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, util.ErrInvalidPriority
		}
		fields["priority"] = *req.Priority
	}
	if req.Weight != nil {
		if err := engine.ValidateWeight(*req.Weight); err != nil {
			return nil, util.ErrInvalidWeight
		}
		fields["weight"] = *req.Weight
	}
	if req.OrderIndex != nil {
		fields["order_index"] = *req.OrderIndex
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, util.ErrInvalidStatus
		}
		fields["status"] = *req.Status
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			return nil, err
		}
		fields["deadline"] = deadline
	}

	if len(fields) > 0 {
		if err := s.GoalRepo.UpdateFields(ctx, goalID, fields); err != nil {
			return nil, err
		}
		s.invalidate(ctx, userID)
	}
	return s.Get(ctx, userID, goalID)
}

// UpdateProgress sets a goal's own progress and appends the matching ledger
// row in one transaction.
func (s *GoalService) UpdateProgress(ctx context.Context, userID uint, goalID string, req ProgressUpdateRequest) (*model.Goal, error) {
	if req.Progress == nil {
		return nil, util.NewInvalidInput("PROGRESS_REQUIRED", "progress is required")
	}
	if req.SessionID != nil && *req.SessionID != "" {
		session, err := s.SessionRepo.FindByID(ctx, *req.SessionID)
		if err != nil {
			return nil, err
		}
		if session.UserID != userID {
			return nil, util.ErrPermissionDenied
		}
	} else {
		req.SessionID = nil
	}

	err := s.Tx.InTx(ctx, func(tx *gorm.DB) error {
		return s.ApplyProgress(ctx, tx, userID, goalID, *req.Progress, req.SessionID, req.Notes)
	})
	if err != nil {
		return nil, err
	}
	monitoring.ProgressUpdates.WithLabelValues(progressSource(req.SessionID)).Inc()
	s.invalidate(ctx, userID)
	return s.Get(ctx, userID, goalID)
}

func progressSource(sessionID *string) string {
	if sessionID != nil {
		return "session"
	}
	return "manual"
}

// ApplyProgress writes progress, both statuses and a ledger row using tx.
// Callers own the transaction.
func (s *GoalService) ApplyProgress(ctx context.Context, tx *gorm.DB, userID uint, goalID string, progress int, sessionID *string, notes string) error {
	if progress < 0 || progress > 100 {
		return util.NewInvalidInput("INVALID_PROGRESS", "progress must be between 0 and 100")
	}
	goals := s.GoalRepo.WithTx(tx)
	goal, err := owned(ctx, goals, userID, goalID)
	if err != nil {
		return err
	}

	err = goals.UpdateFields(ctx, goalID, map[string]interface{}{
		"progress":        progress,
		"progress_status": engine.DeriveStatus(progress),
		"status":          engine.NextStatus(goal.Status, progress),
	})
	if err != nil {
		return err
	}

	return s.ProgressRepo.WithTx(tx).Append(ctx, &model.ProgressTracking{
		UserID:           userID,
		GoalID:           goalID,
		PreviousProgress: goal.Progress,
		NewProgress:      progress,
		ProgressDelta:    progress - goal.Progress,
		SessionID:        sessionID,
		Notes:            notes,
	})
}

// Rollup writes the aggregated sub goal progress back to a main goal.
func (s *GoalService) Rollup(ctx context.Context, userID uint, goalID string) (*model.Goal, error) {
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.IsMain() {
		return nil, util.NewInvalidInput("NOT_MAIN_GOAL", "only main goals can be rolled up")
	}
	progress := engine.AggregateGoal(goal)
	return s.UpdateProgress(ctx, userID, goalID, ProgressUpdateRequest{
		Progress: &progress,
		Notes:    "rollup from sub goals",
	})
}

// Delete removes a goal; a main goal takes its sub goals with it.
func (s *GoalService) Delete(ctx context.Context, userID uint, goalID string) error {
	goal, err := owned(ctx, s.GoalRepo, userID, goalID)
	if err != nil {
		return err
	}
	err = s.Tx.InTx(ctx, func(tx *gorm.DB) error {
		goals := s.GoalRepo.WithTx(tx)
		if goal.IsMain() {
			if err := goals.DeleteSubGoals(ctx, goalID); err != nil {
				return err
			}
		}
		return goals.Delete(ctx, goalID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// CreateSubGoals batch-inserts sub goals under a main goal. Either every
// draft is stored or none is.
func (s *GoalService) CreateSubGoals(ctx context.Context, userID uint, parentID string, drafts []SubGoalDraft) ([]model.Goal, error) {
	if len(drafts) == 0 {
		return nil, util.NewInvalidInput("NO_SUB_GOALS", "at least one sub goal is required")
	}
	parent, err := s.parentFor(ctx, s.GoalRepo, userID, parentID)
	if err != nil {
		return nil, err
	}

	// 先校验全部条目，任何一个不合法都不写入
	goals := make([]model.Goal, 0, len(drafts))
	for _, d := range drafts {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			return nil, util.NewInvalidInput("TITLE_REQUIRED", "every sub goal needs a title")
		}
		weight, err := weightOrDefault(d.Weight)
		if err != nil {
			return nil, err
		}
		deadline, err := parseDeadline(d.Deadline)
		if err != nil {
			return nil, err
		}
		parentRef := parent.ID
		goals = append(goals, model.Goal{
			UserID:         parent.UserID,
			ParentGoalID:   &parentRef,
			Title:          title,
			Description:    d.Description,
			Category:       parent.Category,
			Priority:       model.PriorityMedium,
			GoalType:       model.GoalTypeSub,
			Progress:       0,
			Weight:         weight,
			OrderIndex:     d.OrderIndex,
			Status:         model.GoalActive,
			ProgressStatus: model.ProgressNotStarted,
			Deadline:       deadline,
		})
	}

	err = s.Tx.InTx(ctx, func(tx *gorm.DB) error {
		repo := s.GoalRepo.WithTx(tx)
		for i := range goals {
			if err := repo.Create(ctx, &goals[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Log.Error("create sub goals failed",
			zap.String("parentGoalID", parentID),
			zap.Int("count", len(goals)),
			zap.Error(err))
		return nil, err
	}

	monitoring.SubGoalsCreated.Add(float64(len(goals)))
	s.invalidate(ctx, userID)
	return goals, nil
}

func (s *GoalService) Stats(ctx context.Context, userID uint) (*model.GoalStats, error) {
	goals, err := s.GoalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := GoalStatsOf(goals)
	return &stats, nil
}

// GoalStatsOf summarises goals of every level.
func GoalStatsOf(goals []model.Goal) model.GoalStats {
	stats := model.GoalStats{
		Total:           len(goals),
		AverageProgress: engine.MeanProgress(goals),
		CategoryDistribution: engine.Distribution(goals, func(g model.Goal) string {
			return string(g.Category)
		}),
	}
	for _, g := range goals {
		switch g.Status {
		case model.GoalActive:
			stats.Active++
		case model.GoalCompleted:
			stats.Completed++
		}
	}
	return stats
}

// History returns the goal's ledger, oldest first.
func (s *GoalService) History(ctx context.Context, userID uint, goalID string) ([]model.ProgressTracking, error) {
	if _, err := owned(ctx, s.GoalRepo, userID, goalID); err != nil {
		return nil, err
	}
	return s.ProgressRepo.ListByGoal(ctx, goalID)
}
