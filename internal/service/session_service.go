package service

import (
	"context"
	"encoding/json"
	"time"

	"coach_backend/internal/engine"
	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/internal/util"
	"coach_backend/pkg/monitoring"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionService 处理教练会话
type SessionService struct {
	SessionRepo *repository.SessionRepository
	Goals       *GoalService
	Tx          repository.TxRunner
}

func NewSessionService(sessionRepo *repository.SessionRepository, goals *GoalService, tx repository.TxRunner) *SessionService {
	return &SessionService{
		SessionRepo: sessionRepo,
		Goals:       goals,
		Tx:          tx,
	}
}

type CreateSessionRequest struct {
	SessionType    model.SessionType `json:"sessionType" binding:"required"`
	Title          string            `json:"title" binding:"max=255"`
	GoalsDiscussed []string          `json:"goalsDiscussed"`
	MoodBefore     *int              `json:"moodBefore" binding:"omitempty,min=1,max=10"`
}

type UpdateSessionRequest struct {
	Title           *string                     `json:"title" binding:"omitempty,max=255"`
	GoalsDiscussed  *[]string                   `json:"goalsDiscussed"`
	Insights        *[]string                   `json:"insights"`
	ActionItems     *[]string                   `json:"actionItems"`
	MoodBefore      *int                        `json:"moodBefore" binding:"omitempty,min=1,max=10"`
	MoodAfter       *int                        `json:"moodAfter" binding:"omitempty,min=1,max=10"`
	SessionRating   *int                        `json:"sessionRating" binding:"omitempty,min=1,max=5"`
	DurationMinutes *int                        `json:"durationMinutes" binding:"omitempty,min=0"`
	Transcript      *string                     `json:"transcript"`
	AIAnalysis      json.RawMessage             `json:"aiAnalysis"`
	Status          *model.SessionStatus        `json:"status"`
	GoalProgress    []model.SessionGoalProgress `json:"goalProgress" binding:"omitempty,dive"`
}

func (s *SessionService) Create(ctx context.Context, userID uint, req CreateSessionRequest) (*model.CoachingSession, error) {
	if !req.SessionType.Valid() {
		return nil, util.ErrInvalidSession
	}
	session := &model.CoachingSession{
		UserID:         userID,
		SessionType:    req.SessionType,
		Title:          req.Title,
		GoalsDiscussed: datatypes.JSONSlice[string](nonNil(req.GoalsDiscussed)),
		Insights:       datatypes.JSONSlice[string]{},
		ActionItems:    datatypes.JSONSlice[string]{},
		GoalProgress:   datatypes.JSONSlice[model.SessionGoalProgress]{},
		MoodBefore:     req.MoodBefore,
		Status:         model.SessionInProgress,
	}
	if err := s.SessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	s.Goals.invalidate(ctx, userID)
	return session, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func (s *SessionService) owned(ctx context.Context, repo *repository.SessionRepository, userID uint, id string) (*model.CoachingSession, error) {
	session, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *SessionService) Get(ctx context.Context, userID uint, id string) (*model.CoachingSession, error) {
	return s.owned(ctx, s.SessionRepo, userID, id)
}

// Update applies the patch and any goal progress outcomes in one
// transaction. Each outcome is ledgered with the session id.
func (s *SessionService) Update(ctx context.Context, userID uint, id string, req UpdateSessionRequest) (*model.CoachingSession, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, util.ErrInvalidStatus
	}
	if len(req.AIAnalysis) > 0 && !json.Valid(req.AIAnalysis) {
		return nil, util.NewInvalidInput("INVALID_ANALYSIS", "aiAnalysis must be JSON")
	}

	var updated *model.CoachingSession
	err := s.Tx.InTx(ctx, func(tx *gorm.DB) error {
		repo := s.SessionRepo.WithTx(tx)
		session, err := s.owned(ctx, repo, userID, id)
		if err != nil {
			return err
		}

		applySessionPatch(session, req, time.Now())

		for _, gp := range req.GoalProgress {
			if err := s.Goals.ApplyProgress(ctx, tx, userID, gp.GoalID, gp.Progress, &session.ID, gp.Notes); err != nil {
				return err
			}
			session.GoalProgress = append(session.GoalProgress, gp)
		}

		if err := repo.Save(ctx, session); err != nil {
			return err
		}
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n := len(req.GoalProgress); n > 0 {
		monitoring.ProgressUpdates.WithLabelValues("session").Add(float64(n))
	}
	s.Goals.invalidate(ctx, userID)
	return updated, nil
}

func applySessionPatch(session *model.CoachingSession, req UpdateSessionRequest, now time.Time) {
	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.GoalsDiscussed != nil {
		session.GoalsDiscussed = nonNil(*req.GoalsDiscussed)
	}
	if req.Insights != nil {
		session.Insights = nonNil(*req.Insights)
	}
	if req.ActionItems != nil {
		session.ActionItems = nonNil(*req.ActionItems)
	}
	if req.MoodBefore != nil {
		session.MoodBefore = req.MoodBefore
	}
	if req.MoodAfter != nil {
		session.MoodAfter = req.MoodAfter
	}
	if req.SessionRating != nil {
		session.SessionRating = req.SessionRating
	}
	if req.DurationMinutes != nil {
		session.DurationMinutes = *req.DurationMinutes
	}
	if req.Transcript != nil {
		session.Transcript = *req.Transcript
	}
	if len(req.AIAnalysis) > 0 {
		session.AIAnalysis = datatypes.JSON(req.AIAnalysis)
	}
	if req.Status != nil {
		if *req.Status == model.SessionCompleted && session.Status != model.SessionCompleted {
			session.CompletedAt = &now
		}
		session.Status = *req.Status
	}
}

// ListRecent returns the newest sessions. limit defaults to 10 and is capped
// at 100.
func (s *SessionService) ListRecent(ctx context.Context, userID uint, limit int) ([]model.CoachingSession, error) {
	if limit <= 0 {
		limit = util.DefaultSessionLimit
	}
	if limit > util.MaxSessionLimit {
		limit = util.MaxSessionLimit
	}
	return s.SessionRepo.ListRecent(ctx, userID, limit)
}

func (s *SessionService) Stats(ctx context.Context, userID uint) (*model.SessionStats, error) {
	sessions, err := s.SessionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := SessionStatsOf(sessions)
	return &stats, nil
}

// SessionStatsOf summarises sessions. The average rating is taken over
// completed sessions with unrated ones counted as 0.
func SessionStatsOf(sessions []model.CoachingSession) model.SessionStats {
	dist := engine.Distribution(sessions, func(cs model.CoachingSession) string {
		return string(cs.SessionType)
	})
	stats := model.SessionStats{
		Total:            len(sessions),
		TypeDistribution: dist,
		MostCommonType:   model.SessionType(engine.MostCommon(dist)),
	}
	ratingSum := 0
	for _, cs := range sessions {
		if cs.Status != model.SessionCompleted {
			continue
		}
		stats.Completed++
		stats.TotalDuration += cs.DurationMinutes
		if cs.SessionRating != nil {
			ratingSum += *cs.SessionRating
		}
	}
	if stats.Completed > 0 {
		stats.AverageRating = float64(ratingSum) / float64(stats.Completed)
	}
	return stats
}
