package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coach_backend/internal/engine"
	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/internal/util"
	"coach_backend/pkg/logger"
	"coach_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type AssessmentService struct {
	Repo *repository.AssessmentRepository
}

func NewAssessmentService(repo *repository.AssessmentRepository) *AssessmentService {
	return &AssessmentService{Repo: repo}
}

type SubmitAssessmentRequest struct {
	Answers model.Answers `json:"answers" binding:"required"`
}

func (s *AssessmentService) Templates(ctx context.Context) ([]model.AssessmentTemplate, error) {
	return s.Repo.ListActiveTemplates(ctx)
}

// Start copies an active template's questions into a new assessment owned
// by userID.
func (s *AssessmentService) Start(ctx context.Context, userID uint, templateID string) (*model.Assessment, error) {
	tmpl, err := s.Repo.FindActiveTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	for _, q := range tmpl.Questions {
		if err := q.Validate(); err != nil {
			logger.Log.Error("template has an invalid question",
				zap.String("templateID", tmpl.ID), zap.Error(err))
			return nil, util.NewPersistence(err)
		}
	}

	questions := make([]model.Question, len(tmpl.Questions))
	copy(questions, tmpl.Questions)
	a := &model.Assessment{
		UserID:     userID,
		TemplateID: tmpl.ID,
		Title:      tmpl.Title,
		Type:       tmpl.Type,
		Questions:  questions,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) List(ctx context.Context, userID uint) ([]model.Assessment, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *AssessmentService) Get(ctx context.Context, userID uint, id string) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

// ValidateAnswers checks every answer against its question. Questions left
// unanswered are allowed.
func ValidateAnswers(a *model.Assessment, answers model.Answers) error {
	for id, v := range answers {
		q, ok := a.FindQuestion(id)
		if !ok {
			return util.InvalidAnswer(fmt.Errorf("unknown question %q", id))
		}
		if err := q.Accepts(v); err != nil {
			return util.InvalidAnswer(err)
		}
	}
	return nil
}

// Submit scores the answers and stores answers, score, results and the
// completion time together. A second submit is rejected.
func (s *AssessmentService) Submit(ctx context.Context, userID uint, id string, answers model.Answers) (*model.Assessment, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if a.Completed() {
		return nil, util.ErrAlreadySubmitted
	}
	if answers == nil {
		answers = model.Answers{}
	}
	if err := ValidateAnswers(a, answers); err != nil {
		return nil, err
	}

	results := engine.Results(answers)
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	err = s.Repo.Submit(ctx, id, userID, repository.Submission{
		Answers:     datatypes.JSON(answersJSON),
		Score:       results.Score,
		Results:     datatypes.JSON(resultsJSON),
		CompletedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	monitoring.AssessmentsSubmitted.WithLabelValues(results.Level).Inc()
	return s.Repo.FindByID(ctx, id)
}
