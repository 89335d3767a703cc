package service

import (
	"testing"

	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/internal/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	goals      *GoalService
	sessions   *SessionService
	assessment *AssessmentService
	analytics  *AnalyticsService
	user       *model.User
	other      *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)

	goalRepo := repository.NewGoalRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	tx := repository.NewTxRunner(db)

	goals := NewGoalService(goalRepo, progressRepo, sessionRepo, tx, nil)
	return &fixture{
		db:         db,
		goals:      goals,
		sessions:   NewSessionService(sessionRepo, goals, tx),
		assessment: NewAssessmentService(repository.NewAssessmentRepository(db)),
		analytics:  NewAnalyticsService(goalRepo, sessionRepo, progressRepo, nil),
		user:       testutil.SeedUser(t, db, "owner@example.com"),
		other:      testutil.SeedUser(t, db, "other@example.com"),
	}
}

func ptr[T any](v T) *T { return &v }
