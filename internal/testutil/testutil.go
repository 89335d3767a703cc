// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"coach_backend/internal/model"
	"coach_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB returns a migrated database in a temp directory that is removed when
// the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "coach_test.db")
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "sqlite",
		DSN:        database.SQLiteDSN(path),
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(database.Models()...); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, email string) *model.User {
	tb.Helper()
	u := &model.User{Name: "Test User", Email: email, Password: "x"}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedGoal(tb testing.TB, db *gorm.DB, g *model.Goal) *model.Goal {
	tb.Helper()
	if g.GoalType == "" {
		g.GoalType = model.GoalTypeMain
		if g.ParentGoalID != nil {
			g.GoalType = model.GoalTypeSub
		}
	}
	if g.Status == "" {
		g.Status = model.GoalActive
	}
	if g.Weight == 0 {
		g.Weight = 1
	}
	if err := db.Omit("SubGoals").Create(g).Error; err != nil {
		tb.Fatalf("seed goal: %v", err)
	}
	return g
}

func SeedTemplates(tb testing.TB, db *gorm.DB) []model.AssessmentTemplate {
	tb.Helper()
	if err := database.SeedTemplates(db); err != nil {
		tb.Fatalf("seed templates: %v", err)
	}
	var out []model.AssessmentTemplate
	if err := db.Order("created_at ASC").Find(&out).Error; err != nil {
		tb.Fatalf("load templates: %v", err)
	}
	return out
}
