package database_test

import (
	"testing"

	"coach_backend/internal/config"
	"coach_backend/internal/model"
	"coach_backend/internal/testutil"
	"coach_backend/pkg/database"
)

func TestSeedTemplatesIdempotent(t *testing.T) {
	db := testutil.DB(t)

	for i := 0; i < 2; i++ {
		if err := database.SeedTemplates(db); err != nil {
			t.Fatalf("SeedTemplates() run %d error = %v", i+1, err)
		}
	}

	var count int64
	db.Model(&model.AssessmentTemplate{}).Count(&count)
	if int(count) != len(database.DefaultTemplates()) {
		t.Fatalf("templates = %d, want %d", count, len(database.DefaultTemplates()))
	}
}

func TestDefaultTemplatesAreWellFormed(t *testing.T) {
	for _, tpl := range database.DefaultTemplates() {
		if !tpl.IsActive || tpl.Title == "" || len(tpl.Questions) == 0 {
			t.Fatalf("template %q incomplete", tpl.Title)
		}
		seen := map[string]bool{}
		for _, q := range tpl.Questions {
			if seen[q.ID] {
				t.Fatalf("template %q repeats question %s", tpl.Title, q.ID)
			}
			seen[q.ID] = true
			switch q.Type {
			case model.QuestionScale:
				if q.Scale == nil || q.Scale.Max <= 0 {
					t.Fatalf("question %s has no scale", q.ID)
				}
			case model.QuestionMultipleChoice:
				if len(q.Options) == 0 {
					t.Fatalf("question %s has no options", q.ID)
				}
			}
		}
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "oracle"}
	if _, err := database.Dialector(&cfg); err == nil {
		t.Fatal("Dialector() accepted unknown driver")
	}
}
