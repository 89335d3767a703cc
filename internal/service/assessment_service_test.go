package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coach_backend/internal/model"
	"coach_backend/internal/testutil"
	"coach_backend/internal/util"
)

func startEmotional(t *testing.T, f *fixture) *model.Assessment {
	t.Helper()
	var templateID string
	for _, tmpl := range testutil.SeedTemplates(t, f.db) {
		if tmpl.Type == model.AssessmentEmotional {
			templateID = tmpl.ID
		}
	}
	if templateID == "" {
		t.Fatal("emotional template not seeded")
	}
	a, err := f.assessment.Start(context.Background(), f.user.ID, templateID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return a
}

func TestStartCopiesTemplateQuestions(t *testing.T) {
	f := newFixture(t)
	a := startEmotional(t, f)
	if a.Completed() || a.Score != nil {
		t.Fatalf("new assessment already scored: %+v", a)
	}
	if len(a.Questions) != 4 || a.Questions[0].ID != "ei-1" {
		t.Fatalf("questions = %+v", a.Questions)
	}

	if _, err := f.assessment.Start(context.Background(), f.user.ID, "missing"); !errors.Is(err, util.ErrTemplateNotFound) {
		t.Fatalf("Start(missing) error = %v", err)
	}
}

func TestSubmitScoresAndRejectsSecondSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := startEmotional(t, f)

	got, err := f.assessment.Submit(ctx, f.user.ID, a.ID, model.Answers{
		"ei-1": model.NumberAnswer(5),
		"ei-2": model.NumberAnswer(3),
		"ei-4": model.ChoiceAnswer("Exercise"),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.Score == nil || *got.Score != 80 || got.CompletedAt == nil {
		t.Fatalf("submitted = score %v completedAt %v", got.Score, got.CompletedAt)
	}
	results, err := got.DecodeResults()
	if err != nil || results == nil {
		t.Fatalf("DecodeResults() = %v, %v", results, err)
	}
	if results.Level != "High" || results.Score != 80 || len(results.Recommendations) == 0 {
		t.Fatalf("results = %+v", results)
	}
	answers, err := got.DecodeAnswers()
	if err != nil || len(answers) != 3 {
		t.Fatalf("DecodeAnswers() = %v, %v", answers, err)
	}

	_, err = f.assessment.Submit(ctx, f.user.ID, a.ID, model.Answers{"ei-1": model.NumberAnswer(1)})
	if !errors.Is(err, util.ErrAlreadySubmitted) {
		t.Fatalf("second Submit() error = %v, want already submitted", err)
	}
	reloaded, _ := f.assessment.Get(ctx, f.user.ID, a.ID)
	if *reloaded.Score != 80 {
		t.Fatalf("second submit overwrote score: %d", *reloaded.Score)
	}
}

func TestConcurrentSubmitsStoreOneResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := startEmotional(t, f)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.assessment.Submit(ctx, f.user.ID, a.ID, model.Answers{"ei-1": model.NumberAnswer(float64(i + 1))})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, util.ErrAlreadySubmitted):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("%d submits succeeded, want exactly 1", ok)
	}
}

func TestSubmitValidatesAnswers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := startEmotional(t, f)

	tests := []struct {
		name    string
		answers model.Answers
	}{
		{"unknown question", model.Answers{"zz-9": model.NumberAnswer(3)}},
		{"scale above max", model.Answers{"ei-1": model.NumberAnswer(6)}},
		{"scale below one", model.Answers{"ei-1": model.NumberAnswer(0)}},
		{"text for a scale", model.Answers{"ei-1": model.ChoiceAnswer("often")}},
		{"number for a choice", model.Answers{"ei-4": model.NumberAnswer(2)}},
		{"choice not offered", model.Answers{"ei-4": model.ChoiceAnswer("Sleeping")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assessment.Submit(ctx, f.user.ID, a.ID, tt.answers)
			if util.KindOf(err) != util.KindInvalidInput {
				t.Fatalf("Submit() error = %v, want invalid input", err)
			}
		})
	}

	// partial answers are fine
	got, err := f.assessment.Submit(ctx, f.user.ID, a.ID, model.Answers{"ei-3": model.NumberAnswer(2)})
	if err != nil {
		t.Fatalf("partial Submit() error = %v", err)
	}
	if *got.Score != 40 {
		t.Fatalf("score = %d, want 40", *got.Score)
	}
}

func TestAssessmentOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := startEmotional(t, f)

	if _, err := f.assessment.Get(ctx, f.other.ID, a.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("Get() by other error = %v", err)
	}
	if _, err := f.assessment.Submit(ctx, f.other.ID, a.ID, model.Answers{}); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("Submit() by other error = %v", err)
	}
	list, err := f.assessment.List(ctx, f.other.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("List() by other = %v, %v", list, err)
	}
}
