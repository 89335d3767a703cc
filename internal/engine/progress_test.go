package engine

import (
	"math"
	"testing"

	"coach_backend/internal/model"
)

func TestAggregateProgress(t *testing.T) {
	tests := []struct {
		name     string
		subs     []WeightedProgress
		fallback int
		want     int
	}{
		{"empty returns fallback", nil, 42, 42},
		{"single", []WeightedProgress{{Progress: 30, Weight: 2}}, 0, 30},
		{"equal weights equal progress", []WeightedProgress{{60, 1}, {60, 1}, {60, 1}}, 0, 60},
		{"weighted half rounds up", []WeightedProgress{{50, 1}, {100, 3}}, 0, 88},
		{"plain mean half rounds up", []WeightedProgress{{0, 1}, {1, 1}}, 0, 1},
		{"below half rounds down", []WeightedProgress{{0, 2}, {1, 1}}, 0, 0},
		{"all done", []WeightedProgress{{100, 0.5}, {100, 2.5}}, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateProgress(tt.subs, tt.fallback); got != tt.want {
				t.Fatalf("AggregateProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAggregateProgressStaysWithinInputBounds(t *testing.T) {
	weights := []float64{0.1, 0.7, 1, 1.5, 3}
	for a := 0; a <= 100; a += 7 {
		for b := 0; b <= 100; b += 11 {
			for _, wa := range weights {
				for _, wb := range weights {
					got := AggregateProgress([]WeightedProgress{{a, wa}, {b, wb}}, -1)
					lo, hi := min(a, b), max(a, b)
					if got < lo || got > hi {
						t.Fatalf("aggregate of (%d,%v) (%d,%v) = %d, outside [%d,%d]", a, wa, b, wb, got, lo, hi)
					}
				}
			}
		}
	}
}

func TestAggregateGoalUsesOwnProgressWithoutSubGoals(t *testing.T) {
	g := &model.Goal{Progress: 35}
	if got := AggregateGoal(g); got != 35 {
		t.Fatalf("AggregateGoal() = %d, want 35", got)
	}
	g.SubGoals = []model.Goal{{Progress: 50, Weight: 1}, {Progress: 100, Weight: 3}}
	if got := AggregateGoal(g); got != 88 {
		t.Fatalf("AggregateGoal() = %d, want 88", got)
	}
}

func TestDeriveStatus(t *testing.T) {
	if got := DeriveStatus(0); got != model.ProgressNotStarted {
		t.Fatalf("DeriveStatus(0) = %s", got)
	}
	if got := DeriveStatus(100); got != model.ProgressCompleted {
		t.Fatalf("DeriveStatus(100) = %s", got)
	}
	for p := 1; p < 100; p++ {
		if got := DeriveStatus(p); got != model.ProgressInProgress {
			t.Fatalf("DeriveStatus(%d) = %s", p, got)
		}
	}
}

func TestValidateWeight(t *testing.T) {
	for _, w := range []float64{0.01, 0.1, 1, 3, 7.5} {
		if err := ValidateWeight(w); err != nil {
			t.Fatalf("ValidateWeight(%v) = %v", w, err)
		}
	}
	for _, w := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := ValidateWeight(w); err != ErrInvalidWeight {
			t.Fatalf("ValidateWeight(%v) = %v, want ErrInvalidWeight", w, err)
		}
	}
}

func TestInSuggestedRange(t *testing.T) {
	cases := map[float64]bool{0.05: false, 0.1: true, 2: true, 3: true, 3.01: false}
	for w, want := range cases {
		if got := InSuggestedRange(w); got != want {
			t.Fatalf("InSuggestedRange(%v) = %v, want %v", w, got, want)
		}
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		current  model.GoalStatus
		progress int
		want     model.GoalStatus
	}{
		{model.GoalActive, 100, model.GoalCompleted},
		{model.GoalPaused, 100, model.GoalCompleted},
		{model.GoalCompleted, 40, model.GoalActive},
		{model.GoalPaused, 40, model.GoalPaused},
		{model.GoalCancelled, 0, model.GoalCancelled},
		{"", 10, model.GoalActive},
	}
	for _, tt := range tests {
		if got := NextStatus(tt.current, tt.progress); got != tt.want {
			t.Fatalf("NextStatus(%s, %d) = %s, want %s", tt.current, tt.progress, got, tt.want)
		}
	}
}
