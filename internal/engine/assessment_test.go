package engine

import (
	"testing"

	"coach_backend/internal/model"
)

func TestScoreAssessment(t *testing.T) {
	tests := []struct {
		name    string
		answers model.Answers
		want    int
	}{
		{"empty", model.Answers{}, 0},
		{"nil", nil, 0},
		{"all fives", model.Answers{"q1": model.NumberAnswer(5), "q2": model.NumberAnswer(5)}, 100},
		{"all ones", model.Answers{"q1": model.NumberAnswer(1), "q2": model.NumberAnswer(1)}, 20},
		{"choices ignored", model.Answers{"q1": model.NumberAnswer(4), "q2": model.ChoiceAnswer("often")}, 80},
		{"only choices", model.Answers{"q1": model.ChoiceAnswer("never")}, 0},
		{"mixed", model.Answers{"q1": model.NumberAnswer(3), "q2": model.NumberAnswer(4), "q3": model.NumberAnswer(4), "q4": model.NumberAnswer(4)}, 75},
		{"half rounds up", model.Answers{"q1": model.NumberAnswer(2.025)}, 41},
		{"clamped above", model.Answers{"q1": model.NumberAnswer(10)}, 100},
		{"clamped below", model.Answers{"q1": model.NumberAnswer(-3)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreAssessment(tt.answers); got != tt.want {
				t.Fatalf("ScoreAssessment() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		score int
		level string
	}{
		{100, "High"}, {80, "High"}, {79, "Medium"}, {60, "Medium"},
		{59, "Below average"}, {40, "Below average"}, {39, "Low"}, {0, "Low"},
	}
	for _, tt := range tests {
		tier := Classify(tt.score)
		if tier.Level != tt.level {
			t.Fatalf("Classify(%d) = %q, want %q", tt.score, tier.Level, tt.level)
		}
		if len(tier.Recommendations) != 3 {
			t.Fatalf("Classify(%d) has %d recommendations", tt.score, len(tier.Recommendations))
		}
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	prev := Classify(0).Rank
	for s := 1; s <= 100; s++ {
		r := Classify(s).Rank
		if r < prev {
			t.Fatalf("Classify(%d) rank %d below rank %d of a lower score", s, r, prev)
		}
		prev = r
	}
}

func TestClassifyReturnsIndependentCopies(t *testing.T) {
	a := Classify(10)
	a.Recommendations[0] = "changed"
	if Classify(50).Recommendations[0] == "changed" {
		t.Fatal("recommendations share backing storage")
	}
}

func TestResults(t *testing.T) {
	res := Results(model.Answers{"q1": model.NumberAnswer(5), "q2": model.NumberAnswer(3)})
	if res.Score != 80 || res.Level != "High" {
		t.Fatalf("Results() = %+v", res)
	}
}
