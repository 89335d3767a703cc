// Package engine holds the deterministic goal and assessment rules. Nothing
// here touches storage; callers fetch values, pass them in and persist the
// results.
package engine

import (
	"errors"
	"math"

	"coach_backend/internal/model"
)

var ErrInvalidWeight = errors.New("weight must be a positive number")

// RoundHalfUp rounds x to the nearest integer, sending .5 upwards.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

type WeightedProgress struct {
	Progress int
	Weight   float64
}

// AggregateProgress returns the weighted mean of the sub goals' progress, or
// fallback when there are none.
func AggregateProgress(subGoals []WeightedProgress, fallback int) int {
	if len(subGoals) == 0 {
		return fallback
	}
	var sum, weights float64
	for _, s := range subGoals {
		sum += float64(s.Progress) * s.Weight
		weights += s.Weight
	}
	if weights <= 0 {
		return fallback
	}
	return RoundHalfUp(sum / weights)
}

// AggregateGoal rolls up g's loaded sub goals.
func AggregateGoal(g *model.Goal) int {
	subs := make([]WeightedProgress, 0, len(g.SubGoals))
	for _, s := range g.SubGoals {
		subs = append(subs, WeightedProgress{Progress: s.Progress, Weight: s.Weight})
	}
	return AggregateProgress(subs, g.Progress)
}

func DeriveStatus(progress int) model.ProgressStatus {
	switch {
	case progress <= 0:
		return model.ProgressNotStarted
	case progress >= 100:
		return model.ProgressCompleted
	default:
		return model.ProgressInProgress
	}
}

func ValidateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return ErrInvalidWeight
	}
	return nil
}

const (
	MinSuggestedWeight = 0.1
	MaxSuggestedWeight = 3.0
)

// InSuggestedRange reports whether w lies in [0.1, 3.0]. Weights produced by
// the model must; user-entered weights only need ValidateWeight.
func InSuggestedRange(w float64) bool {
	return ValidateWeight(w) == nil && w >= MinSuggestedWeight && w <= MaxSuggestedWeight
}

// NextStatus moves the lifecycle status along with a progress change.
func NextStatus(current model.GoalStatus, progress int) model.GoalStatus {
	if progress >= 100 {
		return model.GoalCompleted
	}
	if current == model.GoalCompleted {
		return model.GoalActive
	}
	if current == "" {
		return model.GoalActive
	}
	return current
}
