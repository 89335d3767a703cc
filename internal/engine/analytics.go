package engine

import (
	"sort"

	"coach_backend/internal/model"
)

// Distribution counts items by key in first-seen order. Items whose key is
// empty are skipped.
func Distribution[T any](items []T, key func(T) string) []model.DistributionEntry {
	out := make([]model.DistributionEntry, 0)
	index := make(map[string]int)
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			out[i].Value++
			continue
		}
		index[k] = len(out)
		out = append(out, model.DistributionEntry{Name: k, Value: 1})
	}
	return out
}

// MostCommon returns the most frequent name. On a tie the entry seen later
// wins.
func MostCommon(dist []model.DistributionEntry) string {
	if len(dist) == 0 {
		return ""
	}
	best := dist[0]
	for _, d := range dist[1:] {
		if !(best.Value > d.Value) {
			best = d
		}
	}
	return best.Name
}

// ProgressOverTime folds ledger rows into a running total, one point per row
// in chronological order. The total is not clamped.
func ProgressOverTime(records []model.ProgressTracking) []model.ProgressPoint {
	sorted := make([]model.ProgressTracking, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	out := make([]model.ProgressPoint, 0, len(sorted))
	total := 0
	for _, r := range sorted {
		total += r.ProgressDelta
		out = append(out, model.ProgressPoint{Date: r.CreatedAt, CumulativeProgress: total})
	}
	return out
}

// MeanProgress is the rounded average of the goals' own progress.
func MeanProgress(goals []model.Goal) int {
	if len(goals) == 0 {
		return 0
	}
	sum := 0
	for _, g := range goals {
		sum += g.Progress
	}
	return RoundHalfUp(float64(sum) / float64(len(goals)))
}
