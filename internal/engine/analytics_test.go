package engine

import (
	"testing"
	"time"

	"coach_backend/internal/model"
)

func TestDistributionKeepsFirstSeenOrder(t *testing.T) {
	goals := []model.Goal{
		{Category: model.CategoryStress},
		{Category: model.CategoryFocus},
		{Category: ""},
		{Category: model.CategoryStress},
		{Category: model.CategoryEmotional},
	}
	got := Distribution(goals, func(g model.Goal) string { return string(g.Category) })
	want := []model.DistributionEntry{{Name: "stress", Value: 2}, {Name: "focus", Value: 1}, {Name: "emotional", Value: 1}}
	if len(got) != len(want) {
		t.Fatalf("Distribution() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Distribution()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDistributionEmpty(t *testing.T) {
	got := Distribution([]string{"", ""}, func(s string) string { return s })
	if got == nil || len(got) != 0 {
		t.Fatalf("Distribution() = %#v, want empty non-nil slice", got)
	}
}

func TestMostCommonTieGoesToLaterEntry(t *testing.T) {
	dist := []model.DistributionEntry{{Name: "goal-setting", Value: 2}, {Name: "progress-review", Value: 2}, {Name: "problem-solving", Value: 1}}
	if got := MostCommon(dist); got != "progress-review" {
		t.Fatalf("MostCommon() = %q", got)
	}
	if got := MostCommon(nil); got != "" {
		t.Fatalf("MostCommon(nil) = %q", got)
	}
}

func TestProgressOverTime(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []model.ProgressTracking{
		{ProgressDelta: 5, CreatedAt: base.Add(2 * time.Hour)},
		{ProgressDelta: 10, CreatedAt: base},
		{ProgressDelta: -3, CreatedAt: base.Add(time.Hour)},
	}
	got := ProgressOverTime(records)
	want := []int{10, 7, 12}
	if len(got) != len(want) {
		t.Fatalf("got %d points", len(got))
	}
	for i, w := range want {
		if got[i].CumulativeProgress != w {
			t.Fatalf("point %d = %d, want %d", i, got[i].CumulativeProgress, w)
		}
	}
	if !got[0].Date.Equal(base) {
		t.Fatalf("first point dated %v", got[0].Date)
	}
	if records[0].ProgressDelta != 5 {
		t.Fatal("input slice was reordered")
	}
}

func TestProgressOverTimeStableOnTies(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []model.ProgressTracking{
		{ProgressDelta: 60, CreatedAt: at},
		{ProgressDelta: 70, CreatedAt: at},
	}
	got := ProgressOverTime(records)
	if got[0].CumulativeProgress != 60 || got[1].CumulativeProgress != 130 {
		t.Fatalf("got %+v, want running total 60 then unclamped 130", got)
	}
}

func TestMeanProgress(t *testing.T) {
	goals := []model.Goal{{Progress: 10}, {Progress: 15}}
	if got := MeanProgress(goals); got != 13 {
		t.Fatalf("MeanProgress() = %d, want 13", got)
	}
	if got := MeanProgress(nil); got != 0 {
		t.Fatalf("MeanProgress(nil) = %d", got)
	}
}
