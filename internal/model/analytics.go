package model

import "time"

type DistributionEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type ProgressPoint struct {
	Date               time.Time `json:"date"`
	CumulativeProgress int       `json:"cumulativeProgress"`
}

type GoalStats struct {
	Total                int                 `json:"total"`
	Active               int                 `json:"active"`
	Completed            int                 `json:"completed"`
	AverageProgress      int                 `json:"averageProgress"`
	CategoryDistribution []DistributionEntry `json:"categoryDistribution"`
}

type SessionStats struct {
	Total            int                 `json:"total"`
	Completed        int                 `json:"completed"`
	AverageRating    float64             `json:"averageRating"`
	TotalDuration    int                 `json:"totalDuration"`
	MostCommonType   SessionType         `json:"mostCommonType,omitempty"`
	TypeDistribution []DistributionEntry `json:"typeDistribution"`
}

// swagger:model Analytics
type Analytics struct {
	GoalStats        GoalStats       `json:"goalStats"`
	SessionStats     SessionStats    `json:"sessionStats"`
	ProgressOverTime []ProgressPoint `json:"progressOverTime"`
}
