package model

import "time"

type GoalCategory string

const (
	CategoryEmotional     GoalCategory = "emotional"
	CategoryFocus         GoalCategory = "focus"
	CategoryStress        GoalCategory = "stress"
	CategoryCommunication GoalCategory = "communication"
	CategoryLeadership    GoalCategory = "leadership"
	CategoryCreativity    GoalCategory = "creativity"
)

func (c GoalCategory) Valid() bool {
	switch c {
	case "", CategoryEmotional, CategoryFocus, CategoryStress,
		CategoryCommunication, CategoryLeadership, CategoryCreativity:
		return true
	}
	return false
}

type GoalPriority string

const (
	PriorityHigh   GoalPriority = "high"
	PriorityMedium GoalPriority = "medium"
	PriorityLow    GoalPriority = "low"
)

func (p GoalPriority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type GoalType string

const (
	GoalTypeMain GoalType = "main"
	GoalTypeSub  GoalType = "sub"
)

// GoalStatus is the lifecycle state a user steers.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
	GoalCancelled GoalStatus = "cancelled"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalActive, GoalCompleted, GoalPaused, GoalCancelled:
		return true
	}
	return false
}

// ProgressStatus is derived from progress alone and stored next to it.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// swagger:model Goal
type Goal struct {
	UUIDBase
	UserID         uint           `gorm:"index;not null" json:"userId"`
	ParentGoalID   *string        `gorm:"index;size:36" json:"parentGoalId"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Category       GoalCategory   `gorm:"size:32" json:"category,omitempty"`
	Priority       GoalPriority   `gorm:"size:16;default:'medium'" json:"priority"`
	GoalType       GoalType       `gorm:"size:8;default:'main'" json:"goalType"`
	Progress       int            `gorm:"default:0" json:"progress"`
	Weight         float64        `gorm:"default:1" json:"weight"`
	OrderIndex     int            `gorm:"default:0" json:"orderIndex"`
	Status         GoalStatus     `gorm:"size:16;default:'active'" json:"status"`
	ProgressStatus ProgressStatus `gorm:"size:16;default:'not_started'" json:"progressStatus"`
	Deadline       *time.Time     `json:"deadline,omitempty"`

	SubGoals           []Goal `gorm:"foreignKey:ParentGoalID" json:"subGoals,omitempty"`
	AggregatedProgress *int   `gorm:"-" json:"aggregatedProgress,omitempty"`
}

func (Goal) TableName() string {
	return "goals"
}

func (g *Goal) IsMain() bool {
	return g.ParentGoalID == nil
}
