package model

import (
	"time"

	"gorm.io/datatypes"
)

type SessionType string

const (
	SessionGoalSetting      SessionType = "goal-setting"
	SessionProgressReview   SessionType = "progress-review"
	SessionProblemSolving   SessionType = "problem-solving"
	SessionEmotionalSupport SessionType = "emotional-support"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionGoalSetting, SessionProgressReview, SessionProblemSolving, SessionEmotionalSupport:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

// SessionGoalProgress is an outcome recorded at the end of a session.
type SessionGoalProgress struct {
	GoalID   string `json:"goalId" binding:"required"`
	Progress int    `json:"progress" binding:"min=0,max=100"`
	Notes    string `json:"notes,omitempty"`
}

// swagger:model CoachingSession
type CoachingSession struct {
	UUIDBase
	UserID          uint                                     `gorm:"index;not null" json:"userId"`
	SessionType     SessionType                              `gorm:"size:32;not null" json:"sessionType"`
	Title           string                                   `gorm:"size:255" json:"title"`
	GoalsDiscussed  datatypes.JSONSlice[string]              `json:"goalsDiscussed"`
	Insights        datatypes.JSONSlice[string]              `json:"insights"`
	ActionItems     datatypes.JSONSlice[string]              `json:"actionItems"`
	GoalProgress    datatypes.JSONSlice[SessionGoalProgress] `json:"goalProgress"`
	MoodBefore      *int                                     `json:"moodBefore"`
	MoodAfter       *int                                     `json:"moodAfter"`
	SessionRating   *int                                     `json:"sessionRating"`
	DurationMinutes int                                      `gorm:"default:0" json:"durationMinutes"`
	Transcript      string                                   `gorm:"type:text" json:"transcript,omitempty"`
	AIAnalysis      datatypes.JSON                           `json:"aiAnalysis,omitempty"`
	Status          SessionStatus                            `gorm:"size:16;default:'in_progress'" json:"status"`
	CompletedAt     *time.Time                               `json:"completedAt"`
}

func (CoachingSession) TableName() string {
	return "coaching_sessions"
}
