package model

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ProgressTracking rows are append-only. The ULID key sorts by creation time,
// which keeps ledger reads stable even when two rows share a timestamp.
// swagger:model ProgressTracking
type ProgressTracking struct {
	ID               string    `gorm:"primaryKey;size:26" json:"id"`
	UserID           uint      `gorm:"index;not null" json:"userId"`
	GoalID           string    `gorm:"index;size:36;not null" json:"goalId"`
	PreviousProgress int       `json:"previousProgress"`
	NewProgress      int       `json:"newProgress"`
	ProgressDelta    int       `json:"progressDelta"`
	SessionID        *string   `gorm:"index;size:36" json:"sessionId,omitempty"`
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time `gorm:"index" json:"createdAt"`
}

func (ProgressTracking) TableName() string {
	return "progress_tracking"
}

func (p *ProgressTracking) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		now := p.CreatedAt
		if now.IsZero() {
			now = time.Now()
		}
		p.ID = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	}
	return nil
}

// Ledger rows are never rewritten.
func (p *ProgressTracking) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrNotImplemented
}
