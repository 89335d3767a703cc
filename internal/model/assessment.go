package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/datatypes"
)

type AssessmentType string

const (
	AssessmentPersonality AssessmentType = "personality"
	AssessmentCognitive   AssessmentType = "cognitive"
	AssessmentEmotional   AssessmentType = "emotional"
	AssessmentBehavioral  AssessmentType = "behavioral"
)

func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentPersonality, AssessmentCognitive, AssessmentEmotional, AssessmentBehavioral:
		return true
	}
	return false
}

type QuestionType string

const (
	QuestionScale          QuestionType = "scale"
	QuestionMultipleChoice QuestionType = "multiple_choice"
)

type ScaleSpec struct {
	Max    int      `json:"max"`
	Labels []string `json:"labels,omitempty"`
}

// Question is a tagged union: Scale is set for scale questions, Options for
// multiple choice ones.
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Scale    *ScaleSpec   `json:"scale,omitempty"`
	Options  []string     `json:"options,omitempty"`
}

func (q Question) Validate() error {
	if q.ID == "" {
		return errors.New("question id is required")
	}
	switch q.Type {
	case QuestionScale:
		if q.Scale == nil || q.Scale.Max < 1 {
			return fmt.Errorf("question %s: scale max must be at least 1", q.ID)
		}
		if len(q.Options) > 0 {
			return fmt.Errorf("question %s: scale questions take no options", q.ID)
		}
	case QuestionMultipleChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: multiple choice needs options", q.ID)
		}
		if q.Scale != nil {
			return fmt.Errorf("question %s: multiple choice takes no scale", q.ID)
		}
	default:
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// Accepts reports whether v is a legal answer to q.
func (q Question) Accepts(v AnswerValue) error {
	switch q.Type {
	case QuestionScale:
		if v.Number == nil {
			return fmt.Errorf("question %s expects a number", q.ID)
		}
		if *v.Number < 1 || *v.Number > float64(q.Scale.Max) {
			return fmt.Errorf("question %s expects a value between 1 and %d", q.ID, q.Scale.Max)
		}
	case QuestionMultipleChoice:
		if v.Choice == nil {
			return fmt.Errorf("question %s expects one of its options", q.ID)
		}
		if !slices.Contains(q.Options, *v.Choice) {
			return fmt.Errorf("question %s has no option %q", q.ID, *v.Choice)
		}
	}
	return nil
}

// AnswerValue holds either a number or a string answer.
type AnswerValue struct {
	Number *float64
	Choice *string
}

func NumberAnswer(f float64) AnswerValue { return AnswerValue{Number: &f} }

func ChoiceAnswer(s string) AnswerValue { return AnswerValue{Choice: &s} }

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Number != nil:
		return json.Marshal(*v.Number)
	case v.Choice != nil:
		return json.Marshal(*v.Choice)
	}
	return []byte("null"), nil
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("answer must be a number or a string")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AnswerValue{Choice: &s}
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return errors.New("answer must be a number or a string")
		}
		*v = AnswerValue{Number: &f}
	}
	return nil
}

type Answers map[string]AnswerValue

type AssessmentResult struct {
	Level           string   `json:"level"`
	Description     string   `json:"description"`
	Score           int      `json:"score"`
	Recommendations []string `json:"recommendations"`
}

// swagger:model AssessmentTemplate
type AssessmentTemplate struct {
	UUIDBase
	Title       string                        `gorm:"size:255;not null" json:"title"`
	Type        AssessmentType                `gorm:"size:32;not null" json:"type"`
	Description string                        `gorm:"type:text" json:"description"`
	Questions   datatypes.JSONSlice[Question] `gorm:"not null" json:"questions"`
	IsActive    bool                          `gorm:"default:true;index" json:"isActive"`
}

func (AssessmentTemplate) TableName() string {
	return "assessment_templates"
}

// Assessment answers, score, results and completion time stay NULL until the
// single submit update writes all four.
// swagger:model Assessment
type Assessment struct {
	UUIDBase
	UserID      uint                          `gorm:"index;not null" json:"userId"`
	TemplateID  string                        `gorm:"index;size:36" json:"templateId"`
	Title       string                        `gorm:"size:255;not null" json:"title"`
	Type        AssessmentType                `gorm:"size:32;not null" json:"type"`
	Questions   datatypes.JSONSlice[Question] `gorm:"not null" json:"questions"`
	Answers     datatypes.JSON                `json:"answers"`
	Score       *int                          `json:"score"`
	Results     datatypes.JSON                `json:"results"`
	CompletedAt *time.Time                    `json:"completedAt"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (a *Assessment) Completed() bool {
	return a.CompletedAt != nil
}

func (a *Assessment) FindQuestion(id string) (Question, bool) {
	for _, q := range a.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (a *Assessment) DecodeAnswers() (Answers, error) {
	if isNullJSON(a.Answers) {
		return nil, nil
	}
	var out Answers
	err := json.Unmarshal(a.Answers, &out)
	return out, err
}

func (a *Assessment) DecodeResults() (*AssessmentResult, error) {
	if isNullJSON(a.Results) {
		return nil, nil
	}
	var out AssessmentResult
	if err := json.Unmarshal(a.Results, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func isNullJSON(raw datatypes.JSON) bool {
	return len(raw) == 0 || string(raw) == "null"
}
