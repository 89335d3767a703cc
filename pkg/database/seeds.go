package database

import (
	"log"

	"coach_backend/internal/model"

	"gorm.io/gorm"
)

var agreement = &model.ScaleSpec{
	Max:    5,
	Labels: []string{"Never", "Rarely", "Sometimes", "Often", "Always"},
}

// DefaultTemplates is the catalog installed into an empty database.
func DefaultTemplates() []model.AssessmentTemplate {
	return []model.AssessmentTemplate{
		{
			Title:       "Emotional Intelligence Check-in",
			Type:        model.AssessmentEmotional,
			Description: "How well you notice, name and regulate your emotions.",
			IsActive:    true,
			Questions: []model.Question{
				{ID: "ei-1", Type: model.QuestionScale, Question: "I can name what I am feeling while it happens.", Scale: agreement},
				{ID: "ei-2", Type: model.QuestionScale, Question: "I stay calm when plans change at short notice.", Scale: agreement},
				{ID: "ei-3", Type: model.QuestionScale, Question: "I notice how my mood affects the people around me.", Scale: agreement},
				{ID: "ei-4", Type: model.QuestionMultipleChoice, Question: "What usually helps you recover after a hard day?",
					Options: []string{"Exercise", "Talking to someone", "Time alone", "Creative work"}},
			},
		},
		{
			Title:       "Focus and Attention Habits",
			Type:        model.AssessmentCognitive,
			Description: "Your ability to hold attention on deep work.",
			IsActive:    true,
			Questions: []model.Question{
				{ID: "fo-1", Type: model.QuestionScale, Question: "I can work for an hour without checking my phone.", Scale: agreement},
				{ID: "fo-2", Type: model.QuestionScale, Question: "I plan the most important task of my day in advance.", Scale: agreement},
				{ID: "fo-3", Type: model.QuestionScale, Question: "I return to a task quickly after an interruption.", Scale: agreement},
				{ID: "fo-4", Type: model.QuestionMultipleChoice, Question: "When is your attention at its best?",
					Options: []string{"Early morning", "Late morning", "Afternoon", "Evening"}},
			},
		},
		{
			Title:       "Stress Response Profile",
			Type:        model.AssessmentBehavioral,
			Description: "How you behave under pressure.",
			IsActive:    true,
			Questions: []model.Question{
				{ID: "st-1", Type: model.QuestionScale, Question: "I keep a regular sleep schedule during busy weeks.", Scale: agreement},
				{ID: "st-2", Type: model.QuestionScale, Question: "I ask for help before a problem becomes urgent.", Scale: agreement},
				{ID: "st-3", Type: model.QuestionScale, Question: "I take short breaks when I notice tension building.", Scale: agreement},
			},
		},
	}
}

// SeedTemplates installs DefaultTemplates when the catalog is empty.
func SeedTemplates(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.AssessmentTemplate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	templates := DefaultTemplates()
	if err := db.Create(&templates).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d assessment templates", len(templates))
	return nil
}
