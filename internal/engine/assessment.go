package engine

import "coach_backend/internal/model"

// ScoreAssessment projects the mean of the numeric answers from a 1-5 scale
// onto 0-100. Choice answers do not contribute; with no numeric answers the
// score is 0.
func ScoreAssessment(answers model.Answers) int {
	var sum float64
	var n int
	for _, v := range answers {
		if v.Number == nil {
			continue
		}
		sum += *v.Number
		n++
	}
	if n == 0 {
		return 0
	}
	score := RoundHalfUp(sum * 100 / (5 * float64(n)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

type Tier struct {
	Rank            int
	Level           string
	Description     string
	Recommendations []string
}

var (
	growthRecommendations = []string{
		"Start with the foundational exercises",
		"Set aside time for practice every day",
		"Consider working with a coach",
	}

	tierHigh = Tier{
		Rank:        3,
		Level:       "High",
		Description: "Excellent results. Keep growing.",
		Recommendations: []string{
			"Share your experience with others",
			"Set more ambitious goals",
			"Develop your mentoring skills",
		},
	}
	tierMedium = Tier{
		Rank:        2,
		Level:       "Medium",
		Description: "Good results with room to grow.",
		Recommendations: []string{
			"Practice regularly",
			"Explore additional techniques",
			"Find a mentor to support your development",
		},
	}
	tierBelowAverage = Tier{
		Rank:            1,
		Level:           "Below average",
		Description:     "There is room for significant improvement.",
		Recommendations: growthRecommendations,
	}
	tierLow = Tier{
		Rank:            0,
		Level:           "Low",
		Description:     "There are areas to develop.",
		Recommendations: growthRecommendations,
	}
)

func Classify(score int) Tier {
	var t Tier
	switch {
	case score >= 80:
		t = tierHigh
	case score >= 60:
		t = tierMedium
	case score >= 40:
		t = tierBelowAverage
	default:
		t = tierLow
	}
	t.Recommendations = append([]string(nil), t.Recommendations...)
	return t
}

// Results scores answers and classifies the score in one step.
func Results(answers model.Answers) model.AssessmentResult {
	score := ScoreAssessment(answers)
	tier := Classify(score)
	return model.AssessmentResult{
		Level:           tier.Level,
		Description:     tier.Description,
		Score:           score,
		Recommendations: tier.Recommendations,
	}
}
