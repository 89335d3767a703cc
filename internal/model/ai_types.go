package model

// Structured payloads returned by the coaching model. The jsonschema tags
// drive the schema sent as the response format; the coach service re-checks the
// bounds locally because providers do not all honour them.

type SubGoalSuggestion struct {
	Title             string   `json:"title" jsonschema:"minLength=1"`
	Description       string   `json:"description"`
	Weight            float64  `json:"weight" jsonschema:"minimum=0.1,maximum=3"`
	Deadline          string   `json:"deadline" jsonschema_description:"ISO date or empty"`
	EstimatedDuration string   `json:"estimatedDuration"`
	Prerequisites     []string `json:"prerequisites"`

	// Filled in after the model answers.
	ID         string         `json:"id,omitempty" jsonschema:"-"`
	Progress   int            `json:"progress" jsonschema:"-"`
	Status     ProgressStatus `json:"status,omitempty" jsonschema:"-"`
	OrderIndex int            `json:"orderIndex" jsonschema:"-"`
}

type GoalDecomposition struct {
	SubGoals       []SubGoalSuggestion `json:"subGoals" jsonschema:"minItems=1"`
	Suggestions    []string            `json:"suggestions"`
	Timeline       string              `json:"timeline"`
	RiskFactors    []string            `json:"riskFactors"`
	SuccessMetrics []string            `json:"successMetrics"`
}

type SubGoalAnalysis struct {
	Title    string   `json:"title"`
	Progress int      `json:"progress" jsonschema:"minimum=0,maximum=100"`
	Status   string   `json:"status" jsonschema:"enum=on_track,enum=at_risk,enum=behind"`
	Feedback string   `json:"feedback"`
	Blockers []string `json:"blockers"`
}

type AnalysisRecommendation struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Priority        string   `json:"priority" jsonschema:"enum=high,enum=medium,enum=low"`
	ActionSteps     []string `json:"actionSteps"`
	EstimatedImpact string   `json:"estimatedImpact"`
}

type SessionImpact struct {
	AverageGain          float64 `json:"averageGain"`
	MostEffectiveType    string  `json:"mostEffectiveType"`
	RecommendedFrequency string  `json:"recommendedFrequency"`
}

type ProgressAnalysis struct {
	Trend               string                   `json:"trend" jsonschema:"enum=improving,enum=declining,enum=stable"`
	Efficiency          float64                  `json:"efficiency"`
	EstimatedCompletion string                   `json:"estimatedCompletion"`
	OverallAssessment   string                   `json:"overallAssessment"`
	SubGoalAnalysis     []SubGoalAnalysis        `json:"subGoalAnalysis"`
	Recommendations     []AnalysisRecommendation `json:"recommendations"`
	SessionImpact       SessionImpact            `json:"sessionImpact"`
	RiskFactors         []string                 `json:"riskFactors"`
	Strengths           []string                 `json:"strengths"`
}
