package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coach_backend/internal/engine"
	"coach_backend/internal/model"
	"coach_backend/internal/repository"
	"coach_backend/internal/util"
	"coach_backend/pkg/logger"

	"go.uber.org/zap"
)

const coachSystemPrompt = "You are a supportive personal development coach. " +
	"Ask clarifying questions, keep answers practical and short, and tie advice to the user's goals when they are known. " +
	"Format replies in Markdown."

const decompositionPrompt = `You are a professional coach who specialises in goal decomposition.

MAIN GOAL
Title: %s
Description: %s
Current progress: %d%%

CONTEXT: %s

Split this goal into 3-6 logical sub goals following SMART principles. Each sub goal must be
concrete, measurable and move the user toward the main goal. Keep early wins small.

WEIGHTS
- 0.5-0.8: preparation steps
- 1.0: standard sub goals
- 1.5-2.0: key milestones
- 2.5-3.0: critical sub goals

Also give practical suggestions, a timeline, risk factors and success metrics.`

const analysisPrompt = `You are a coaching analyst. Review the user's progress on their goal.

MAIN GOAL
Title: %s
Description: %s
Current progress: %d%%

SUB GOALS (%d):
%s

COACHING SESSIONS (%d):
%s

Assess the overall trend, estimate efficiency (0-100) and completion time, review each sub goal,
give concrete recommendations, estimate the impact of sessions and list risks and strengths.
Be honest but constructive.`

// CoachService 负责与 AI 教练相关的用例：对话、目标拆解与进度分析
type CoachService struct {
	AI          *AIService
	Goals       *GoalService
	SessionRepo *repository.SessionRepository
	Now         func() time.Time
}

func NewCoachService(ai *AIService, goals *GoalService, sessionRepo *repository.SessionRepository) *CoachService {
	return &CoachService{
		AI:          ai,
		Goals:       goals,
		SessionRepo: sessionRepo,
		Now:         time.Now,
	}
}

type CoachChatRequest struct {
	Messages []AIChatMessage `json:"messages" binding:"required,min=1,dive"`
}

type DecomposeRequest struct {
	Context string `json:"context" binding:"max=5000"`
}

// DecompositionResult is the post-processed AI answer. Created is set when
// the suggestions were applied as sub goals.
type DecompositionResult struct {
	model.GoalDecomposition
	Created []model.Goal `json:"created,omitempty"`
}

// Chat starts a streamed coaching reply. The key check happens before any
// stream is opened so callers can still answer with a plain error.
func (s *CoachService) Chat(ctx context.Context, userID uint, messages []AIChatMessage) (<-chan string, <-chan error, error) {
	if !s.AI.Configured() {
		return nil, nil, util.ErrMissingAPIKey
	}

	prompt := coachSystemPrompt
	if goals, err := s.Goals.GoalRepo.ListMainByUser(ctx, userID); err == nil && len(goals) > 0 {
		var b strings.Builder
		b.WriteString(prompt)
		b.WriteString("\n\nThe user's current goals:\n")
		for i, g := range goals {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s (%d%%, %s)\n", g.Title, engine.AggregateGoal(&g), g.Status)
		}
		prompt = b.String()
	} else if err != nil {
		logger.Log.Warn("load goals for coach prompt failed", zap.Uint("userID", userID), zap.Error(err))
	}

	full := make([]AIChatMessage, 0, len(messages)+1)
	full = append(full, AIChatMessage{Role: "system", Content: prompt})
	for _, m := range messages {
		// 客户端不能覆盖系统提示词
		if m.Role == "system" {
			continue
		}
		full = append(full, m)
	}

	out, errs := s.AI.ChatStream(ctx, full)
	return out, errs, nil
}

func (s *CoachService) analysisModel() string {
	cfg, _ := s.AI.snapshot()
	if cfg.AnalysisModel != "" {
		return cfg.AnalysisModel
	}
	return cfg.Model
}

// Decompose asks the model to split a goal into weighted sub goals. With
// apply set the suggestions are stored under the goal in one transaction.
func (s *CoachService) Decompose(ctx context.Context, userID uint, goalID, extra string, apply bool) (*DecompositionResult, error) {
	goal, err := s.Goals.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if apply && !goal.IsMain() {
		return nil, util.ErrParentNotMain
	}

	if strings.TrimSpace(extra) == "" {
		extra = "not provided"
	}
	prompt := fmt.Sprintf(decompositionPrompt,
		goal.Title, orNone(goal.Description), engine.AggregateGoal(goal), extra)

	var out model.GoalDecomposition
	if err := s.AI.GenerateJSON(ctx, s.analysisModel(), coachSystemPrompt, prompt, "goal_decomposition", &out); err != nil {
		return nil, err
	}
	if err := ValidateDecomposition(&out); err != nil {
		logger.Log.Warn("rejected AI decomposition", zap.String("goalID", goalID), zap.Error(err))
		return nil, err
	}
	EnrichDecomposition(&out, s.Now())

	result := &DecompositionResult{GoalDecomposition: out}
	if !apply {
		return result, nil
	}

	created, err := s.Goals.CreateSubGoals(ctx, userID, goal.ID, DraftsFrom(out.SubGoals))
	if err != nil {
		return nil, err
	}
	result.Created = created
	return result, nil
}

// ValidateDecomposition enforces the response contract locally.
func ValidateDecomposition(d *model.GoalDecomposition) error {
	if len(d.SubGoals) == 0 {
		return util.Upstream(fmt.Errorf("decomposition has no sub goals"))
	}
	for i, sg := range d.SubGoals {
		if strings.TrimSpace(sg.Title) == "" {
			return util.Upstream(fmt.Errorf("sub goal %d has no title", i))
		}
		if !engine.InSuggestedRange(sg.Weight) {
			return util.Upstream(fmt.Errorf("sub goal %d weight %v outside [%v, %v]",
				i, sg.Weight, engine.MinSuggestedWeight, engine.MaxSuggestedWeight))
		}
	}
	return nil
}

// EnrichDecomposition assigns ids and the initial lifecycle state.
func EnrichDecomposition(d *model.GoalDecomposition, now time.Time) {
	stamp := now.UnixMilli()
	for i := range d.SubGoals {
		sg := &d.SubGoals[i]
		sg.ID = fmt.Sprintf("ai-sub-%d-%d", stamp, i)
		sg.Progress = 0
		sg.Status = model.ProgressNotStarted
		sg.OrderIndex = i
		if sg.Prerequisites == nil {
			sg.Prerequisites = []string{}
		}
	}
}

// DraftsFrom maps suggestions to sub goal drafts. Deadlines the model
// invented in an unknown format are dropped rather than failing the batch.
func DraftsFrom(suggestions []model.SubGoalSuggestion) []SubGoalDraft {
	drafts := make([]SubGoalDraft, 0, len(suggestions))
	for _, sg := range suggestions {
		weight := sg.Weight
		d := SubGoalDraft{
			Title:       sg.Title,
			Description: sg.Description,
			Weight:      &weight,
			OrderIndex:  sg.OrderIndex,
		}
		if dl := strings.TrimSpace(sg.Deadline); dl != "" {
			if _, err := parseDeadline(&dl); err == nil {
				d.Deadline = &dl
			}
		}
		drafts = append(drafts, d)
	}
	return drafts
}

// Analyze reviews a goal together with its sub goals and recent sessions.
// It never writes goal state.
func (s *CoachService) Analyze(ctx context.Context, userID uint, goalID string) (*model.ProgressAnalysis, error) {
	goal, err := s.Goals.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.SessionRepo.ListRecent(ctx, userID, util.DefaultSessionLimit)
	if err != nil {
		return nil, err
	}

	var subs strings.Builder
	for i, sg := range goal.SubGoals {
		fmt.Fprintf(&subs, "%d. %s - %d%% (weight: %g)\n", i+1, sg.Title, sg.Progress, sg.Weight)
	}
	if len(goal.SubGoals) == 0 {
		subs.WriteString("no sub goals yet\n")
	}

	var sess strings.Builder
	for i, cs := range sessions {
		rating := "n/a"
		if cs.SessionRating != nil {
			rating = fmt.Sprintf("%d/5", *cs.SessionRating)
		}
		fmt.Fprintf(&sess, "%d. %s - %d min, rating: %s\n", i+1, cs.SessionType, cs.DurationMinutes, rating)
	}
	if len(sessions) == 0 {
		sess.WriteString("no sessions yet\n")
	}

	prompt := fmt.Sprintf(analysisPrompt,
		goal.Title, orNone(goal.Description), engine.AggregateGoal(goal),
		len(goal.SubGoals), subs.String(), len(sessions), sess.String())

	var out model.ProgressAnalysis
	if err := s.AI.GenerateJSON(ctx, s.analysisModel(), coachSystemPrompt, prompt, "progress_analysis", &out); err != nil {
		return nil, err
	}
	if err := ValidateAnalysis(&out); err != nil {
		logger.Log.Warn("rejected AI analysis", zap.String("goalID", goalID), zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func ValidateAnalysis(a *model.ProgressAnalysis) error {
	switch a.Trend {
	case "improving", "declining", "stable":
	default:
		return util.Upstream(fmt.Errorf("unknown trend %q", a.Trend))
	}
	for i, sg := range a.SubGoalAnalysis {
		switch sg.Status {
		case "on_track", "at_risk", "behind":
		default:
			return util.Upstream(fmt.Errorf("sub goal analysis %d has unknown status %q", i, sg.Status))
		}
	}
	for i, r := range a.Recommendations {
		switch r.Priority {
		case "high", "medium", "low":
		default:
			return util.Upstream(fmt.Errorf("recommendation %d has unknown priority %q", i, r.Priority))
		}
	}
	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not provided"
	}
	return s
}
