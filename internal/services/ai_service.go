package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/sprintsync/internal/models"
)

const (
	descriptionSystemPrompt = "You are a helpful project management assistant."
	planSystemPrompt        = "You respond with valid JSON only."

	fallbackInProgressLimit   = 2
	fallbackInProgressMinutes = 120
	fallbackTodoLimit         = 3
	fallbackTodoMinutes       = 90
	fallbackWorkdayMinutes    = 420
)

type aiServiceImpl struct {
	logger  zerolog.Logger
	llm     LLMClient
	timeout time.Duration
}

// NewAIService returns a service that answers from templates when llm is nil
// or when a completion fails.
func NewAIService(logger zerolog.Logger, llm LLMClient, timeout time.Duration) AIService {
	if llm == nil {
		logger.Warn().Msg("no llm client configured, using fallbacks")
	}
	return &aiServiceImpl{
		logger:  logger,
		llm:     llm,
		timeout: timeout,
	}
}

func (s *aiServiceImpl) SuggestDescription(ctx context.Context, title string, taskContext *string) *models.DescriptionSuggestion {
	if s.llm == nil {
		return fallbackDescription(title)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Create a task description for: %q\n", title)
	if taskContext != nil && *taskContext != "" {
		fmt.Fprintf(&prompt, "Context: %s\n", *taskContext)
	}
	prompt.WriteString("\nInclude what needs to be done, acceptance criteria, and complexity estimate.\nMax 500 words.")

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	suggestion, err := s.llm.Generate(ctx, descriptionSystemPrompt, prompt.String())
	if err != nil || suggestion == "" {
		s.logger.Error().
			Err(err).
			Str("title", title).
			Msg("failed to generate task description")
		return fallbackDescription(title)
	}

	s.logger.Info().
		Str("title", title).
		Msg("generated task description")
	return &models.DescriptionSuggestion{
		Suggestion: suggestion,
		Success:    true,
	}
}

type planTaskInput struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       models.Status `json:"status"`
	TotalMinutes int           `json:"total_minutes"`
}

func (s *aiServiceImpl) DailyPlan(ctx context.Context, user *models.User, tasks []*models.Task) *models.DailyPlan {
	if s.llm == nil {
		return fallbackDailyPlan(tasks)
	}

	inputs := make([]planTaskInput, 0, len(tasks))
	for _, t := range tasks {
		inputs = append(inputs, planTaskInput{
			Title:        t.Title,
			Description:  descriptionOr(t.Description, "No description"),
			Status:       t.Status,
			TotalMinutes: t.TotalMinutes,
		})
	}
	encoded, err := json.Marshal(inputs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to marshal plan input")
		return fallbackDailyPlan(tasks)
	}

	prompt := fmt.Sprintf(`Plan daily work for %s.
Tasks: %s

Return JSON with:
- tasks: [{"title", "estimated_minutes", "priority", "description"}]
- total_estimated_minutes: total
- plan_summary: brief overview

Focus on TODO and IN_PROGRESS. 8 hour max.`, user.FullName, encoded)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.llm.Generate(ctx, planSystemPrompt, prompt)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to generate daily plan")
		return fallbackDailyPlan(tasks)
	}

	var plan models.DailyPlan
	err = json.Unmarshal([]byte(stripCodeFence(raw)), &plan)
	if err != nil || plan.Tasks == nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to decode daily plan")
		return fallbackDailyPlan(tasks)
	}
	plan.Success = true
	plan.Fallback = false

	s.logger.Info().
		Str("user_id", user.ID).
		Int("tasks", len(plan.Tasks)).
		Msg("generated daily plan")
	return &plan
}

func (s *aiServiceImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// stripCodeFence removes a ```json fence some models wrap JSON replies in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var descriptionTemplates = []struct {
	keyword  string
	template string
}{
	{"bug", "Fix the bug. Reproduce, identify cause, implement fix, test."},
	{"feature", "Build the feature. Design, implement, test, document."},
	{"refactor", "Clean up code. Analyze current state, refactor incrementally, test."},
	{"review", "Review the item. Check requirements, provide feedback."},
	{"test", "Write tests. Design test cases, implement, verify coverage."},
}

func fallbackDescription(title string) *models.DescriptionSuggestion {
	description := "Add detailed requirements and acceptance criteria. Break down if complex."

	lower := strings.ToLower(title)
	for _, t := range descriptionTemplates {
		if strings.Contains(lower, t.keyword) {
			description = t.template + "\n\nCustomize as needed."
			break
		}
	}

	return &models.DescriptionSuggestion{
		Suggestion: description,
		Success:    true,
		Fallback:   true,
	}
}

// fallbackDailyPlan continues current work first, then starts new tasks
// while the day has room.
func fallbackDailyPlan(tasks []*models.Task) *models.DailyPlan {
	var todo, inProgress []*models.Task
	for _, t := range tasks {
		switch t.Status {
		case models.StatusTodo:
			todo = append(todo, t)
		case models.StatusInProgress:
			inProgress = append(inProgress, t)
		}
	}

	plan := &models.DailyPlan{
		Tasks:    make([]models.DailyPlanTask, 0),
		Success:  true,
		Fallback: true,
	}

	for _, t := range inProgress[:min(len(inProgress), fallbackInProgressLimit)] {
		description := "Continue: " + descriptionOr(t.Description, "No description")
		plan.Tasks = append(plan.Tasks, models.DailyPlanTask{
			Title:            t.Title,
			EstimatedMinutes: fallbackInProgressMinutes,
			Priority:         models.PriorityHigh,
			Description:      &description,
		})
		plan.TotalEstimatedMinutes += fallbackInProgressMinutes
	}

	newTasks := todo[:min(len(todo), fallbackTodoLimit)]
	for _, t := range newTasks {
		if plan.TotalEstimatedMinutes >= fallbackWorkdayMinutes {
			break
		}
		description := "Start: " + descriptionOr(t.Description, "No description")
		plan.Tasks = append(plan.Tasks, models.DailyPlanTask{
			Title:            t.Title,
			EstimatedMinutes: fallbackTodoMinutes,
			Priority:         models.PriorityMedium,
			Description:      &description,
		})
		plan.TotalEstimatedMinutes += fallbackTodoMinutes
	}

	plan.PlanSummary = fmt.Sprintf("Focus on %d current tasks and %d new ones. ~%dh workload.",
		len(inProgress), len(newTasks), plan.TotalEstimatedMinutes/60)
	return plan
}

func descriptionOr(description *string, fallback string) string {
	if description == nil || *description == "" {
		return fallback
	}
	return *description
}
