package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/sprintsync/internal/models"
)

type llmStub struct {
	reply   string
	err     error
	system  string
	prompts []string
}

func (l *llmStub) Generate(_ context.Context, system, prompt string) (string, error) {
	l.system = system
	l.prompts = append(l.prompts, prompt)
	return l.reply, l.err
}

func ptr[T any](v T) *T { return &v }

func TestAIService_SuggestDescription_Fallback(t *testing.T) {
	svc := NewAIService(zerolog.Nop(), nil, time.Second)

	tests := []struct {
		title string
		want  string
	}{
		{"Fix login bug", "Fix the bug. Reproduce, identify cause, implement fix, test.\n\nCustomize as needed."},
		{"Write unit tests", "Write tests. Design test cases, implement, verify coverage.\n\nCustomize as needed."},
		{"Plan offsite", "Add detailed requirements and acceptance criteria. Break down if complex."},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			s := svc.SuggestDescription(context.Background(), tt.title, nil)
			assert.Equal(t, tt.want, s.Suggestion)
			assert.True(t, s.Success)
			assert.True(t, s.Fallback)
		})
	}
}

func TestAIService_SuggestDescription_LLM(t *testing.T) {
	llm := &llmStub{reply: "Do the thing."}
	svc := NewAIService(zerolog.Nop(), llm, time.Second)

	s := svc.SuggestDescription(context.Background(), "Integrate OpenAI API", ptr("backend"))
	assert.Equal(t, "Do the thing.", s.Suggestion)
	assert.False(t, s.Fallback)
	assert.Equal(t, descriptionSystemPrompt, llm.system)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Context: backend")
}

func TestAIService_SuggestDescription_LLMErrorFallsBack(t *testing.T) {
	svc := NewAIService(zerolog.Nop(), &llmStub{err: errors.New("rate limited")}, time.Second)

	s := svc.SuggestDescription(context.Background(), "Review PR", nil)
	assert.True(t, s.Fallback)
	assert.True(t, strings.HasPrefix(s.Suggestion, "Review the item."))
}

func TestFallbackDailyPlan(t *testing.T) {
	tasks := []*models.Task{
		{Title: "a", Status: models.StatusInProgress, Description: ptr("ship it")},
		{Title: "b", Status: models.StatusInProgress},
		{Title: "c", Status: models.StatusInProgress},
		{Title: "d", Status: models.StatusTodo},
		{Title: "e", Status: models.StatusTodo},
		{Title: "f", Status: models.StatusTodo},
		{Title: "g", Status: models.StatusTodo},
	}

	plan := fallbackDailyPlan(tasks)
	require.Len(t, plan.Tasks, 4)
	assert.Equal(t, "Continue: ship it", *plan.Tasks[0].Description)
	assert.Equal(t, models.PriorityHigh, plan.Tasks[1].Priority)
	assert.Equal(t, "Start: No description", *plan.Tasks[2].Description)
	assert.Equal(t, models.PriorityMedium, plan.Tasks[3].Priority)
	// 2*120 + 90 + 90 reaches the 420 minute cap before the third TODO.
	assert.Equal(t, 420, plan.TotalEstimatedMinutes)
	assert.Equal(t, "Focus on 3 current tasks and 3 new ones. ~7h workload.", plan.PlanSummary)
	assert.True(t, plan.Fallback)
}

func TestFallbackDailyPlan_Empty(t *testing.T) {
	plan := fallbackDailyPlan(nil)
	assert.NotNil(t, plan.Tasks)
	assert.Empty(t, plan.Tasks)
	assert.Equal(t, "Focus on 0 current tasks and 0 new ones. ~0h workload.", plan.PlanSummary)
}

func TestAIService_DailyPlan_LLM(t *testing.T) {
	llm := &llmStub{reply: "```json\n" + `{"tasks":[{"title":"a","estimated_minutes":60,"priority":"high"}],"total_estimated_minutes":60,"plan_summary":"one thing"}` + "\n```"}
	svc := NewAIService(zerolog.Nop(), llm, time.Second)

	plan := svc.DailyPlan(context.Background(), &models.User{ID: "u", FullName: "Demo User"}, []*models.Task{
		{Title: "a", Status: models.StatusTodo},
	})
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, 60, plan.TotalEstimatedMinutes)
	assert.Equal(t, "one thing", plan.PlanSummary)
	assert.True(t, plan.Success)
	assert.False(t, plan.Fallback)
	assert.Equal(t, planSystemPrompt, llm.system)
}

func TestAIService_DailyPlan_BadJSONFallsBack(t *testing.T) {
	svc := NewAIService(zerolog.Nop(), &llmStub{reply: "sure! here is your plan"}, time.Second)

	plan := svc.DailyPlan(context.Background(), &models.User{ID: "u"}, []*models.Task{
		{Title: "a", Status: models.StatusTodo},
	})
	assert.True(t, plan.Fallback)
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, 90, plan.TotalEstimatedMinutes)
}
