package models

type DescriptionSuggestion struct {
	Suggestion string `json:"suggestion"`
	Success    bool   `json:"success"`
	Fallback   bool   `json:"fallback"`
}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type DailyPlanTask struct {
	Title            string  `json:"title"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	Priority         string  `json:"priority"`
	Description      *string `json:"description,omitempty"`
}

type DailyPlan struct {
	Tasks                 []DailyPlanTask `json:"tasks"`
	TotalEstimatedMinutes int             `json:"total_estimated_minutes"`
	PlanSummary           string          `json:"plan_summary"`
	Success               bool            `json:"success"`
	Fallback              bool            `json:"fallback"`
}
