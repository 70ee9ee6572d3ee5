package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/adanyl0v/sprintsync/internal/models"
)

type suggestDescriptionRequest struct {
	Title   string  `json:"title" validate:"required,min=1,max=200"`
	Context *string `json:"context,omitempty" validate:"omitempty,max=500"`
}

func (c *Client) SuggestDescription(ctx context.Context, title string, taskContext *string) (*models.DescriptionSuggestion, error) {
	req := suggestDescriptionRequest{
		Title:   strings.TrimSpace(title),
		Context: taskContext,
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	suggestion := new(models.DescriptionSuggestion)
	err := c.doJSON(ctx, http.MethodPost, "/ai/suggest-description", nil, req, suggestion)
	if err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (c *Client) DailyPlan(ctx context.Context) (*models.DailyPlan, error) {
	plan := new(models.DailyPlan)
	err := c.doJSON(ctx, http.MethodGet, "/ai/daily-plan", nil, nil, plan)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (c *Client) UserSummary(ctx context.Context) (*models.UserSummary, error) {
	summary := new(models.UserSummary)
	err := c.doJSON(ctx, http.MethodGet, "/stats/user-summary", nil, nil, summary)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *Client) TopUsers(ctx context.Context) ([]*models.UserStats, error) {
	var stats []*models.UserStats
	err := c.doJSON(ctx, http.MethodGet, "/stats/top-users", nil, nil, &stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) RecentActivity(ctx context.Context) (*models.RecentActivity, error) {
	activity := new(models.RecentActivity)
	err := c.doJSON(ctx, http.MethodGet, "/stats/recent-activity", nil, nil, activity)
	if err != nil {
		return nil, err
	}
	return activity, nil
}
