package models

import "time"

type UserSummary struct {
	TotalTasks            int     `json:"total_tasks"`
	TodoTasks             int     `json:"todo_tasks"`
	InProgressTasks       int     `json:"in_progress_tasks"`
	CompletedTasks        int     `json:"completed_tasks"`
	TotalMinutesLogged    int     `json:"total_minutes_logged"`
	AverageMinutesPerTask float64 `json:"average_minutes_per_task"`
	CompletionRate        float64 `json:"completion_rate"`
}

type UserStats struct {
	UserID         string  `json:"user_id"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	TotalMinutes   int     `json:"total_minutes"`
	CompletionRate float64 `json:"completion_rate"`
}

type ActivityEntry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Status       Status    `json:"status"`
	TotalMinutes int       `json:"total_minutes"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RecentActivity struct {
	RecentTasks []ActivityEntry `json:"recent_tasks"`
}
