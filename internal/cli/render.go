package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/sprintsync/internal/board"
	"github.com/adanyl0v/sprintsync/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeColumnStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	draggingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusTodo       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	levelSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	levelError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	levelInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
)

func styleForStatus(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusInProgress:
		return statusInProgress
	case models.StatusDone:
		return statusDone
	case models.StatusTodo:
		return statusTodo
	default:
		return lipgloss.NewStyle()
	}
}

func styleForLevel(l board.Level) lipgloss.Style {
	switch l {
	case board.LevelSuccess:
		return levelSuccess
	case board.LevelError:
		return levelError
	default:
		return levelInfo
	}
}

func renderNotification(n board.Notification) string {
	return styleForLevel(n.Level).Render(fmt.Sprintf("[%s]", n.Level)) + " " + n.Message
}

// writerNotifier prints notifications as they arrive. Errors are skipped:
// the command returns them and cobra prints them.
type writerNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *writerNotifier) Notify(n board.Notification) {
	if n.Level == board.LevelError {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, renderNotification(n))
}

// lastNotifier keeps the most recent notification for the board view.
type lastNotifier struct {
	mu sync.Mutex
	n  *board.Notification
}

func (l *lastNotifier) Notify(n board.Notification) {
	l.mu.Lock()
	l.n = &n
	l.mu.Unlock()
}

func (l *lastNotifier) Last() *board.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

func renderTaskTable(tasks []*models.Task) string {
	if len(tasks) == 0 {
		return mutedStyle.Render("No tasks.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("%-36s  %-12s  %7s  %s", "ID", "STATUS", "TIME", "TITLE")))
	for _, t := range tasks {
		status := styleForStatus(t.Status).Render(fmt.Sprintf("%-12s", t.Status))
		fmt.Fprintf(&b, "%-36s  %s  %7s  %s\n", t.ID, status, formatMinutes(t.TotalMinutes), t.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderColumn(col board.Column, width int, active bool, cursor int, dragging *models.Task) string {
	var b strings.Builder
	b.WriteString(styleForStatus(col.Status).Bold(true).Render(fmt.Sprintf("%s (%d)", col.Status, len(col.Tasks))))
	b.WriteString("\n")

	if len(col.Tasks) == 0 {
		b.WriteString(mutedStyle.Render("empty"))
	}
	for i, t := range col.Tasks {
		line := fmt.Sprintf("%s %s", t.Title, mutedStyle.Render(formatMinutes(t.TotalMinutes)))
		switch {
		case dragging != nil && dragging.ID == t.ID:
			line = draggingStyle.Render("> " + t.Title)
		case active && i == cursor:
			line = cursorStyle.Render(t.Title) + " " + mutedStyle.Render(formatMinutes(t.TotalMinutes))
		}
		b.WriteString(line)
		if i < len(col.Tasks)-1 {
			b.WriteString("\n")
		}
	}

	style := columnStyle
	if active {
		style = activeColumnStyle
	}
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(b.String())
}

func renderColumns(columns []board.Column, width, activeColumn, cursor int, dragging *models.Task) string {
	colWidth := 0
	if width > 0 && len(columns) > 0 {
		colWidth = width/len(columns) - 4
	}
	rendered := make([]string, 0, len(columns))
	for i, col := range columns {
		rendered = append(rendered, renderColumn(col, colWidth, i == activeColumn, cursor, dragging))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderPlan(plan *models.DailyPlan) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Daily plan "))
	if plan.Fallback {
		b.WriteString(" " + mutedStyle.Render("(heuristic)"))
	}
	b.WriteString("\n\n")
	for i, t := range plan.Tasks {
		fmt.Fprintf(&b, "%d. %s  %s  %s\n", i+1, t.Title, mutedStyle.Render(formatMinutes(t.EstimatedMinutes)), t.Priority)
		if t.Description != nil && *t.Description != "" {
			fmt.Fprintf(&b, "   %s\n", mutedStyle.Render(*t.Description))
		}
	}
	fmt.Fprintf(&b, "\nTotal: %s\n%s", formatMinutes(plan.TotalEstimatedMinutes), plan.PlanSummary)
	return b.String()
}

func renderSummary(s *models.UserSummary) string {
	lines := []struct {
		label string
		value string
	}{
		{"Tasks", fmt.Sprint(s.TotalTasks)},
		{"To do", fmt.Sprint(s.TodoTasks)},
		{"In progress", fmt.Sprint(s.InProgressTasks)},
		{"Done", fmt.Sprint(s.CompletedTasks)},
		{"Logged", formatMinutes(s.TotalMinutesLogged)},
		{"Avg per task", fmt.Sprintf("%.1fm", s.AverageMinutesPerTask)},
		{"Completion", fmt.Sprintf("%.1f%%", s.CompletionRate)},
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Summary"))
	for _, l := range lines {
		fmt.Fprintf(&b, "\n  %-14s %s", l.label, l.value)
	}
	return b.String()
}

func renderTopUsers(stats []*models.UserStats) string {
	if len(stats) == 0 {
		return mutedStyle.Render("No users.")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-28s  %5s  %5s  %7s  %6s", "USER", "TASKS", "DONE", "TIME", "RATE")))
	for _, s := range stats {
		fmt.Fprintf(&b, "\n%-28s  %5d  %5d  %7s  %5.1f%%", s.Email, s.TotalTasks, s.CompletedTasks, formatMinutes(s.TotalMinutes), s.CompletionRate)
	}
	return b.String()
}

func renderUsers(users []*models.User) string {
	if len(users) == 0 {
		return mutedStyle.Render("No users.")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-36s  %-28s  %-20s  %s", "ID", "EMAIL", "NAME", "ROLE")))
	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(&b, "\n%-36s  %-28s  %-20s  %s", u.ID, u.Email, u.FullName, role)
	}
	return b.String()
}
