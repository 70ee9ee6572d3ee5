package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/sprintsync/internal/board"
	"github.com/adanyl0v/sprintsync/internal/models"
)

type columnsLoadedMsg struct {
	columns []board.Column
	err     error
}

type mutationDoneMsg struct {
	err error
}

// boardModel is the interactive board. All task state comes from the board
// controller and its cache; the model only tracks the cursor and input.
type boardModel struct {
	ctx     context.Context
	board   *board.Board
	notices *lastNotifier

	columns []board.Column
	col     int
	row     int
	width   int

	loading bool
	err     error

	// logging is the task whose time is being entered, if any.
	logging *models.Task
	input   string
}

func newBoardModel(ctx context.Context, b *board.Board, notices *lastNotifier) boardModel {
	return boardModel{
		ctx:     ctx,
		board:   b,
		notices: notices,
		loading: true,
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.load(false)
}

func (m boardModel) load(reload bool) tea.Cmd {
	return func() tea.Msg {
		if reload {
			if _, err := m.board.Reload(m.ctx); err != nil {
				return columnsLoadedMsg{err: err}
			}
		}
		columns, err := m.board.Columns(m.ctx)
		return columnsLoadedMsg{columns: columns, err: err}
	}
}

func (m boardModel) mutate(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{err: fn(m.ctx)}
	}
}

func (m boardModel) selected() *models.Task {
	if m.col < 0 || m.col >= len(m.columns) {
		return nil
	}
	tasks := m.columns[m.col].Tasks
	if m.row < 0 || m.row >= len(tasks) {
		return nil
	}
	return tasks[m.row]
}

func (m *boardModel) clampRow() {
	if m.col >= len(m.columns) {
		m.row = 0
		return
	}
	n := len(m.columns[m.col].Tasks)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case columnsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.columns = msg.columns
			m.clampRow()
		}
		return m, nil

	case mutationDoneMsg:
		// Success and failure are both reported through the notifier.
		m.loading = true
		return m, m.load(false)

	case tea.KeyMsg:
		if m.logging != nil {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m boardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "left", "h":
		if m.col > 0 {
			m.col--
			m.clampRow()
		}
	case "right", "l":
		if m.col < len(m.columns)-1 {
			m.col++
			m.clampRow()
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		m.row++
		m.clampRow()

	case " ", "space":
		if m.board.Dragging() == nil {
			if task := m.selected(); task != nil {
				m.board.DragStart(task)
			}
			return m, nil
		}
		if m.col >= len(m.columns) {
			m.board.CancelDrag()
			return m, nil
		}
		target := m.columns[m.col].Status
		return m, m.mutate(func(ctx context.Context) error {
			_, _, err := m.board.Drop(ctx, &target)
			return err
		})

	case "esc":
		m.board.CancelDrag()

	case "enter", "a":
		task := m.selected()
		if task == nil {
			return m, nil
		}
		return m, m.mutate(func(ctx context.Context) error {
			_, err := m.board.Advance(ctx, task)
			return err
		})

	case "t":
		if task := m.selected(); task != nil {
			m.logging = task
			m.input = ""
		}

	case "x":
		task := m.selected()
		if task == nil {
			return m, nil
		}
		return m, m.mutate(func(ctx context.Context) error {
			return m.board.DeleteTask(ctx, task.ID)
		})

	case "r":
		m.loading = true
		return m, m.load(true)
	}
	return m, nil
}

func (m boardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.logging = nil
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyEnter:
		task, raw := m.logging, m.input
		m.logging, m.input = nil, ""
		return m, m.mutate(func(ctx context.Context) error {
			_, err := m.board.LogTime(ctx, task.ID, raw)
			return err
		})
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m boardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" SprintSync "))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		fmt.Fprintf(&b, "Error: %s\n", m.err)
	case m.loading && m.columns == nil:
		b.WriteString("Loading tasks...\n")
	default:
		b.WriteString(renderColumns(m.columns, m.width, m.col, m.row, m.board.Dragging()))
		b.WriteString("\n")
	}

	if m.logging != nil {
		fmt.Fprintf(&b, "\nMinutes spent on %q: %s_\n", m.logging.Title, m.input)
	}
	if n := m.notices.Last(); n != nil {
		b.WriteString("\n" + renderNotification(*n) + "\n")
	}

	help := "←/→ column | ↑/↓ task | space pick up/drop | esc cancel | enter advance | t log time | x delete | r refresh | q quit"
	b.WriteString("\n" + mutedStyle.Render(help))
	return b.String()
}

func newBoardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Interactive task board",
		Long: `Open the task board in the terminal.

Pick a task up with space, move to another column and press space again to
drop it there. Enter advances a task to the next status and t logs time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			notices := new(lastNotifier)
			b := board.New(board.Params{
				API:      a.client,
				Cache:    a.cache,
				Policy:   a.policy,
				Notifier: notices,
				Logger:   a.logger.With().Str("component", "board").Logger(),
			})

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			p := tea.NewProgram(newBoardModel(ctx, b, notices),
				tea.WithAltScreen(),
				tea.WithContext(ctx),
			)
			_, err := p.Run()
			return err
		},
	}
}
