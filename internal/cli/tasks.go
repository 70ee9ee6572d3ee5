package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/sprintsync/internal/client"
	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/query"
)

// findTask looks the task up in the cached list before asking the server.
func (a *app) findTask(ctx context.Context, id string) (*models.Task, error) {
	tasks, err := a.board.Tasks(ctx)
	if err != nil {
		return nil, explain(err)
	}
	if i := slices.IndexFunc(tasks, func(t *models.Task) bool { return t.ID == id }); i >= 0 {
		return tasks[i], nil
	}
	task, err := a.client.GetTask(ctx, id)
	if err != nil {
		return nil, explain(err)
	}
	return task, nil
}

func newTasksCommand(a *app) *cobra.Command {
	var (
		status string
		all    bool
	)

	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"ls"},
		Short:   "List your tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			var filter *models.Status
			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = &s
			}

			var (
				tasks []*models.Task
				err   error
			)
			if all {
				tasks, err = query.Get(ctx, a.cache, query.KeyAdminTasks, a.client.ListAllTasks)
			} else {
				tasks, err = a.board.Tasks(ctx)
			}
			if err != nil {
				return explain(err)
			}

			if filter != nil {
				tasks = slices.DeleteFunc(slices.Clone(tasks), func(t *models.Task) bool {
					return t.Status != *filter
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTaskTable(tasks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only show tasks with this status (todo, in-progress, done)")
	cmd.Flags().BoolVar(&all, "all", false, "show every task (admin)")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			task, err := a.client.GetTask(ctx, args[0])
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(" "+task.Title+" "))
			fmt.Fprintf(out, "id:       %s\n", task.ID)
			fmt.Fprintf(out, "status:   %s\n", styleForStatus(task.Status).Render(task.Status.String()))
			fmt.Fprintf(out, "logged:   %s\n", formatMinutes(task.TotalMinutes))
			if task.AssignedTo != nil {
				fmt.Fprintf(out, "assignee: %s\n", *task.AssignedTo)
			}
			if task.Description != nil {
				fmt.Fprintf(out, "\n%s\n", *task.Description)
			}
			return nil
		},
	}
}

func newAddCommand(a *app) *cobra.Command {
	var description, assignee string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			req := client.CreateTaskRequest{Title: args[0]}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if assignee != "" {
				req.AssignedTo = &assignee
			}

			task, err := a.board.CreateTask(ctx, req)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&assignee, "assign", "", "assignee user id (admin)")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var (
		title, description string
		clearDescription   bool
		minutes            int
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change a task's title, description or logged time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			var patch models.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = models.Set(title)
			}
			switch {
			case clearDescription:
				patch.Description = models.Null[string]()
			case flags.Changed("description"):
				patch.Description = models.Set(description)
			}
			if flags.Changed("minutes") {
				patch.TotalMinutes = models.Set(minutes)
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change: pass --title, --description, --clear-description or --minutes")
			}

			_, err := a.board.UpdateTask(ctx, args[0], patch)
			return explain(err)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().BoolVar(&clearDescription, "clear-description", false, "remove the description")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "correct the total logged minutes")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	return cmd
}

func newMoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			task, err := a.findTask(ctx, args[0])
			if err != nil {
				return err
			}

			a.board.DragStart(task)
			_, sent, err := a.board.Drop(ctx, &status)
			if err != nil {
				return explain(err)
			}
			if !sent {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is already in %s\n", task.Title, status)
			}
			return nil
		},
	}
}

func newAdvanceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <task-id>",
		Short: "Move a task to the next status (TODO -> IN_PROGRESS -> DONE -> TODO)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			task, err := a.findTask(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = a.board.Advance(ctx, task)
			return explain(err)
		},
	}
}

func newLogCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log <task-id> <minutes>",
		Short: "Log time spent on a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			task, err := a.board.LogTime(ctx, args[0], args[1])
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %s\n", formatMinutes(task.TotalMinutes))
			return nil
		},
	}
}

func newAssignCommand(a *app) *cobra.Command {
	var unassign bool

	cmd := &cobra.Command{
		Use:   "assign <task-id> [user-id]",
		Short: "Assign a task to a user, or clear the assignee (admin)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var assignee *string
			switch {
			case unassign && len(args) == 1:
			case !unassign && len(args) == 2:
				assignee = &args[1]
			default:
				return fmt.Errorf("pass either a user id or --clear")
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			task, err := query.Mutate(ctx, a.cache, func(ctx context.Context) (*models.Task, error) {
				return a.client.AssignTask(ctx, args[0], assignee)
			}, query.TaskKeys...)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s assigned\n", task.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unassign, "clear", false, "remove the assignee")
	return cmd
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			return explain(a.board.DeleteTask(ctx, args[0]))
		},
	}
}
