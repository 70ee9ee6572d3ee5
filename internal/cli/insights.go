package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/sprintsync/internal/query"
)

func newPlanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Suggest a plan for today from your open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			plan, err := query.Get(ctx, a.cache, query.KeyDailyPlan, a.client.DailyPlan)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlan(plan))
			return nil
		},
	}
}

func newSuggestCommand(a *app) *cobra.Command {
	var taskContext string

	cmd := &cobra.Command{
		Use:   "suggest <title>",
		Short: "Suggest a description for a task title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			var extra *string
			if taskContext != "" {
				extra = &taskContext
			}
			suggestion, err := a.client.SuggestDescription(ctx, strings.Join(args, " "), extra)
			if err != nil {
				return explain(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, suggestion.Suggestion)
			if suggestion.Fallback {
				fmt.Fprintln(out, mutedStyle.Render("(template suggestion, AI unavailable)"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&taskContext, "context", "c", "", "extra context for the suggestion")
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	var top, recent bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show your task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			out := cmd.OutOrStdout()

			summary, err := query.Get(ctx, a.cache, query.KeyStatsSummary, a.client.UserSummary)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintln(out, renderSummary(summary))

			if recent {
				activity, err := a.client.RecentActivity(ctx)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, headerStyle.Render("Last 7 days"))
				for _, e := range activity.RecentTasks {
					fmt.Fprintf(out, "  %s  %-12s %s\n", e.UpdatedAt.Format("Jan 02 15:04"), e.Status, e.Title)
				}
			}

			if top {
				stats, err := a.client.TopUsers(ctx)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTopUsers(stats))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&top, "top", false, "include the top users table (admin)")
	cmd.Flags().BoolVar(&recent, "recent", false, "include recently updated tasks")
	return cmd
}
