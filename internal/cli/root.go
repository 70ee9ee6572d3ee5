package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adanyl0v/sprintsync/internal/board"
	"github.com/adanyl0v/sprintsync/internal/client"
	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/query"
)

var (
	appVersion = "dev"
	appCommit  = "none"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit string) {
	appVersion = version
	appCommit = commit
}

// app is everything a command needs once configuration is read.
type app struct {
	cfg      *Config
	logger   zerolog.Logger
	client   *client.Client
	cache    *query.Cache
	board    *board.Board
	policy   models.TransitionPolicy
	notifier board.Notifier
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

type rootOptions struct {
	// store overrides the session file, for tests.
	store client.TokenStore
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCommand(rootOptions{}).ExecuteContext(ctx)
}

func newRootCommand(opts rootOptions) *cobra.Command {
	var (
		configPath string
		a          = new(app)
	)

	root := &cobra.Command{
		Use:          "sprintsync",
		Short:        "SprintSync task board client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := newViper(configPath)
			for _, name := range []string{"api-url", "log-level"} {
				if err := v.BindPFlag(flagKey(name), cmd.Flag(name)); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return a.init(cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	root.PersistentFlags().String("api-url", "", "SprintSync API base URL")
	root.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newVersionCommand(),
		newHealthCommand(a),
		newRegisterCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newTasksCommand(a),
		newShowCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newMoveCommand(a),
		newAdvanceCommand(a),
		newLogCommand(a),
		newAssignCommand(a),
		newRemoveCommand(a),
		newBoardCommand(a),
		newPlanCommand(a),
		newSuggestCommand(a),
		newStatsCommand(a),
		newUsersCommand(a),
	)
	return root
}

// flagKey maps a dashed flag to its config key.
func flagKey(name string) string {
	switch name {
	case "api-url":
		return "api_url"
	case "log-level":
		return "log_level"
	}
	return name
}

func (a *app) init(cfg *Config, opts rootOptions, out, errOut io.Writer) error {
	a.cfg = cfg
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: errOut, NoColor: errOut != os.Stderr}).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Logger()

	store := opts.store
	if store == nil {
		store = client.NewFileTokenStore(cfg.SessionFile)
	}
	session := client.NewSession(store)
	if err := session.Init(); err != nil {
		a.logger.Warn().Err(err).Msg("ignoring unreadable session")
	}

	c, err := client.New(cfg.APIURL, session,
		client.WithLogger(a.logger.With().Str("component", "client").Logger()),
	)
	if err != nil {
		return err
	}
	a.client = c

	retries := cfg.ReadRetries
	if retries == 0 {
		retries = -1
	}
	a.cache = query.New(query.Options{
		StaleTime:   cfg.StaleTime,
		ReadRetries: retries,
		ShouldRetry: client.Retryable,
		Logger:      a.logger.With().Str("component", "cache").Logger(),
	})

	a.policy, err = models.PolicyByName(cfg.Policy)
	if err != nil {
		return err
	}
	a.notifier = &writerNotifier{out: out}
	a.board = board.New(board.Params{
		API:      c,
		Cache:    a.cache,
		Policy:   a.policy,
		Notifier: a.notifier,
		Logger:   a.logger.With().Str("component", "board").Logger(),
	})
	return nil
}

// ctx applies the configured request timeout to the command context.
func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

// requireLogin fails fast when there is no stored token.
func (a *app) requireLogin() error {
	if !a.client.Session().Authenticated() {
		return fmt.Errorf("not signed in: run `sprintsync login` first")
	}
	return nil
}

// explain turns a 401 into a hint to sign in again.
func explain(err error) error {
	if client.IsUnauthorized(err) {
		return fmt.Errorf("%w (session expired? run `sprintsync login`)", err)
	}
	return err
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		PersistentPostRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sprintsync %s\ncommit: %s\n", appVersion, appCommit)
		},
	}
}
