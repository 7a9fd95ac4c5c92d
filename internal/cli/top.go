package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentethos/ethos/internal/config"
	"github.com/agentethos/ethos/internal/engine"
	"github.com/agentethos/ethos/internal/ledger"
	"github.com/agentethos/ethos/internal/store"
)

// TopOptions holds flags for the top command.
type TopOptions struct {
	*RootOptions
	ConfigPath string
	Database   string
	Limit      int
}

// NewTopCommand creates the top command, which prints the leaderboard
// straight from the database without going through the HTTP API.
func NewTopCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TopOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the reputation leaderboard",
		Long: `Print the reputation leaderboard from a local database.

Agents are ordered by reputation descending; ties break by earlier
registration.

Example:
  ethos top --db ./ethos.db
  ethos top --db ./ethos.db --limit 10 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTop(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max agents to print (0 = default)")

	return cmd
}

func runTop(opts *TopOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DatabasePath = opts.Database
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	eng := engine.New(st, engine.Limits{MaxLeaderboard: cfg.LeaderboardLimit})
	agents, err := eng.Leaderboard(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read leaderboard", err)
	}

	out := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if opts.Format == "json" {
		return out.Success(agents)
	}
	return out.Success(formatLeaderboard(agents))
}

// formatLeaderboard renders the text table:
//
//	RANK  REPUTATION  NAME
//	1     12          alpha
func formatLeaderboard(agents []ledger.Agent) string {
	var b strings.Builder
	b.WriteString("RANK  REPUTATION  NAME")
	for i, a := range agents {
		fmt.Fprintf(&b, "\n%-5d %-11d %s", i+1, a.Reputation, a.Name)
	}
	return b.String()
}
