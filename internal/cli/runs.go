package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"klondike/internal/persistence"
)

// newRunsCommand creates the "runs" subcommand that inspects stored
// simulation runs.
func newRunsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored simulation runs and their games",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			dsn, err := cmd.Flags().GetString("store")
			if err != nil {
				return err
			}
			if dsn == "" {
				var se simulateEnv
				if err := parseEnv(&se); err != nil {
					return err
				}
				dsn = se.StoreDSN
			}
			if dsn == "" {
				return fmt.Errorf("a store DSN is required (--store or KLONDIKE_STORE_DSN)")
			}

			logger.Debug("opening simulation store")
			store, closeStore, err := openPostgresStore(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer closeStore()

			runID, err := cmd.Flags().GetString("run")
			if err != nil {
				return err
			}
			if runID != "" {
				return printRunDetail(store, runID)
			}
			return printRunList(store)
		},
	}

	cmd.Flags().String("store", "", "Postgres DSN of the simulation store")
	cmd.Flags().String("run", "", "Show one run and its stored games")

	return cmd
}

// printRunList writes one line per stored run, newest first.
func printRunList(store persistence.Repository) error {
	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	for _, run := range runs {
		fmt.Println(formatRun(run))
	}
	return nil
}

// printRunDetail writes a run's header and every stored game.
func printRunDetail(store persistence.Repository, runID string) error {
	run, found, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("run %q is not in the store", runID)
	}

	fmt.Println(formatRun(run))
	fmt.Printf("started: %s\n", run.StartedAt.Format(time.RFC3339))
	if run.EndedAt != nil {
		fmt.Printf("ended: %s\n", run.EndedAt.Format(time.RFC3339))
	}

	games, err := store.ListGames(runID)
	if err != nil {
		return err
	}
	for _, game := range games {
		fmt.Printf("  seed=%d outcome=%s moves=%d draws=%d recycles=%d fallbacks=%d banked=%d\n",
			game.Seed, game.Outcome, game.Moves, game.Draws, game.Recycles, game.Fallbacks, game.Banked)
	}
	return nil
}

// formatRun renders a run record on one line.
func formatRun(run persistence.RunRecord) string {
	line := fmt.Sprintf("%s  advisor=%s status=%s games=%d/%d wins=%d stuck=%d limit=%d",
		run.RunID, run.Advisor, run.Status, run.GamesCompleted, run.GamesRequested,
		run.Wins, run.Stuck, run.LimitHit)
	if run.Error != "" {
		line += " error=" + run.Error
	}
	return line
}
