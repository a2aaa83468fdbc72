package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"klondike/internal/bot"
	"klondike/internal/config"
	"klondike/internal/persistence"
	"klondike/internal/sim"
)

// newSimulateCommand creates the "simulate" subcommand that plays a
// batch of seeded deals with an advisor strategy.
func newSimulateCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play seeded deals with an advisor and report win rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return err
			}
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file %q: %w", envFile, err)
				}
			}

			var se simulateEnv
			if err := parseEnv(&se); err != nil {
				return err
			}

			batch, err := resolveBatch(cmd, se)
			if err != nil {
				return err
			}

			loadOptionalGameConfig(opts, logger)

			level, err := bot.ParseLevel(batch.Advisor)
			if err != nil {
				return err
			}
			brain, err := bot.NewBrain(level)
			if err != nil {
				return err
			}

			maxMoves := batch.MaxMovesPerGame
			if maxMoves <= 0 {
				maxMoves = config.GetMaxMovesPerGame()
			}

			runner := sim.New(brain, sim.RunnerConfig{
				MaxMovesPerGame: maxMoves,
				OnGameComplete: func(s sim.GameSummary) {
					logger.Debug("game finished",
						"seed", s.Seed,
						"outcome", s.Outcome,
						"moves", s.Moves,
						"draws", s.Draws,
						"banked", s.Banked,
					)
				},
			})

			var store persistence.Repository
			if se.StoreDSN != "" {
				repo, closeStore, err := openPostgresStore(cmd.Context(), se.StoreDSN)
				if err != nil {
					return err
				}
				defer closeStore()
				store = repo
			}

			startedAt := time.Now().UTC()
			if store != nil {
				if err := store.UpsertRun(persistence.RunRecord{
					RunID:          batch.Name,
					Advisor:        batch.Advisor,
					StartingSeed:   batch.Seed,
					GamesRequested: batch.Games,
					Status:         persistence.RunStatusRunning,
					StartedAt:      startedAt,
				}); err != nil {
					return fmt.Errorf("record run start: %w", err)
				}
			}

			logger.Info("starting simulation",
				"run", batch.Name,
				"advisor", batch.Advisor,
				"seed", batch.Seed,
				"games", batch.Games,
			)

			result, runErr := runner.RunGames(cmd.Context(), sim.RunGamesInput{
				StartingSeed: batch.Seed,
				GamesToRun:   batch.Games,
			})

			if store != nil {
				if err := storeResult(store, batch, startedAt, result, runErr); err != nil {
					logger.Error("failed to store run", "error", err)
				}
			}
			if runErr != nil {
				return runErr
			}

			printResult(batch, result)
			return nil
		},
	}

	cmd.Flags().Int64("seed", 1, "Starting seed; later games use consecutive seeds")
	cmd.Flags().Int("games", 100, "Number of deals to play")
	cmd.Flags().String("advisor", "", "Advisor strategy (greedy, scored)")
	cmd.Flags().String("run-id", "", "Identifier for the stored run")
	cmd.Flags().String("scenario", "", "Path to a YAML scenario file")
	cmd.Flags().String("env-file", "", "Path to a .env file loaded before KLONDIKE_* vars are read")

	return cmd
}

// batchSpec is the resolved description of one simulation batch.
type batchSpec struct {
	Name            string
	Advisor         string
	Seed            int64
	Games           int
	MaxMovesPerGame int
}

// resolveBatch merges scenario file, KLONDIKE_* env vars, and flags.
// Flags win over the scenario, the scenario wins over env vars.
func resolveBatch(cmd *cobra.Command, se simulateEnv) (batchSpec, error) {
	batch := batchSpec{Advisor: "scored", Seed: 1, Games: 100}

	if se.Advisor != "" {
		batch.Advisor = se.Advisor
	}
	if se.Seed != 0 {
		batch.Seed = se.Seed
	}
	if se.Games > 0 {
		batch.Games = se.Games
	}

	scenarioPath, err := cmd.Flags().GetString("scenario")
	if err != nil {
		return batch, err
	}
	if scenarioPath != "" {
		scenario, err := sim.LoadScenario(scenarioPath)
		if err != nil {
			return batch, err
		}
		batch.Name = scenario.Name
		batch.Advisor = scenario.Advisor
		batch.Seed = scenario.Seed
		batch.Games = scenario.Games
		batch.MaxMovesPerGame = scenario.MaxMovesPerGame
	}

	if cmd.Flags().Changed("advisor") {
		batch.Advisor, _ = cmd.Flags().GetString("advisor")
	}
	if cmd.Flags().Changed("seed") {
		batch.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("games") {
		batch.Games, _ = cmd.Flags().GetInt("games")
	}
	if cmd.Flags().Changed("run-id") {
		batch.Name, _ = cmd.Flags().GetString("run-id")
	}
	if batch.Name == "" {
		batch.Name = fmt.Sprintf("%s-seed%d-x%d", batch.Advisor, batch.Seed, batch.Games)
	}

	return batch, nil
}

// loadOptionalGameConfig loads the game config when the file exists.
// Simulations run fine on defaults.
func loadOptionalGameConfig(opts *Options, logger *slog.Logger) {
	if _, err := os.Stat(opts.ConfigPath); err != nil {
		logger.Debug("game config not found, using defaults", "path", opts.ConfigPath)
		return
	}
	if err := config.LoadGameConfig(opts.ConfigPath); err != nil {
		logger.Debug("game config load failed, using defaults", "path", opts.ConfigPath, "error", err)
	}
}

// storeResult finalizes the stored run and appends per-game records.
func storeResult(store persistence.Repository, batch batchSpec, startedAt time.Time, result sim.RunGamesResult, runErr error) error {
	endedAt := time.Now().UTC()
	record := persistence.RunRecord{
		RunID:          batch.Name,
		Advisor:        batch.Advisor,
		StartingSeed:   batch.Seed,
		GamesRequested: batch.Games,
		GamesCompleted: result.GamesCompleted,
		Wins:           result.Wins,
		Stuck:          result.Stuck,
		LimitHit:       result.LimitHit,
		TotalMoves:     result.TotalMoves,
		TotalDraws:     result.TotalDraws,
		Status:         persistence.RunStatusCompleted,
		StartedAt:      startedAt,
		EndedAt:        &endedAt,
	}
	if runErr != nil {
		record.Status = persistence.RunStatusFailed
		record.Error = runErr.Error()
	}
	if err := store.UpsertRun(record); err != nil {
		return err
	}

	for _, s := range result.GameSummaries {
		if err := store.AppendGame(persistence.GameRecord{
			RunID:      batch.Name,
			Seed:       s.Seed,
			Outcome:    string(s.Outcome),
			Moves:      s.Moves,
			Draws:      s.Draws,
			Recycles:   s.Recycles,
			Fallbacks:  s.Fallbacks,
			Banked:     s.Banked,
			FinalState: s.FinalState,
			At:         endedAt,
		}); err != nil {
			return err
		}
	}
	return nil
}

// printResult writes the human-readable batch summary to stdout.
func printResult(batch batchSpec, result sim.RunGamesResult) {
	fmt.Printf("run: %s\n", batch.Name)
	fmt.Printf("advisor: %s\n", batch.Advisor)
	fmt.Printf("seeds: %d..%d\n", batch.Seed, batch.Seed+int64(batch.Games)-1)
	fmt.Printf("games: %d\n", result.GamesCompleted)
	fmt.Printf("wins: %d (%.1f%%)\n", result.Wins, result.WinRate()*100)
	fmt.Printf("stuck: %d\n", result.Stuck)
	fmt.Printf("move limit: %d\n", result.LimitHit)
	if result.GamesCompleted > 0 {
		fmt.Printf("avg moves: %.1f\n", float64(result.TotalMoves)/float64(result.GamesCompleted))
		fmt.Printf("avg draws: %.1f\n", float64(result.TotalDraws)/float64(result.GamesCompleted))
	}
}
