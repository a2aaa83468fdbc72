package sim

import (
	"context"
	"errors"
	"fmt"

	"klondike/internal/bot"
	"klondike/internal/domain"
)

const defaultMaxMovesPerGame = 600

var (
	ErrRunnerMisconfigured = errors.New("runner misconfigured")
	ErrInvalidGamesToRun   = errors.New("games to run must be greater than zero")
	ErrContextCancelled    = errors.New("runner context cancelled")
)

// Outcome classifies a finished playout.
type Outcome string

const (
	// OutcomeWon means all 52 cards reached the foundations.
	OutcomeWon Outcome = "won"
	// OutcomeStuck means the advisor found no play across a full stock
	// cycle, or passed outright.
	OutcomeStuck Outcome = "stuck"
	// OutcomeMoveLimit means the game hit the per-game move ceiling.
	OutcomeMoveLimit Outcome = "move_limit"
)

// RunnerConfig tunes a batch run.
type RunnerConfig struct {
	// MaxMovesPerGame caps run moves in one playout. Zero means the
	// default of 600.
	MaxMovesPerGame int
	// OnGameComplete is invoked after each finished playout.
	OnGameComplete func(GameSummary)
}

// Runner plays seeded deals with an advisor brain.
type Runner struct {
	brain  bot.Brain
	config RunnerConfig
}

// New builds a runner around the given brain.
func New(brain bot.Brain, config RunnerConfig) Runner {
	return Runner{
		brain:  brain,
		config: config,
	}
}

// RunGamesInput describes one batch of seeded playouts.
type RunGamesInput struct {
	StartingSeed int64
	GamesToRun   int
}

// GameSummary reports one finished playout.
type GameSummary struct {
	Seed       int64
	Outcome    Outcome
	Moves      int
	Draws      int
	Recycles   int
	Fallbacks  int
	Banked     int
	FinalState domain.GameState
}

// RunGamesResult aggregates a batch.
type RunGamesResult struct {
	GamesCompleted int
	Wins           int
	Stuck          int
	LimitHit       int
	TotalMoves     int
	TotalDraws     int
	TotalFallbacks int
	GameSummaries  []GameSummary
}

// WinRate is the fraction of completed games that were won.
func (r RunGamesResult) WinRate() float64 {
	if r.GamesCompleted == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.GamesCompleted)
}

// RunGames plays GamesToRun consecutive seeds starting at StartingSeed.
func (r Runner) RunGames(ctx context.Context, input RunGamesInput) (RunGamesResult, error) {
	var result RunGamesResult

	if input.GamesToRun <= 0 {
		return result, ErrInvalidGamesToRun
	}
	if r.brain == nil {
		return result, ErrRunnerMisconfigured
	}

	result.GameSummaries = make([]GameSummary, 0, input.GamesToRun)

	for i := 0; i < input.GamesToRun; i++ {
		if err := checkContext(ctx); err != nil {
			return result, err
		}

		summary, err := r.RunGame(ctx, input.StartingSeed+int64(i))
		if err != nil {
			return result, err
		}

		result.GamesCompleted++
		result.TotalMoves += summary.Moves
		result.TotalDraws += summary.Draws
		result.TotalFallbacks += summary.Fallbacks
		switch summary.Outcome {
		case OutcomeWon:
			result.Wins++
		case OutcomeStuck:
			result.Stuck++
		case OutcomeMoveLimit:
			result.LimitHit++
		}
		result.GameSummaries = append(result.GameSummaries, summary)
		if r.config.OnGameComplete != nil {
			r.config.OnGameComplete(summary)
		}
	}

	return result, nil
}

// RunGame plays a single seeded deal to its outcome.
func (r Runner) RunGame(ctx context.Context, seed int64) (GameSummary, error) {
	summary := GameSummary{Seed: seed}

	if r.brain == nil {
		return summary, ErrRunnerMisconfigured
	}

	maxMoves := r.config.MaxMovesPerGame
	if maxMoves <= 0 {
		maxMoves = defaultMaxMovesPerGame
	}

	state, err := domain.NewGame(domain.NewSeededShuffler(seed))
	if err != nil {
		return summary, err
	}

	finish := func(outcome Outcome) (GameSummary, error) {
		summary.Outcome = outcome
		summary.Banked = state.FoundationCardCount()
		summary.FinalState = state.Clone()
		return summary, nil
	}

	drawsSinceMove := 0
	for {
		if state.IsWon() {
			return finish(OutcomeWon)
		}
		if summary.Moves >= maxMoves {
			return finish(OutcomeMoveLimit)
		}
		if err := checkContext(ctx); err != nil {
			return summary, err
		}

		move, err := r.brain.SuggestMove(state)
		if err != nil {
			move = fallbackMove(state)
			summary.Fallbacks++
		}

		if !move.Pass && !move.Draw {
			next, applied, err := domain.MoveRun(state, move.Source, move.Index, move.Target)
			if err == nil && applied {
				state = next
				summary.Moves++
				drawsSinceMove = 0
				continue
			}
			// The advisor misjudged. Degrade to a draw so one bad
			// suggestion cannot sink the whole batch.
			move = fallbackMove(state)
			summary.Fallbacks++
		}

		if move.Pass {
			return finish(OutcomeStuck)
		}

		drawsSinceMove++
		if drawsSinceMove > domain.DeckSize {
			// Full cycle without a play.
			return finish(OutcomeStuck)
		}
		if len(state.Stock) == 0 && len(state.Waste) > 0 {
			summary.Recycles++
		}
		state = domain.DrawFromStock(state)
		summary.Draws++
	}
}

// fallbackMove draws while any card remains in the cycle and passes
// otherwise.
func fallbackMove(state domain.GameState) bot.Move {
	if len(state.Stock) > 0 || len(state.Waste) > 0 {
		return bot.Move{Draw: true}
	}
	return bot.Move{Pass: true}
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
	default:
		return nil
	}
}
