package bot

import (
	"sort"

	botinternal "klondike/internal/bot/internal"
	"klondike/internal/domain"
)

// ScoredBot weighs every legal move by phase-tuned heuristics and plays
// the best one, drawing when nothing scores above the pass threshold.
type ScoredBot struct{}

func (b *ScoredBot) SuggestMove(state domain.GameState) (Move, error) {
	candidates := botinternal.GetValidMoves(state)
	if len(candidates) == 0 {
		return drawOrPass(state), nil
	}

	phase := botinternal.DetectPhase(state)
	weights := DefaultTuning.ForPhase(phase)
	scored := botinternal.BuildScoredMoves(candidates, weights)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Move.Source != scored[j].Move.Source {
			return scored[i].Move.Source < scored[j].Move.Source
		}
		return scored[i].Move.Target < scored[j].Move.Target
	})

	best := scored[0]
	if best.Score < DefaultTuning.PassThreshold {
		return drawOrPass(state), nil
	}
	return moveFrom(best.Move), nil
}

// drawOrPass falls back to a stock draw while any card remains in the
// draw cycle, and passes once stock and waste are both empty.
func drawOrPass(state domain.GameState) Move {
	if len(state.Stock) > 0 || len(state.Waste) > 0 {
		return Move{Draw: true}
	}
	return Move{Pass: true}
}

func moveFrom(candidate botinternal.ValidMove) Move {
	return Move{
		Source: candidate.Source,
		Index:  candidate.Index,
		Target: candidate.Target,
	}
}
