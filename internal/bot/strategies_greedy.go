package bot

import (
	botinternal "klondike/internal/bot/internal"
	"klondike/internal/domain"
)

// GreedyBot implements the "Bank First" strategy: take the first
// foundation move, then the first flip, then any waste play, then a
// buried King to an empty pile, and draw otherwise. It never reshuffles
// the tableau for its own sake.
type GreedyBot struct{}

func (b *GreedyBot) SuggestMove(state domain.GameState) (Move, error) {
	candidates := botinternal.GetValidMoves(state)

	for _, c := range candidates {
		if c.ToFoundation {
			return moveFrom(c), nil
		}
	}
	for _, c := range candidates {
		if c.Flips {
			return moveFrom(c), nil
		}
	}
	for _, c := range candidates {
		if c.FromWaste {
			return moveFrom(c), nil
		}
	}
	for _, c := range candidates {
		if c.KingToEmpty && !c.EmptiesSource {
			return moveFrom(c), nil
		}
	}
	return drawOrPass(state), nil
}
