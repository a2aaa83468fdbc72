package bot

import (
	"klondike/internal/domain"
)

// Move represents the decision made by the advisor.
type Move struct {
	// Pass is set when no productive play exists, drawing included.
	Pass bool
	// Draw is set when the advisor wants a stock draw.
	Draw bool

	Source domain.PileID
	Index  int
	Target domain.PileID
}

// Brain is the interface all advisor strategies implement.
type Brain interface {
	SuggestMove(state domain.GameState) (Move, error)
}
