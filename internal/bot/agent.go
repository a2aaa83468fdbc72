package bot

import (
	"klondike/internal/domain"
)

// Agent wraps a Brain with the display identity used when hints are
// delivered to a player.
type Agent struct {
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for the given level. An unknown level falls
// back to the scored strategy.
func NewAgent(name string, level BotLevel) *Agent {
	brain, err := NewBrain(level)
	if err != nil {
		brain = &ScoredBot{}
	}
	return &Agent{Name: name, Strategy: brain}
}

// Suggest asks the agent for its move. Strategy failures degrade to a
// pass so callers never act on a half-formed move.
func (a *Agent) Suggest(state domain.GameState) (Move, error) {
	move, err := a.Strategy.SuggestMove(state)
	if err != nil {
		return Move{Pass: true}, err
	}
	return move, nil
}
