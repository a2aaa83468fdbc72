package bot

import (
	"fmt"
)

// BotLevel selects an advisor strategy.
type BotLevel int32

const (
	// BotLevelGreedy plays the first structural gain it finds.
	BotLevelGreedy BotLevel = 1
	// BotLevelScored weighs moves with phase-tuned heuristics.
	BotLevelScored BotLevel = 2
)

// ParseLevel maps a config string onto a BotLevel.
func ParseLevel(name string) (BotLevel, error) {
	switch name {
	case "greedy":
		return BotLevelGreedy, nil
	case "scored":
		return BotLevelScored, nil
	default:
		return 0, fmt.Errorf("unknown bot level %q", name)
	}
}

// NewBrain creates the strategy for the given level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelGreedy:
		return &GreedyBot{}, nil
	case BotLevelScored:
		return &ScoredBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
