package ports

import "context"

// PlayerStats is the per-user solitaire record kept in storage.
type PlayerStats struct {
	GamesPlayed   int `json:"games_played"`
	GamesWon      int `json:"games_won"`
	TotalMoves    int `json:"total_moves"`
	BestMoves     int `json:"best_moves"` // fewest moves in a won game, 0 until the first win
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// StatsPort reads and updates player statistics.
type StatsPort interface {
	// RecordResult folds one finished game into the user's stats and
	// returns the updated record.
	RecordResult(ctx context.Context, userID string, won bool, moves int) (PlayerStats, error)

	// GetStats returns the user's stats, zero-valued when absent.
	GetStats(ctx context.Context, userID string) (PlayerStats, error)
}
