package ports

import "context"

// LeaderboardPort writes daily challenge scores.
type LeaderboardPort interface {
	// EnsureDailyBoard creates the daily challenge leaderboard if missing.
	EnsureDailyBoard(ctx context.Context) error

	// SubmitDailyScore records a completed daily run, scored by fewest
	// moves. day tags the entry with its challenge day.
	SubmitDailyScore(ctx context.Context, userID, username, day string, moves int) error
}
