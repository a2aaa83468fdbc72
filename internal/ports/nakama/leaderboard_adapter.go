package nakama

import (
	"context"
	"fmt"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	dailyLeaderboardID = "daily_challenge"

	// dailyLeaderboardReset rotates the board at UTC midnight, matching
	// the challenge day boundary.
	dailyLeaderboardReset = "0 0 * * *"
)

// leaderboardWriter is the slice of runtime.NakamaModule the leaderboard
// adapter needs.
type leaderboardWriter interface {
	LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, enableRanks bool) error
	LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error)
}

// NakamaLeaderboardAdapter implements ports.LeaderboardPort on Nakama leaderboards.
type NakamaLeaderboardAdapter struct {
	boards leaderboardWriter
}

// NewNakamaLeaderboardAdapter creates a new leaderboard adapter.
func NewNakamaLeaderboardAdapter(nk runtime.NakamaModule) *NakamaLeaderboardAdapter {
	return &NakamaLeaderboardAdapter{boards: nk}
}

// EnsureDailyBoard creates the daily challenge leaderboard. Fewest moves
// ranks best and the board resets with the challenge day.
func (a *NakamaLeaderboardAdapter) EnsureDailyBoard(ctx context.Context) error {
	err := a.boards.LeaderboardCreate(ctx, dailyLeaderboardID, true, "asc", "best", dailyLeaderboardReset, map[string]interface{}{
		"game": "klondike",
	}, true)
	if err != nil {
		return fmt.Errorf("failed to create daily leaderboard: %w", err)
	}
	return nil
}

// SubmitDailyScore writes a completed daily run scored by fewest moves.
func (a *NakamaLeaderboardAdapter) SubmitDailyScore(ctx context.Context, userID, username, day string, moves int) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	if moves <= 0 {
		return fmt.Errorf("moves must be positive")
	}

	_, err := a.boards.LeaderboardRecordWrite(ctx, dailyLeaderboardID, userID, username, int64(moves), 0, map[string]interface{}{
		"day": day,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to write daily record: %w", err)
	}
	return nil
}

var _ ports.LeaderboardPort = (*NakamaLeaderboardAdapter)(nil)
