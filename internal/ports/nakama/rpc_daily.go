package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"klondike/internal/app"
	"klondike/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// DailyInfoResponse reports today's challenge and the caller's claim state.
type DailyInfoResponse struct {
	Day     string `json:"day"`
	Claimed bool   `json:"claimed"`
}

// DailyClaimRequest carries the challenge token issued on a daily win.
type DailyClaimRequest struct {
	Token string `json:"token"`
}

// DailyClaimResponse reports what the claim granted.
type DailyClaimResponse struct {
	Day       string `json:"day"`
	Moves     int    `json:"moves"`
	Granted   bool   `json:"granted"`
	BonusGold int64  `json:"bonus_gold"`
}

// dailyServiceFromEnv builds the daily service with the signing secret
// from the runtime environment.
func dailyServiceFromEnv(ctx context.Context) *app.DailyService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	return app.NewDailyService(env["klondike_daily_secret"], app.DailyIssuer)
}

// rpcDailyInfo returns today's challenge day and whether the caller has
// already claimed it.
//
// Payload: (Optional) Unused for now.
// Returns: DailyInfoResponse JSON.
func rpcDailyInfo(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", fmt.Errorf("daily_info requires an authenticated user")
	}

	day := dailyServiceFromEnv(ctx).Today()

	objects, err := nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: dailyBonusCollection, Key: day, UserID: userID},
	})
	if err != nil {
		logger.Error("rpcDailyInfo [User:%s]: Failed to read claim marker: %v", userID, err)
		return "", err
	}

	b, _ := json.Marshal(DailyInfoResponse{Day: day, Claimed: len(objects) > 0})
	return string(b), nil
}

// rpcDailyClaim verifies a challenge token, writes the leaderboard
// record, and grants the once-per-day bonus.
//
// Payload: DailyClaimRequest JSON.
// Returns: DailyClaimResponse JSON.
func rpcDailyClaim(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", fmt.Errorf("daily_claim requires an authenticated user")
	}

	request := &DailyClaimRequest{}
	if err := json.Unmarshal([]byte(payload), request); err != nil {
		return "", fmt.Errorf("invalid daily_claim payload: %w", err)
	}

	result, err := dailyServiceFromEnv(ctx).VerifyToken(request.Token)
	if err != nil {
		logger.Warn("rpcDailyClaim [User:%s]: Token rejected: %v", userID, err)
		return "", fmt.Errorf("challenge token rejected: %w", err)
	}
	if result.UserID != userID {
		return "", fmt.Errorf("challenge token belongs to another user")
	}

	username := userID
	if account, err := nk.AccountGetId(ctx, userID); err == nil && account.User != nil {
		username = account.User.Username
	}

	// The board keeps the best score even when the bonus was already
	// claimed, so a better run later in the day still counts.
	if err := NewNakamaLeaderboardAdapter(nk).SubmitDailyScore(ctx, userID, username, result.Day, result.Moves); err != nil {
		logger.Error("rpcDailyClaim [User:%s]: %v", userID, err)
		return "", err
	}

	bonus := config.GetDailyBonus()
	granted, err := NewNakamaDailyBonusAdapter(nk).GrantDailyBonusOnce(ctx, userID, result.Day, bonus, map[string]interface{}{
		"reason": "daily_challenge",
		"day":    result.Day,
	})
	if err != nil {
		logger.Error("rpcDailyClaim [User:%s]: Failed to grant bonus: %v", userID, err)
		return "", err
	}

	response := DailyClaimResponse{Day: result.Day, Moves: result.Moves, Granted: granted}
	if granted {
		response.BonusGold = bonus
	}
	b, _ := json.Marshal(response)
	return string(b), nil
}
