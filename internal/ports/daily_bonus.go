package ports

import "context"

// DailyBonusPort grants the daily challenge bonus at most once per day.
type DailyBonusPort interface {
	// GrantDailyBonusOnce attempts to grant the bonus for a challenge
	// day. Returns granted=false when that day was already claimed.
	GrantDailyBonusOnce(ctx context.Context, userID, day string, amount int64, metadata map[string]interface{}) (bool, error)
}
