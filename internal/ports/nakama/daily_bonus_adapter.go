package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// dailyBonusCollection keys claim markers by challenge day, so each day
// grants at most once per user.
const dailyBonusCollection = "daily"

// NakamaDailyBonusAdapter grants the daily challenge bonus using Nakama
// storage + wallet updates.
type NakamaDailyBonusAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaDailyBonusAdapter creates a new daily bonus adapter.
func NewNakamaDailyBonusAdapter(nk runtime.NakamaModule) *NakamaDailyBonusAdapter {
	return &NakamaDailyBonusAdapter{nk: nk}
}

// GrantDailyBonusOnce grants the day's bonus and records the claim marker atomically.
func (a *NakamaDailyBonusAdapter) GrantDailyBonusOnce(ctx context.Context, userID, day string, amount int64, metadata map[string]interface{}) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if day == "" {
		return false, fmt.Errorf("day is required")
	}
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	marker := map[string]interface{}{
		"amount":     amount,
		"granted_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(marker)
	if err != nil {
		return false, fmt.Errorf("failed to marshal daily bonus marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      dailyBonusCollection,
			Key:             day,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	walletUpdates := []*runtime.WalletUpdate{
		{
			UserID:    userID,
			Changeset: map[string]int64{"gold": amount},
			Metadata:  metadata,
		},
	}

	_, _, err = a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to grant daily bonus: %w", err)
	}

	return true, nil
}

var _ ports.DailyBonusPort = (*NakamaDailyBonusAdapter)(nil)
