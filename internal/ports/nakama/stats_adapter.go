package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	statsCollection = "stats"
	statsKey        = "solitaire_v1"

	// statsWriteRetries bounds the optimistic-concurrency retry loop.
	statsWriteRetries = 3
)

// statsStorage is the slice of runtime.NakamaModule the stats adapter needs.
type statsStorage interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// NakamaStatsAdapter implements ports.StatsPort on Nakama storage with
// version-checked read-modify-write.
type NakamaStatsAdapter struct {
	storage statsStorage
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{storage: nk}
}

// RecordResult folds one finished game into the user's stats and returns
// the updated record. Concurrent writers are resolved by retrying on a
// rejected storage version.
func (a *NakamaStatsAdapter) RecordResult(ctx context.Context, userID string, won bool, moves int) (ports.PlayerStats, error) {
	if userID == "" {
		return ports.PlayerStats{}, fmt.Errorf("userID is required")
	}

	for attempt := 0; attempt < statsWriteRetries; attempt++ {
		stats, version, err := a.readStats(ctx, userID)
		if err != nil {
			return ports.PlayerStats{}, err
		}

		stats.GamesPlayed++
		stats.TotalMoves += moves
		if won {
			stats.GamesWon++
			stats.CurrentStreak++
			if stats.CurrentStreak > stats.BestStreak {
				stats.BestStreak = stats.CurrentStreak
			}
			if stats.BestMoves == 0 || moves < stats.BestMoves {
				stats.BestMoves = moves
			}
		} else {
			stats.CurrentStreak = 0
		}

		value, err := json.Marshal(stats)
		if err != nil {
			return ports.PlayerStats{}, fmt.Errorf("failed to marshal stats: %w", err)
		}

		if version == "" {
			// First write for this user must create, not overwrite.
			version = "*"
		}

		_, err = a.storage.StorageWrite(ctx, []*runtime.StorageWrite{
			{
				Collection:      statsCollection,
				Key:             statsKey,
				UserID:          userID,
				Value:           string(value),
				Version:         version,
				PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
				PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
			},
		})
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return ports.PlayerStats{}, fmt.Errorf("failed to write stats: %w", err)
		}
	}

	return ports.PlayerStats{}, fmt.Errorf("stats write for user %s kept racing, giving up", userID)
}

// GetStats returns the user's stats, zero-valued when absent.
func (a *NakamaStatsAdapter) GetStats(ctx context.Context, userID string) (ports.PlayerStats, error) {
	stats, _, err := a.readStats(ctx, userID)
	return stats, err
}

func (a *NakamaStatsAdapter) readStats(ctx context.Context, userID string) (ports.PlayerStats, string, error) {
	objects, err := a.storage.StorageRead(ctx, []*runtime.StorageRead{
		{
			Collection: statsCollection,
			Key:        statsKey,
			UserID:     userID,
		},
	})
	if err != nil {
		return ports.PlayerStats{}, "", fmt.Errorf("failed to read stats: %w", err)
	}
	if len(objects) == 0 {
		return ports.PlayerStats{}, "", nil
	}

	var stats ports.PlayerStats
	if err := json.Unmarshal([]byte(objects[0].Value), &stats); err != nil {
		return ports.PlayerStats{}, "", fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return stats, objects[0].Version, nil
}

var _ ports.StatsPort = (*NakamaStatsAdapter)(nil)
