package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickPlayResponse is the payload returned to clients requesting their match.
type QuickPlayResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickPlay, rpcQuickPlay); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcDailyInfo, rpcDailyInfo); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcDailyClaim, rpcDailyClaim)
}

// rpcQuickPlay finds the caller's existing solitaire match or creates one.
// Every player owns at most one match; rejoining reuses it.
//
// Payload: (Optional) Unused for now.
// Returns: QuickPlayResponse JSON.
func rpcQuickPlay(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", fmt.Errorf("quickplay requires an authenticated user")
	}

	// Find the caller's own match via the owner key in the label.
	query := fmt.Sprintf("+label.%s:%s", MatchLabelKey_Owner, userID)

	limit := 1
	authoritative := true
	minSize := 0
	maxSize := 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickPlay [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		matchID := matches[0].MatchId
		logger.Info("rpcQuickPlay [User:%s]: Found existing match %s", userID, matchID)
		b, _ := json.Marshal(QuickPlayResponse{MatchID: matchID, IsNew: false})
		return string(b), nil
	}

	// Create a new match owned by the caller; the owner is queryable in
	// the label before they join.
	matchID, err := nk.MatchCreate(ctx, MatchNameKlondike, map[string]interface{}{MatchLabelKey_Owner: userID})
	if err != nil {
		logger.Error("rpcQuickPlay [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("rpcQuickPlay [User:%s]: Created new match %s", userID, matchID)
	b, _ := json.Marshal(QuickPlayResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}
