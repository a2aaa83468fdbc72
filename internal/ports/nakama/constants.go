package nakama

const (
	// RpcQuickPlay is the Nakama RPC id clients call to find their own
	// open match or create one.
	RpcQuickPlay = "quickplay"

	// RpcDailyInfo is the Nakama RPC id returning today's challenge day
	// and whether the caller already claimed it.
	RpcDailyInfo = "daily_info"

	// RpcDailyClaim is the Nakama RPC id that verifies a challenge token,
	// writes the leaderboard record, and grants the once-per-day bonus.
	RpcDailyClaim = "daily_claim"

	// MatchNameKlondike is the authoritative match handler name registered with Nakama.
	MatchNameKlondike = "klondike_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpDraw      int64 = 2
	OpMoveRun   int64 = 3
	OpAutoMove  int64 = 4
	OpHint      int64 = 5
	OpConcede   int64 = 6
	OpResync    int64 = 7

	// Server -> Client events
	OpGameStarted  int64 = 101
	OpStateChanged int64 = 102
	OpMoveRejected int64 = 103
	OpGameWon      int64 = 104
	OpGameConceded int64 = 105
	OpHintResult   int64 = 106
	OpGameError    int64 = 107
)
