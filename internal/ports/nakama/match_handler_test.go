package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"klondike/internal/app"
	"klondike/internal/bot"
	"klondike/internal/config"
	"klondike/internal/domain"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastOpCode     int64
	lastData       []byte
	lastRecipients []runtime.Presence
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	md.lastRecipients = presences
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

// fakePresence satisfies runtime.Presence for handler tests.
type fakePresence struct {
	userID string
}

func (p fakePresence) GetUserId() string                 { return p.userID }
func (p fakePresence) GetSessionId() string              { return "session-" + p.userID }
func (p fakePresence) GetNodeId() string                 { return "node" }
func (p fakePresence) GetHidden() bool                   { return false }
func (p fakePresence) GetPersistence() bool              { return false }
func (p fakePresence) GetUsername() string               { return p.userID }
func (p fakePresence) GetStatus() string                 { return "" }
func (p fakePresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// fakeMatchData is a client message addressed to the match handler.
type fakeMatchData struct {
	fakePresence
	opCode int64
	data   []byte
}

func (m fakeMatchData) GetOpCode() int64      { return m.opCode }
func (m fakeMatchData) GetData() []byte       { return m.data }
func (m fakeMatchData) GetReliable() bool     { return true }
func (m fakeMatchData) GetReceiveTime() int64 { return 0 }

type mockEconomy struct {
	updates []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

type statsCall struct {
	userID string
	won    bool
	moves  int
}

type mockStats struct {
	calls []statsCall
}

func (ms *mockStats) RecordResult(ctx context.Context, userID string, won bool, moves int) (ports.PlayerStats, error) {
	ms.calls = append(ms.calls, statsCall{userID: userID, won: won, moves: moves})
	return ports.PlayerStats{GamesPlayed: len(ms.calls)}, nil
}

func (ms *mockStats) GetStats(ctx context.Context, userID string) (ports.PlayerStats, error) {
	return ports.PlayerStats{GamesPlayed: len(ms.calls)}, nil
}

func newTestMatchState(owner string) *MatchState {
	return &MatchState{
		OwnerID:   owner,
		Presences: map[string]runtime.Presence{owner: fakePresence{userID: owner}},
		App:       app.NewService(nil),
		Daily:     app.NewDailyService("test-secret", app.DailyIssuer),
		HintAgent: bot.NewAgent("advisor", bot.BotLevelScored),
		Economy:   &mockEconomy{},
		Stats:     &mockStats{},
	}
}

func startMessage(userID string, seed int64) fakeMatchData {
	data, _ := json.Marshal(startGameRequest{Seed: seed})
	return fakeMatchData{fakePresence: fakePresence{userID: userID}, opCode: OpStartGame, data: data}
}

func TestMatchJoinAttempt_OwnerOnly(t *testing.T) {
	handler := &matchHandler{}
	state := newTestMatchState("user-1")

	_, allowed, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, state, fakePresence{userID: "user-1"}, nil)
	if !allowed {
		t.Fatalf("Expected the owner to be allowed back in")
	}

	_, allowed, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, state, fakePresence{userID: "user-2"}, nil)
	if allowed {
		t.Fatalf("Expected a stranger to be rejected")
	}
	if reason == "" {
		t.Fatalf("Expected a rejection reason")
	}
}

func TestHandleStartGame_DealsAndBroadcasts(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestMatchState("user-1")

	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, startMessage("user-1", 42))

	if state.Game == nil {
		t.Fatalf("Expected a game after StartGame")
	}
	if state.Game.Seed != 42 {
		t.Fatalf("Seed = %d, want 42", state.Game.Seed)
	}
	if dispatcher.lastOpCode != OpGameStarted {
		t.Fatalf("Expected opcode %d, got %d", OpGameStarted, dispatcher.lastOpCode)
	}
	if dispatcher.labelUpdates != 1 {
		t.Fatalf("Expected a label update, got %d", dispatcher.labelUpdates)
	}

	event := gameStartedEvent{}
	if err := json.Unmarshal(dispatcher.lastData, &event); err != nil {
		t.Fatalf("Failed to unmarshal gameStartedEvent: %v", err)
	}
	if event.Owner != "user-1" {
		t.Fatalf("Owner = %q, want user-1", event.Owner)
	}
	if event.State.Stock != 24 {
		t.Fatalf("Stock = %d, want 24", event.State.Stock)
	}
	if got := len(event.State.Tableau[6]); got != 7 {
		t.Fatalf("Tableau[6] has %d cards, want 7", got)
	}

	// Buried cards must cross the wire redacted.
	for i, card := range event.State.Tableau[6] {
		if i < 6 {
			if card.FaceUp || card.Rank != 0 || card.Suit != 0 {
				t.Fatalf("Tableau[6][%d] leaked a face-down card: %+v", i, card)
			}
			continue
		}
		if !card.FaceUp || card.Rank == 0 {
			t.Fatalf("Tableau[6][%d] should be a visible top card: %+v", i, card)
		}
	}
}

func TestHandleStartGame_NonOwnerIgnored(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestMatchState("user-1")

	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, startMessage("user-2", 42))

	if state.Game != nil {
		t.Fatalf("A non-owner started a game")
	}
	if dispatcher.broadcastCount != 0 {
		t.Fatalf("Expected no broadcasts, got %d", dispatcher.broadcastCount)
	}
}

func TestHandleDraw_BroadcastsStateChanged(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestMatchState("user-1")
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, startMessage("user-1", 7))

	msg := fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpDraw}
	handler.handleDraw(context.Background(), state, dispatcher, noopLogger{}, msg)

	if dispatcher.lastOpCode != OpStateChanged {
		t.Fatalf("Expected opcode %d, got %d", OpStateChanged, dispatcher.lastOpCode)
	}

	event := stateChangedEvent{}
	if err := json.Unmarshal(dispatcher.lastData, &event); err != nil {
		t.Fatalf("Failed to unmarshal stateChangedEvent: %v", err)
	}
	if event.Cause != app.CauseDraw {
		t.Fatalf("Cause = %q, want %q", event.Cause, app.CauseDraw)
	}
	if event.State.Stock != 23 || len(event.State.Waste) != 1 {
		t.Fatalf("Stock/waste = %d/%d, want 23/1", event.State.Stock, len(event.State.Waste))
	}
	if !event.State.Waste[0].FaceUp {
		t.Fatalf("The drawn card should be visible on the waste")
	}
	if event.Moves != 1 {
		t.Fatalf("Moves = %d, want 1", event.Moves)
	}
}

func TestHandleMoveRun_RejectionGoesToSenderOnly(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestMatchState("user-1")
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, startMessage("user-1", 7))

	// The stock is never a legal run source; the rules reject this for
	// any deal.
	data, _ := json.Marshal(moveRequest{
		Source: int32(domain.PileStock),
		Index:  0,
		Target: int32(domain.TableauPile(0)),
	})
	msg := fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpMoveRun, data: data}
	handler.handleMoveRun(context.Background(), state, dispatcher, noopLogger{}, msg)

	if dispatcher.lastOpCode != OpMoveRejected {
		t.Fatalf("Expected opcode %d, got %d", OpMoveRejected, dispatcher.lastOpCode)
	}
	if len(dispatcher.lastRecipients) != 1 {
		t.Fatalf("A rejection must target the sender, got %d recipients", len(dispatcher.lastRecipients))
	}
	if state.Game.Moves != 0 {
		t.Fatalf("A rejected move must not count, got %d", state.Game.Moves)
	}
}

func TestHandleHint_CooldownGatesRequests(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestMatchState("user-1")
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, startMessage("user-1", 7))

	msg := fakeMatchData{fakePresence: fakePresence{userID: "user-1"}, opCode: OpHint}
	handler.handleHint(state, dispatcher, noopLogger{}, msg)

	if dispatcher.lastOpCode != OpHintResult {
		t.Fatalf("Expected opcode %d, got %d", OpHintResult, dispatcher.lastOpCode)
	}
	want := int64(config.GetHintCooldownSeconds()) * matchTickRate
	if state.HintReadyTick != want {
		t.Fatalf("HintReadyTick = %d, want %d", state.HintReadyTick, want)
	}

	handler.handleHint(state, dispatcher, noopLogger{}, msg)

	if dispatcher.lastOpCode != OpGameError {
		t.Fatalf("Expected opcode %d during cooldown, got %d", OpGameError, dispatcher.lastOpCode)
	}
	errEvent := gameErrorEvent{}
	if err := json.Unmarshal(dispatcher.lastData, &errEvent); err != nil {
		t.Fatalf("Failed to unmarshal gameErrorEvent: %v", err)
	}
	if errEvent.Code != 429 {
		t.Fatalf("Code = %d, want 429", errEvent.Code)
	}
}

func TestSettleWin_PaysRewardRecordsStatsSignsToken(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestMatchState("user-1")
	economy := state.Economy.(*mockEconomy)
	stats := state.Stats.(*mockStats)

	handler.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, app.Event{
		Kind: app.EventGameWon,
		Payload: app.GameWonPayload{
			Moves:           90,
			Draws:           30,
			Recycles:        2,
			DurationSeconds: 300,
			Daily:           "2026-02-03",
		},
	})

	if dispatcher.lastOpCode != OpGameWon {
		t.Fatalf("Expected opcode %d, got %d", OpGameWon, dispatcher.lastOpCode)
	}

	wantReward := config.GetWinReward(90)
	if len(economy.updates) != 1 || economy.updates[0].Amount != wantReward {
		t.Fatalf("Wallet updates = %+v, want one update of %d", economy.updates, wantReward)
	}
	if economy.updates[0].UserID != "user-1" {
		t.Fatalf("Reward went to %q, want user-1", economy.updates[0].UserID)
	}

	if len(stats.calls) != 1 || !stats.calls[0].won || stats.calls[0].moves != 90 {
		t.Fatalf("Stats calls = %+v, want one won game of 90 moves", stats.calls)
	}

	event := gameWonEvent{}
	if err := json.Unmarshal(dispatcher.lastData, &event); err != nil {
		t.Fatalf("Failed to unmarshal gameWonEvent: %v", err)
	}
	if event.RewardGold != wantReward {
		t.Fatalf("RewardGold = %d, want %d", event.RewardGold, wantReward)
	}
	if event.DailyToken == "" {
		t.Fatalf("A daily win must carry a challenge token")
	}

	verifier := app.NewDailyService("test-secret", app.DailyIssuer)
	result, err := verifier.VerifyToken(event.DailyToken)
	if err != nil {
		t.Fatalf("Challenge token failed verification: %v", err)
	}
	if result.UserID != "user-1" || result.Day != "2026-02-03" || result.Moves != 90 {
		t.Fatalf("Token claims = %+v, want user-1/2026-02-03/90", result)
	}
}

func TestBroadcastEvent_ConcededRecordsLoss(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := newTestMatchState("user-1")
	stats := state.Stats.(*mockStats)

	handler.broadcastEvent(context.Background(), state, dispatcher, noopLogger{}, app.Event{
		Kind:    app.EventGameConceded,
		Payload: app.GameConcededPayload{Moves: 12},
	})

	if dispatcher.lastOpCode != OpGameConceded {
		t.Fatalf("Expected opcode %d, got %d", OpGameConceded, dispatcher.lastOpCode)
	}
	if len(stats.calls) != 1 || stats.calls[0].won {
		t.Fatalf("Stats calls = %+v, want one lost game", stats.calls)
	}
}

func TestMatchJoin_RejoinGetsSnapshot(t *testing.T) {
	handler := &matchHandler{}
	state := newTestMatchState("user-1")
	handler.handleStartGame(context.Background(), state, &mockDispatcher{}, noopLogger{}, startMessage("user-1", 7))
	state.EmptyTicks = 10

	dispatcher := &mockDispatcher{}
	result := handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 5, state, []runtime.Presence{fakePresence{userID: "user-1"}})
	if result == nil {
		t.Fatalf("MatchJoin must keep the match alive")
	}

	if dispatcher.lastOpCode != OpStateChanged {
		t.Fatalf("Expected a resync snapshot, got opcode %d", dispatcher.lastOpCode)
	}
	if len(dispatcher.lastRecipients) != 1 {
		t.Fatalf("A snapshot must target the rejoiner, got %d recipients", len(dispatcher.lastRecipients))
	}
	event := stateChangedEvent{}
	if err := json.Unmarshal(dispatcher.lastData, &event); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}
	if event.Cause != app.CauseResync {
		t.Fatalf("Cause = %q, want %q", event.Cause, app.CauseResync)
	}
	if state.EmptyTicks != 0 {
		t.Fatalf("A join must reset the abandonment timer, got %d", state.EmptyTicks)
	}
}

func TestMatchLoop_TerminatesAbandonedMatchAfterGrace(t *testing.T) {
	handler := &matchHandler{}
	state := newTestMatchState("user-1")
	delete(state.Presences, "user-1")
	dispatcher := &mockDispatcher{}

	var result interface{} = state
	for tick := int64(1); tick < emptyTickGrace; tick++ {
		result = handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, result, nil)
		if result == nil {
			t.Fatalf("Match died at tick %d, before the grace period ended", tick)
		}
	}

	result = handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, emptyTickGrace, result, nil)
	if result != nil {
		t.Fatalf("An abandoned match must terminate after %d empty ticks", emptyTickGrace)
	}
}

func TestLabel_ReflectsPhaseOwnerAndDay(t *testing.T) {
	handler := &matchHandler{}
	state := newTestMatchState("user-1")

	label := handler.label(state)
	if label.State != "lobby" || label.Owner != "user-1" || label.Open != 0 {
		t.Fatalf("Lobby label = %+v", label)
	}

	delete(state.Presences, "user-1")
	if got := handler.label(state).Open; got != 1 {
		t.Fatalf("Open = %d with no presences, want 1", got)
	}

	game, _, err := state.App.StartGame("user-1", 3, "2026-02-03")
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	state.Game = game

	label = handler.label(state)
	if label.State != "playing" || label.Day != "2026-02-03" {
		t.Fatalf("Playing label = %+v", label)
	}

	game.Conceded = true
	if got := handler.label(state).State; got != "lobby" {
		t.Fatalf("A finished game should read as lobby, got %q", got)
	}
}
