package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"klondike/internal/app"
	"klondike/internal/bot"
	"klondike/internal/config"
	"klondike/internal/domain"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	MatchLabelKey_Owner = "owner" // Key for the owner user id in the match label

	// matchTickRate is one tick per second; hint cooldowns and the
	// abandonment grace period count ticks.
	matchTickRate = 1

	// emptyTickGrace is how many ticks an abandoned match waits for a
	// rejoin before terminating.
	emptyTickGrace = 60
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	OwnerID       string                      `json:"owner_id"`        // User id the match belongs to
	Tick          int64                       `json:"tick"`            // Current tick for cooldown and grace logic
	EmptyTicks    int                         `json:"empty_ticks"`     // Consecutive ticks with no presences
	HintReadyTick int64                       `json:"hint_ready_tick"` // Tick when the next hint may be served
	Presences     map[string]runtime.Presence `json:"-"`               // Map UserId -> Presence for targeted messaging
	App           *app.Service                `json:"-"`               // Solitaire app service with game logic
	Game          *app.Game                   `json:"-"`               // Current active game (nil before the first deal)
	Daily         *app.DailyService           `json:"-"`               // Daily challenge seeds and claim tokens
	HintAgent     *bot.Agent                  `json:"-"`               // Advisor answering hint requests
	Economy       ports.EconomyPort           `json:"-"`               // Interface to Nakama wallet
	Stats         ports.StatsPort             `json:"-"`               // Per-user win/loss records
	Leaderboard   ports.LeaderboardPort       `json:"-"`               // Daily challenge leaderboard
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	configPath := "data/game_config.json"
	if val, ok := env["klondike_config"]; ok && val != "" {
		configPath = val
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Presences:   make(map[string]runtime.Presence),
		App:         app.NewService(nil),
		Daily:       app.NewDailyService(env["klondike_daily_secret"], app.DailyIssuer),
		Economy:     NewNakamaEconomyAdapter(nk),
		Stats:       NewNakamaStatsAdapter(nk),
		Leaderboard: NewNakamaLeaderboardAdapter(nk),
	}

	level, err := bot.ParseLevel(config.GetHintAdvisorLevel())
	if err != nil {
		logger.Warn("MatchInit: Bad hint advisor level: %v", err)
		level = bot.BotLevelScored
	}
	state.HintAgent = bot.NewAgent("advisor", level)

	// quickplay passes the owner so the label is queryable before the
	// first join lands.
	if owner, ok := params[MatchLabelKey_Owner].(string); ok {
		state.OwnerID = owner
	}

	labelBytes, err := json.Marshal(mh.label(state))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, matchTickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Single-player: the owner may always (re)join, nobody else may.
	if matchState.OwnerID == "" || matchState.OwnerID == presence.GetUserId() {
		return matchState, true, ""
	}
	return matchState, false, "match belongs to another player"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if matchState.OwnerID == "" {
			matchState.OwnerID = p.GetUserId()
			logger.Debug("MatchJoin: Owner set to %s.", matchState.OwnerID)
		}

		// A rejoin mid-deal gets the authoritative state replayed.
		if matchState.Game != nil {
			events, err := matchState.App.Snapshot(matchState.Game, p.GetUserId())
			if err != nil {
				logger.Error("MatchJoin: Snapshot for %s failed: %v", p.GetUserId(), err)
				continue
			}
			for _, ev := range events {
				mh.broadcastEvent(ctx, matchState, dispatcher, logger, ev)
			}
		}
	}

	matchState.EmptyTicks = 0
	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave frees the presence; termination waits for the grace period
// in MatchLoop so a dropped connection can come back.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		logger.Debug("MatchLeave: User %s left.", p.GetUserId())
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Handle incoming messages
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpDraw:
			mh.handleDraw(ctx, matchState, dispatcher, logger, msg)
		case OpMoveRun:
			mh.handleMoveRun(ctx, matchState, dispatcher, logger, msg)
		case OpAutoMove:
			mh.handleAutoMove(ctx, matchState, dispatcher, logger, msg)
		case OpHint:
			mh.handleHint(matchState, dispatcher, logger, msg)
		case OpConcede:
			mh.handleConcede(ctx, matchState, dispatcher, logger, msg)
		case OpResync:
			mh.handleResync(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// An abandoned match stays alive long enough for a rejoin, then ends.
	if len(matchState.Presences) == 0 {
		matchState.EmptyTicks++
		if matchState.EmptyTicks >= emptyTickGrace {
			logger.Info("MatchLoop: Terminating abandoned match after %d empty ticks.", matchState.EmptyTicks)
			return nil
		}
	} else {
		matchState.EmptyTicks = 0
	}

	return matchState
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.OwnerID {
		logger.Warn("StartGame: User %s tried to start a game but is not the owner.", senderID)
		return
	}
	if state.Game != nil && !state.Game.Finished() {
		mh.sendError(state, dispatcher, logger, senderID, 409, "a game is already running")
		return
	}

	request := &startGameRequest{}
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), request); err != nil {
			logger.Warn("StartGame: Invalid startGameRequest from %s: %v", senderID, err)
			return
		}
	}

	seed := request.Seed
	daily := ""
	if request.Daily {
		daily = state.Daily.Today()
		dailySeed, err := state.Daily.Seed(daily)
		if err != nil {
			logger.Error("StartGame: Failed to derive daily seed: %v", err)
			return
		}
		seed = dailySeed
	}

	game, events, err := state.App.StartGame(senderID, seed, daily)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		return
	}
	state.Game = game

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}

	logger.Info("StartGame: Dealt for %s (daily=%q).", senderID, daily)
}

func (mh *matchHandler) handleDraw(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	events, err := state.App.Draw(state.Game, senderID)
	if err != nil {
		logger.Warn("handleDraw: User %s failed to draw: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleMoveRun(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	request := &moveRequest{}
	if err := json.Unmarshal(msg.GetData(), request); err != nil {
		logger.Error("handleMoveRun: Failed to unmarshal moveRequest: %v", err)
		return
	}

	events, err := state.App.Move(state.Game, senderID, domain.PileID(request.Source), int(request.Index), domain.PileID(request.Target))
	if err != nil {
		logger.Warn("handleMoveRun: User %s failed to move %d[%d] -> %d: %v", senderID, request.Source, request.Index, request.Target, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleAutoMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	request := &autoMoveRequest{}
	if err := json.Unmarshal(msg.GetData(), request); err != nil {
		logger.Error("handleAutoMove: Failed to unmarshal autoMoveRequest: %v", err)
		return
	}

	events, err := state.App.AutoMove(state.Game, senderID, domain.PileID(request.Pile), int(request.CardIndex))
	if err != nil {
		logger.Warn("handleAutoMove: User %s failed to auto-move %d[%d]: %v", senderID, request.Pile, request.CardIndex, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleHint(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil || state.Game.Finished() {
		mh.sendError(state, dispatcher, logger, senderID, 400, "no active game")
		return
	}
	if senderID != state.OwnerID {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner may ask for hints")
		return
	}
	if state.Tick < state.HintReadyTick {
		mh.sendError(state, dispatcher, logger, senderID, 429, "hint is cooling down")
		return
	}

	move, err := state.HintAgent.Suggest(state.Game.State)
	if err != nil {
		logger.Warn("handleHint: Advisor failed, suggesting a pass: %v", err)
	}
	state.HintReadyTick = state.Tick + int64(config.GetHintCooldownSeconds())*matchTickRate

	mh.sendTo(state, dispatcher, logger, OpHintResult, hintEvent{
		Pass:   move.Pass,
		Draw:   move.Draw,
		Source: int32(move.Source),
		Index:  int32(move.Index),
		Target: int32(move.Target),
	}, senderID)
}

func (mh *matchHandler) handleConcede(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	events, err := state.App.Concede(state.Game, senderID)
	if err != nil {
		logger.Warn("handleConcede: User %s failed to concede: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleResync(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	events, err := state.App.Snapshot(state.Game, senderID)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload interface{}

	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
		p := ev.Payload.(app.GameStartedPayload)
		payload = gameStartedEvent{
			Owner: p.OwnerID,
			Daily: p.Daily,
			State: toWireState(p.State),
		}
	case app.EventStateChanged:
		opCode = OpStateChanged
		p := ev.Payload.(app.StateChangedPayload)
		payload = stateChangedEvent{
			Cause: p.Cause,
			State: toWireState(p.State),
			Moves: p.Moves,
		}
	case app.EventMoveRejected:
		opCode = OpMoveRejected
		p := ev.Payload.(app.MoveRejectedPayload)
		payload = moveRejectedEvent{Cause: p.Cause}
	case app.EventGameWon:
		opCode = OpGameWon
		p := ev.Payload.(app.GameWonPayload)
		payload = mh.settleWin(ctx, state, logger, p)
		mh.updateLabel(state, dispatcher, logger)
	case app.EventGameConceded:
		opCode = OpGameConceded
		p := ev.Payload.(app.GameConcededPayload)
		event := gameConcededEvent{Moves: p.Moves}
		if state.Stats != nil {
			stats, err := state.Stats.RecordResult(ctx, state.OwnerID, false, p.Moves)
			if err != nil {
				logger.Error("Failed to record conceded game: %v", err)
			} else {
				event.Stats = &stats
			}
		}
		payload = event
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected,
		// we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleWin pays the win reward, folds the result into the player's
// stats, and signs the daily challenge token when the deal was a daily.
func (mh *matchHandler) settleWin(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameWonPayload) gameWonEvent {
	event := gameWonEvent{
		Moves:           p.Moves,
		Draws:           p.Draws,
		Recycles:        p.Recycles,
		DurationSeconds: p.DurationSeconds,
		Daily:           p.Daily,
	}

	reward := config.GetWinReward(p.Moves)
	if state.Economy != nil && reward > 0 {
		update := ports.WalletUpdate{
			UserID: state.OwnerID,
			Amount: reward,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "win_reward",
			},
		}
		if err := state.Economy.UpdateBalances(ctx, []ports.WalletUpdate{update}); err != nil {
			logger.Error("Failed to pay win reward: %v", err)
		} else {
			event.RewardGold = reward
		}
	}

	if state.Stats != nil {
		stats, err := state.Stats.RecordResult(ctx, state.OwnerID, true, p.Moves)
		if err != nil {
			logger.Error("Failed to record won game: %v", err)
		} else {
			event.Stats = &stats
		}
	}

	if p.Daily != "" && state.Daily != nil {
		token, err := state.Daily.ChallengeToken(state.OwnerID, p.Daily, p.Moves)
		if err != nil {
			logger.Error("Failed to sign daily challenge token: %v", err)
		} else {
			event.DailyToken = token
		}
	}

	return event
}

// sendTo marshals a payload and sends it to a single connected user.
func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload interface{}, userID string) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload for opcode %d: %v", opCode, err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send opcode %d to %s: Presence not found", opCode, userID)
		return
	}

	dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true)
}

// sendError sends a gameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	mh.sendTo(state, dispatcher, logger, OpGameError, gameErrorEvent{Code: int32(code), Message: message}, userID)
}

// label builds the queryable match label from the current state.
func (mh *matchHandler) label(state *MatchState) matchLabel {
	phase := "lobby"
	if state.Game != nil && !state.Game.Finished() {
		phase = "playing"
	}
	open := int32(1)
	if len(state.Presences) > 0 {
		open = 0
	}
	day := ""
	if state.Game != nil {
		day = state.Game.Daily
	}
	return matchLabel{Open: open, Owner: state.OwnerID, State: phase, Day: day}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(mh.label(state))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
