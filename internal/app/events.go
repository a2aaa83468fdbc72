package app

import "klondike/internal/domain"

// EventKind identifies emitted game events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted  EventKind = "game_started"
	EventStateChanged EventKind = "state_changed"
	EventMoveRejected EventKind = "move_rejected"
	EventGameWon      EventKind = "game_won"
	EventGameConceded EventKind = "game_conceded"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	OwnerID string
	Daily   string // daily challenge day, empty for free play
	State   domain.GameState
}

// StateChangedPayload carries the full authoritative state after an
// accepted operation. Cause names the operation that produced it.
type StateChangedPayload struct {
	Cause string
	State domain.GameState
	Moves int
}

type MoveRejectedPayload struct {
	Cause string
}

type GameWonPayload struct {
	Moves           int
	Draws           int
	Recycles        int
	DurationSeconds int64
	Daily           string
}

type GameConcededPayload struct {
	Moves int
}
