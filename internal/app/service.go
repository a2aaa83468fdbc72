package app

import (
	"errors"
	"fmt"
	"time"

	"klondike/internal/domain"
)

// Cause strings for StateChangedPayload and MoveRejectedPayload.
const (
	CauseDraw     = "draw"
	CauseMove     = "move"
	CauseAutoMove = "auto_move"
	CauseResync   = "resync"
)

var (
	ErrGameNotStarted = errors.New("game not started")
	ErrGameFinished   = errors.New("game already finished")
	ErrNotOwner       = errors.New("actor is not the match owner")
)

// Game tracks one solitaire session around the pure engine state.
type Game struct {
	State   domain.GameState
	OwnerID string
	Seed    int64  // 0 when the deal was not seeded
	Daily   string // daily challenge day, empty for free play

	Moves    int // accepted state-changing operations, draws included
	Draws    int
	Recycles int

	StartedAt  time.Time
	FinishedAt time.Time
	Won        bool
	Conceded   bool
}

// Finished reports whether the session has ended by win or concession.
func (g *Game) Finished() bool { return g.Won || g.Conceded }

// Service contains solitaire use-cases operating on domain state.
type Service struct {
	shuffler domain.Shuffler
	now      func() time.Time
}

// NewService constructs a Service with the provided Shuffler or the
// crypto-backed default.
func NewService(shuffler domain.Shuffler) *Service {
	if shuffler == nil {
		shuffler = domain.NewCryptoShuffler()
	}
	return &Service{shuffler: shuffler, now: time.Now}
}

// StartGame deals a fresh layout owned by ownerID. A non-zero seed selects
// a deterministic deal (daily challenges, replays); daily carries the
// challenge day for downstream reporting.
func (s *Service) StartGame(ownerID string, seed int64, daily string) (*Game, []Event, error) {
	shuffler := s.shuffler
	if seed != 0 {
		shuffler = domain.NewSeededShuffler(seed)
	}
	state, err := domain.NewGame(shuffler)
	if err != nil {
		return nil, nil, fmt.Errorf("deal failed: %w", err)
	}

	game := &Game{
		State:     state,
		OwnerID:   ownerID,
		Seed:      seed,
		Daily:     daily,
		StartedAt: s.now(),
	}
	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{OwnerID: ownerID, Daily: daily, State: state},
	}}
	return game, events, nil
}

// Draw performs a stock draw or recycle for the owner.
func (s *Service) Draw(game *Game, actorID string) ([]Event, error) {
	if err := s.checkActive(game, actorID); err != nil {
		return nil, err
	}
	recycling := len(game.State.Stock) == 0 && len(game.State.Waste) > 0
	game.State = domain.DrawFromStock(game.State)
	if recycling {
		game.Recycles++
	}
	game.Draws++
	game.Moves++
	return []Event{{
		Kind:    EventStateChanged,
		Payload: StateChangedPayload{Cause: CauseDraw, State: game.State, Moves: game.Moves},
	}}, nil
}

// Move applies a run move for the owner. Rules rejections emit a
// MoveRejected event; malformed requests return an error.
func (s *Service) Move(game *Game, actorID string, source domain.PileID, index int, target domain.PileID) ([]Event, error) {
	if err := s.checkActive(game, actorID); err != nil {
		return nil, err
	}
	next, applied, err := domain.MoveRun(game.State, source, index, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		return []Event{{
			Kind:       EventMoveRejected,
			Payload:    MoveRejectedPayload{Cause: CauseMove},
			Recipients: []string{actorID},
		}}, nil
	}
	game.State = next
	game.Moves++
	return s.progressEvents(game, CauseMove), nil
}

// AutoMove applies a clicked-card auto move for the owner.
func (s *Service) AutoMove(game *Game, actorID string, pile domain.PileID, cardIndex int) ([]Event, error) {
	if err := s.checkActive(game, actorID); err != nil {
		return nil, err
	}
	next, applied, err := domain.AutoMoveCard(game.State, pile, cardIndex)
	if err != nil {
		return nil, err
	}
	if !applied {
		return []Event{{
			Kind:       EventMoveRejected,
			Payload:    MoveRejectedPayload{Cause: CauseAutoMove},
			Recipients: []string{actorID},
		}}, nil
	}
	game.State = next
	game.Moves++
	return s.progressEvents(game, CauseAutoMove), nil
}

// Concede ends the session without a win.
func (s *Service) Concede(game *Game, actorID string) ([]Event, error) {
	if err := s.checkActive(game, actorID); err != nil {
		return nil, err
	}
	game.Conceded = true
	game.FinishedAt = s.now()
	return []Event{{
		Kind:    EventGameConceded,
		Payload: GameConcededPayload{Moves: game.Moves},
	}}, nil
}

// Snapshot emits the current state targeted at one user, for (re)join sync.
func (s *Service) Snapshot(game *Game, recipientID string) ([]Event, error) {
	if game == nil {
		return nil, ErrGameNotStarted
	}
	return []Event{{
		Kind:       EventStateChanged,
		Payload:    StateChangedPayload{Cause: CauseResync, State: game.State, Moves: game.Moves},
		Recipients: []string{recipientID},
	}}, nil
}

func (s *Service) checkActive(game *Game, actorID string) error {
	if game == nil {
		return ErrGameNotStarted
	}
	if actorID != game.OwnerID {
		return ErrNotOwner
	}
	if game.Finished() {
		return ErrGameFinished
	}
	return nil
}

// progressEvents reports the new state and appends the win event when the
// move completed the foundations.
func (s *Service) progressEvents(game *Game, cause string) []Event {
	events := []Event{{
		Kind:    EventStateChanged,
		Payload: StateChangedPayload{Cause: cause, State: game.State, Moves: game.Moves},
	}}
	if game.State.IsWon() && !game.Won {
		game.Won = true
		game.FinishedAt = s.now()
		events = append(events, Event{
			Kind: EventGameWon,
			Payload: GameWonPayload{
				Moves:           game.Moves,
				Draws:           game.Draws,
				Recycles:        game.Recycles,
				DurationSeconds: int64(game.FinishedAt.Sub(game.StartedAt) / time.Second),
				Daily:           game.Daily,
			},
		})
	}
	return events
}
