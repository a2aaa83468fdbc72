package nakama

import (
	"klondike/internal/domain"
	"klondike/internal/ports"
)

// wireCard is the client-visible card. Face-down cards are redacted to
// the zero card so the wire never leaks buried identities.
type wireCard struct {
	Suit   int32 `json:"suit"`
	Rank   int32 `json:"rank"`
	FaceUp bool  `json:"face_up"`
}

// wireState mirrors domain.GameState for clients. The stock is only
// ever face-down, so the wire carries its count.
type wireState struct {
	Stock       int          `json:"stock"`
	Waste       []wireCard   `json:"waste"`
	Foundations [][]wireCard `json:"foundations"`
	Tableau     [][]wireCard `json:"tableau"`
}

func toWireCard(card domain.Card) wireCard {
	if !card.FaceUp {
		return wireCard{}
	}
	return wireCard{
		Suit:   int32(card.Suit),
		Rank:   int32(card.Rank),
		FaceUp: true,
	}
}

func toWireCards(cards []domain.Card) []wireCard {
	out := make([]wireCard, len(cards))
	for i, card := range cards {
		out[i] = toWireCard(card)
	}
	return out
}

func toWireState(state domain.GameState) wireState {
	out := wireState{
		Stock:       len(state.Stock),
		Waste:       toWireCards(state.Waste),
		Foundations: make([][]wireCard, domain.FoundationCount),
		Tableau:     make([][]wireCard, domain.TableauCount),
	}
	for i := range state.Foundations {
		out.Foundations[i] = toWireCards(state.Foundations[i])
	}
	for i := range state.Tableau {
		out.Tableau[i] = toWireCards(state.Tableau[i])
	}
	return out
}

// Client request payloads.

type startGameRequest struct {
	// Daily selects today's shared challenge deal.
	Daily bool `json:"daily"`
	// Seed forces a deterministic free-play deal; 0 deals at random.
	Seed int64 `json:"seed"`
}

type moveRequest struct {
	Source int32 `json:"source"`
	Index  int32 `json:"index"`
	Target int32 `json:"target"`
}

type autoMoveRequest struct {
	Pile      int32 `json:"pile"`
	CardIndex int32 `json:"card_index"`
}

// Server event payloads.

type gameStartedEvent struct {
	Owner string    `json:"owner"`
	Daily string    `json:"daily"`
	State wireState `json:"state"`
}

type stateChangedEvent struct {
	Cause string    `json:"cause"`
	State wireState `json:"state"`
	Moves int       `json:"moves"`
}

type moveRejectedEvent struct {
	Cause string `json:"cause"`
}

type gameWonEvent struct {
	Moves           int                `json:"moves"`
	Draws           int                `json:"draws"`
	Recycles        int                `json:"recycles"`
	DurationSeconds int64              `json:"duration_seconds"`
	RewardGold      int64              `json:"reward_gold"`
	Daily           string             `json:"daily"`
	DailyToken      string             `json:"daily_token"`
	Stats           *ports.PlayerStats `json:"stats,omitempty"`
}

type gameConcededEvent struct {
	Moves int                `json:"moves"`
	Stats *ports.PlayerStats `json:"stats,omitempty"`
}

type hintEvent struct {
	Pass   bool  `json:"pass"`
	Draw   bool  `json:"draw"`
	Source int32 `json:"source"`
	Index  int32 `json:"index"`
	Target int32 `json:"target"`
}

type gameErrorEvent struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// matchLabel is the JSON label advertised for MatchList queries.
type matchLabel struct {
	Open  int32  `json:"open"`
	Owner string `json:"owner"`
	State string `json:"state"`
	Day   string `json:"day"`
}
