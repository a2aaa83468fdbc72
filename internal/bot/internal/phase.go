package internal

import (
	"klondike/internal/domain"
)

// GamePhase buckets a deal by how far it has been opened up.
type GamePhase int

const (
	// PhaseOpening is the early game: the tableau is still mostly hidden
	// and nothing meaningful has been banked.
	PhaseOpening GamePhase = iota
	// PhaseMid is the middle game: digging for buried cards while the
	// foundations grow.
	PhaseMid
	// PhaseEnd is the late game: the tableau is nearly face-up and play
	// shifts to banking everything.
	PhaseEnd
)

// A fresh deal hides 21 tableau cards.
const (
	openingHiddenFloor = 16
	endHiddenCeiling   = 4
	endBankedFloor     = 32
)

// DetectPhase classifies the state by hidden tableau cards and banked
// foundation cards.
func DetectPhase(state domain.GameState) GamePhase {
	hidden := state.FaceDownCount()
	banked := state.FoundationCardCount()

	if hidden <= endHiddenCeiling || banked >= endBankedFloor {
		return PhaseEnd
	}
	if hidden >= openingHiddenFloor && banked <= 2 {
		return PhaseOpening
	}
	return PhaseMid
}
