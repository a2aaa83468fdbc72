package internal

import (
	"klondike/internal/domain"
)

// ValidMove is a legal run move annotated with the structural effects
// the scorer cares about.
type ValidMove struct {
	Source domain.PileID
	Index  int
	Target domain.PileID

	// RunLength is the number of cards that would move.
	RunLength int
	// Flips is set when the move exposes a face-down tableau card.
	Flips bool
	// EmptiesSource is set when a whole tableau pile would move away.
	EmptiesSource bool
	// FromWaste is set for plays off the waste top.
	FromWaste bool
	// ToFoundation is set for moves that bank a card.
	ToFoundation bool
	// KingToEmpty is set when a King run lands on an empty tableau pile.
	KingToEmpty bool
}

// GetValidMoves enumerates every legal run move in the state. Foundation
// cards are treated as banked and never offered as sources.
func GetValidMoves(state domain.GameState) []ValidMove {
	var moves []ValidMove
	moves = appendWasteMoves(moves, state)
	moves = appendTableauMoves(moves, state)
	return moves
}

func appendWasteMoves(moves []ValidMove, state domain.GameState) []ValidMove {
	n := len(state.Waste)
	if n == 0 {
		return moves
	}
	top := state.Waste[n-1]
	for f := 0; f < domain.FoundationCount; f++ {
		if !domain.CanMoveToFoundation(top, state.Foundations[f]) {
			continue
		}
		moves = append(moves, ValidMove{
			Source:       domain.PileWaste,
			Index:        n - 1,
			Target:       domain.FoundationPile(f),
			RunLength:    1,
			FromWaste:    true,
			ToFoundation: true,
		})
	}
	for t := 0; t < domain.TableauCount; t++ {
		if !domain.CanMoveToTableau(top, state.Tableau[t]) {
			continue
		}
		moves = append(moves, ValidMove{
			Source:      domain.PileWaste,
			Index:       n - 1,
			Target:      domain.TableauPile(t),
			RunLength:   1,
			FromWaste:   true,
			KingToEmpty: top.Rank == domain.King && len(state.Tableau[t]) == 0,
		})
	}
	return moves
}

func appendTableauMoves(moves []ValidMove, state domain.GameState) []ValidMove {
	for src := 0; src < domain.TableauCount; src++ {
		pile := state.Tableau[src]
		for idx := 0; idx < len(pile); idx++ {
			if !pile[idx].FaceUp {
				continue
			}
			head := pile[idx]
			flips := idx > 0 && !pile[idx-1].FaceUp
			if idx == len(pile)-1 {
				for f := 0; f < domain.FoundationCount; f++ {
					if !domain.CanMoveToFoundation(head, state.Foundations[f]) {
						continue
					}
					moves = append(moves, ValidMove{
						Source:        domain.TableauPile(src),
						Index:         idx,
						Target:        domain.FoundationPile(f),
						RunLength:     1,
						Flips:         flips,
						EmptiesSource: idx == 0,
						ToFoundation:  true,
					})
				}
			}
			for tgt := 0; tgt < domain.TableauCount; tgt++ {
				if tgt == src {
					continue
				}
				if !domain.CanMoveToTableau(head, state.Tableau[tgt]) {
					continue
				}
				moves = append(moves, ValidMove{
					Source:        domain.TableauPile(src),
					Index:         idx,
					Target:        domain.TableauPile(tgt),
					RunLength:     len(pile) - idx,
					Flips:         flips,
					EmptiesSource: idx == 0,
					KingToEmpty:   head.Rank == domain.King && len(state.Tableau[tgt]) == 0,
				})
			}
		}
	}
	return moves
}
