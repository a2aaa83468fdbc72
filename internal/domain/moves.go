package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a malformed request: an unknown pile id or an
// index outside the addressed pile. Rules rejections are not errors; they
// return the state unchanged with applied=false.
var ErrInvalidArgument = errors.New("invalid argument")

// DrawFromStock turns the top stock card face-up onto the waste. When the
// stock is empty it recycles: the waste turns back over face-down to form
// the new stock, so the earliest-drawn card is drawn first again. Drawing
// never fails, even with both piles empty.
func DrawFromStock(state GameState) GameState {
	next := state.Clone()
	if n := len(next.Stock); n > 0 {
		card := next.Stock[n-1]
		card.FaceUp = true
		next.Stock = next.Stock[:n-1]
		next.Waste = append(next.Waste, card)
		return next
	}
	for i := len(next.Waste) - 1; i >= 0; i-- {
		card := next.Waste[i]
		card.FaceUp = false
		next.Stock = append(next.Stock, card)
	}
	next.Waste = next.Waste[:0]
	return next
}

// MoveRun moves the run starting at index in the source pile onto target.
// Tableau sources move their face-up suffix from index; waste and
// foundation sources move only their top card. The bool reports whether
// the move was applied: a well-formed request the rules disallow returns
// the state unchanged with applied=false and a nil error.
func MoveRun(state GameState, source PileID, index int, target PileID) (GameState, bool, error) {
	if !source.Valid() {
		return state, false, fmt.Errorf("%w: source pile %d", ErrInvalidArgument, int32(source))
	}
	if !target.Valid() {
		return state, false, fmt.Errorf("%w: target pile %d", ErrInvalidArgument, int32(target))
	}
	cards := *state.pile(source)
	if index < 0 || index >= len(cards) {
		return state, false, fmt.Errorf("%w: index %d out of range for %s", ErrInvalidArgument, index, source)
	}
	if source == PileStock || target == PileStock || target == PileWaste {
		return state, false, nil
	}
	if !runMovable(source, cards, index) {
		return state, false, nil
	}
	if !accepts(&state, cards[index:], target) {
		return state, false, nil
	}
	return applyMove(state, source, index, target), true, nil
}

// AutoMoveCard sends the clicked card to the first pile that accepts it:
// foundations 0..3 when the card is its pile's top, then tableau 0..6
// taking the whole face-up suffix from the card. No acceptor returns the
// state unchanged with applied=false.
func AutoMoveCard(state GameState, pile PileID, cardIndex int) (GameState, bool, error) {
	if !pile.Valid() {
		return state, false, fmt.Errorf("%w: pile %d", ErrInvalidArgument, int32(pile))
	}
	cards := *state.pile(pile)
	if cardIndex < 0 || cardIndex >= len(cards) {
		return state, false, fmt.Errorf("%w: index %d out of range for %s", ErrInvalidArgument, cardIndex, pile)
	}
	if pile == PileStock || !runMovable(pile, cards, cardIndex) {
		return state, false, nil
	}
	card := cards[cardIndex]
	if cardIndex == len(cards)-1 {
		for i := 0; i < FoundationCount; i++ {
			if CanMoveToFoundation(card, state.Foundations[i]) {
				return applyMove(state, pile, cardIndex, FoundationPile(i)), true, nil
			}
		}
	}
	for i := 0; i < TableauCount; i++ {
		if CanMoveToTableau(card, state.Tableau[i]) {
			return applyMove(state, pile, cardIndex, TableauPile(i)), true, nil
		}
	}
	return state, false, nil
}

// runMovable reports whether the cards from index form a movable run:
// face-up, and for waste and foundation sources only the pile top.
func runMovable(source PileID, cards []Card, index int) bool {
	if !cards[index].FaceUp {
		return false
	}
	if source == PileWaste || source.IsFoundation() {
		return index == len(cards)-1
	}
	return true
}

// accepts checks the run head against the target's legality rule. Targets
// other than foundations and tableau piles never accept.
func accepts(state *GameState, run []Card, target PileID) bool {
	if target.IsFoundation() {
		return len(run) == 1 && CanMoveToFoundation(run[0], state.Foundations[target.FoundationIndex()])
	}
	return CanMoveToTableau(run[0], state.Tableau[target.TableauIndex()])
}

// applyMove removes the run and appends it to target, flipping a newly
// exposed tableau top. Callers have already validated the move.
func applyMove(state GameState, source PileID, index int, target PileID) GameState {
	next := state.Clone()
	src := next.pile(source)
	run := (*src)[index:]
	tgt := next.pile(target)
	*tgt = append(*tgt, run...)
	*src = (*src)[:index]
	if source.IsTableau() {
		if n := len(*src); n > 0 {
			(*src)[n-1].FaceUp = true
		}
	}
	return next
}
