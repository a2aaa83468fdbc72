package domain

// CanMoveToFoundation reports whether card may be placed on the given
// foundation pile: an Ace on an empty pile, otherwise the same suit one
// rank above the pile top. Foundations accept a single card at a time.
func CanMoveToFoundation(card Card, pile []Card) bool {
	if len(pile) == 0 {
		return card.Rank == Ace
	}
	top := pile[len(pile)-1]
	return card.Suit == top.Suit && card.Rank == top.Rank+1
}

// CanMoveToTableau reports whether card may be placed on the given tableau
// pile: a King on an empty pile, otherwise the opposite color one rank
// below the pile top. For a multi-card run this is checked against the
// run's deepest card; the rest of the run is already validly ordered
// because only legal moves could have built it.
func CanMoveToTableau(card Card, pile []Card) bool {
	if len(pile) == 0 {
		return card.Rank == King
	}
	top := pile[len(pile)-1]
	return card.Color() != top.Color() && card.Rank == top.Rank-1
}
