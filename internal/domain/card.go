package domain

import "strconv"

// Suit identifies one of the four French suits.
type Suit int32

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Color is the red/black grouping the tableau stacking rule cares about.
type Color int32

const (
	Red Color = iota
	Black
)

// Rank orders card faces Ace low through King high, so foundation and
// tableau adjacency checks are plain rank arithmetic.
type Rank int32

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Card is a single playing card. Suit and rank are the card's identity;
// FaceUp tracks its table-side orientation.
type Card struct {
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

// Color returns the card's color group.
func (c Card) Color() Color { return c.Suit.Color() }

// Color returns the suit's color group: hearts and diamonds are red,
// clubs and spades are black.
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	case Spades:
		return "S"
	}
	return "?"
}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	return strconv.Itoa(int(r))
}

// String renders rank then suit, e.g. "AS" or "10H".
func (c Card) String() string { return c.Rank.String() + c.Suit.String() }
