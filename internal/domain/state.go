package domain

import "fmt"

// PileID addresses one of the thirteen piles on the table.
type PileID int32

const (
	// PileStock is the face-down draw pile.
	PileStock PileID = 0
	// PileWaste is the face-up discard beside the stock.
	PileWaste PileID = 1

	foundationBase PileID = 2
	tableauBase    PileID = 6

	// PileCount is the total number of addressable piles.
	PileCount = 13
)

const (
	FoundationCount = 4
	TableauCount    = 7
)

// FoundationPile returns the id of foundation pile i (0..3).
func FoundationPile(i int) PileID { return foundationBase + PileID(i) }

// TableauPile returns the id of tableau pile i (0..6).
func TableauPile(i int) PileID { return tableauBase + PileID(i) }

// Valid reports whether the id addresses an existing pile.
func (p PileID) Valid() bool { return p >= 0 && p < PileCount }

// IsFoundation reports whether the id addresses a foundation pile.
func (p PileID) IsFoundation() bool { return p >= foundationBase && p < tableauBase }

// IsTableau reports whether the id addresses a tableau pile.
func (p PileID) IsTableau() bool { return p >= tableauBase && p < PileCount }

// FoundationIndex returns the 0..3 foundation index for the id.
func (p PileID) FoundationIndex() int { return int(p - foundationBase) }

// TableauIndex returns the 0..6 tableau index for the id.
func (p PileID) TableauIndex() int { return int(p - tableauBase) }

func (p PileID) String() string {
	switch {
	case p == PileStock:
		return "stock"
	case p == PileWaste:
		return "waste"
	case p.IsFoundation():
		return fmt.Sprintf("foundation[%d]", p.FoundationIndex())
	case p.IsTableau():
		return fmt.Sprintf("tableau[%d]", p.TableauIndex())
	}
	return fmt.Sprintf("pile(%d)", int32(p))
}

// GameState is the complete snapshot of one solitaire game. Pile slices
// run bottom to top: the last element is the pile top. Piles are never
// nil; an empty pile has zero length.
type GameState struct {
	Stock       []Card
	Waste       []Card
	Foundations [FoundationCount][]Card
	Tableau     [TableauCount][]Card
}

// NewGame shuffles a fresh deck with the given Shuffler (nil selects the
// crypto-backed default) and deals the opening layout.
func NewGame(shuffler Shuffler) (GameState, error) {
	if shuffler == nil {
		shuffler = NewCryptoShuffler()
	}
	deck := NewDeck()
	if err := shuffler.Shuffle(deck); err != nil {
		return GameState{}, err
	}
	return deal(deck), nil
}

// deal lays out the triangular tableau and banks the remainder as the
// stock. Cards come off the end of the deck: pile j collects one card per
// pass i=0..j, face-up only on its final pass, so pile sizes are 1..7 with
// exactly the top card showing.
func deal(deck []Card) GameState {
	var state GameState
	next := len(deck)
	for i := 0; i < TableauCount; i++ {
		for j := i; j < TableauCount; j++ {
			next--
			card := deck[next]
			card.FaceUp = j == i
			state.Tableau[j] = append(state.Tableau[j], card)
		}
	}
	state.Stock = cloneCards(deck[:next])
	state.Waste = make([]Card, 0)
	for i := range state.Foundations {
		state.Foundations[i] = make([]Card, 0)
	}
	return state
}

// IsWon reports whether every foundation is complete Ace through King.
func (s GameState) IsWon() bool {
	for i := range s.Foundations {
		if len(s.Foundations[i]) != RanksPerSuit {
			return false
		}
	}
	return true
}

// Clone returns a deep copy sharing no slices with the receiver.
func (s GameState) Clone() GameState {
	var out GameState
	out.Stock = cloneCards(s.Stock)
	out.Waste = cloneCards(s.Waste)
	for i := range s.Foundations {
		out.Foundations[i] = cloneCards(s.Foundations[i])
	}
	for i := range s.Tableau {
		out.Tableau[i] = cloneCards(s.Tableau[i])
	}
	return out
}

// FaceDownCount returns the number of face-down tableau cards, a common
// progress measure for advisors and stats.
func (s GameState) FaceDownCount() int {
	count := 0
	for i := range s.Tableau {
		for _, card := range s.Tableau[i] {
			if !card.FaceUp {
				count++
			}
		}
	}
	return count
}

// FoundationCardCount returns the number of cards banked on foundations.
func (s GameState) FoundationCardCount() int {
	count := 0
	for i := range s.Foundations {
		count += len(s.Foundations[i])
	}
	return count
}

func cloneCards(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

func (s *GameState) pile(id PileID) *[]Card {
	switch {
	case id == PileStock:
		return &s.Stock
	case id == PileWaste:
		return &s.Waste
	case id.IsFoundation():
		return &s.Foundations[id.FoundationIndex()]
	default:
		return &s.Tableau[id.TableauIndex()]
	}
}
