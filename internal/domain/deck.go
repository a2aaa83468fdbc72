package domain

import (
	cryptorand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
)

const (
	SuitCount    = 4
	RanksPerSuit = 13
	DeckSize     = SuitCount * RanksPerSuit
)

// NewDeck returns the full deck in suit-major order, all face-down.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := Hearts; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffler permutes a deck in place. Implementations must be unbiased:
// every permutation equally likely.
type Shuffler interface {
	Shuffle(cards []Card) error
}

// NewCryptoShuffler returns a Shuffler backed by crypto/rand.
func NewCryptoShuffler() Shuffler {
	return cryptoShuffler{}
}

// NewSeededShuffler returns a deterministic Shuffler. The same seed
// reproduces the same sequence of permutations, which daily challenges
// and simulations rely on.
func NewSeededShuffler(seed int64) Shuffler {
	return seededShuffler{rng: rand.New(rand.NewSource(seed))}
}

type cryptoShuffler struct{}

func (cryptoShuffler) Shuffle(cards []Card) error {
	for i := len(cards) - 1; i > 0; i-- {
		n, err := cryptorand.Int(cryptorand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("crypto shuffle failed: %w", err)
		}
		j := int(n.Int64())
		cards[i], cards[j] = cards[j], cards[i]
	}
	return nil
}

type seededShuffler struct {
	rng *rand.Rand
}

func (s seededShuffler) Shuffle(cards []Card) error {
	for i := len(cards) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return nil
}
