package domain

import (
	"testing"
)

// fu and fd build face-up and face-down cards for test tables.
func fu(s Suit, r Rank) Card { return Card{Suit: s, Rank: r, FaceUp: true} }
func fd(s Suit, r Rank) Card { return Card{Suit: s, Rank: r} }

func TestCanMoveToFoundation(t *testing.T) {
	tests := []struct {
		name string
		card Card
		pile []Card
		want bool
	}{
		{name: "ace on empty", card: fu(Spades, Ace), pile: nil, want: true},
		{name: "two on empty", card: fu(Hearts, Two), pile: nil, want: false},
		{name: "king on empty", card: fu(Clubs, King), pile: nil, want: false},
		{name: "next rank same suit", card: fu(Hearts, Two), pile: []Card{fu(Hearts, Ace)}, want: true},
		{name: "next rank wrong suit", card: fu(Diamonds, Two), pile: []Card{fu(Hearts, Ace)}, want: false},
		{name: "skipped rank", card: fu(Hearts, Three), pile: []Card{fu(Hearts, Ace)}, want: false},
		{name: "same rank", card: fu(Hearts, Ace), pile: []Card{fu(Hearts, Ace)}, want: false},
		{name: "rank below top", card: fu(Spades, Two), pile: []Card{fu(Spades, Ace), fu(Spades, Two), fu(Spades, Three)}, want: false},
		{name: "king completes", card: fu(Clubs, King), pile: []Card{fu(Clubs, Queen)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMoveToFoundation(tt.card, tt.pile); got != tt.want {
				t.Errorf("CanMoveToFoundation(%v) = %v, want %v", tt.card, got, tt.want)
			}
		})
	}
}

func TestCanMoveToTableau(t *testing.T) {
	tests := []struct {
		name string
		card Card
		pile []Card
		want bool
	}{
		{name: "king on empty", card: fu(Hearts, King), pile: nil, want: true},
		{name: "queen on empty", card: fu(Hearts, Queen), pile: nil, want: false},
		{name: "ace on empty", card: fu(Spades, Ace), pile: nil, want: false},
		{name: "red seven on black eight", card: fu(Hearts, Seven), pile: []Card{fu(Spades, Eight)}, want: true},
		{name: "red seven on black eight clubs", card: fu(Diamonds, Seven), pile: []Card{fu(Clubs, Eight)}, want: true},
		{name: "black seven on black eight", card: fu(Clubs, Seven), pile: []Card{fu(Spades, Eight)}, want: false},
		{name: "red seven on red eight", card: fu(Hearts, Seven), pile: []Card{fu(Diamonds, Eight)}, want: false},
		{name: "rank too low", card: fu(Hearts, Six), pile: []Card{fu(Spades, Eight)}, want: false},
		{name: "rank ascending", card: fu(Hearts, Nine), pile: []Card{fu(Spades, Eight)}, want: false},
		{name: "queen on black king", card: fu(Diamonds, Queen), pile: []Card{fd(Spades, Three), fu(Spades, King)}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMoveToTableau(tt.card, tt.pile); got != tt.want {
				t.Errorf("CanMoveToTableau(%v) = %v, want %v", tt.card, got, tt.want)
			}
		})
	}
}
