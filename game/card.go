package game

import (
	"fmt"
	"strings"
)

type Suit byte

const (
	Clubs    Suit = 'C'
	Diamonds Suit = 'D'
	Hearts   Suit = 'H'
	Spades   Suit = 'S'
)

var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

const (
	MinRank = 8  // Eights are the lowest card in the deck
	MaxRank = 14 // Ace
)

const rankSymbols = "??23456789TJQKA"

// Card is a playing card. Rank runs from MinRank to MaxRank (Jack=11,
// Queen=12, King=13, Ace=14).
type Card struct {
	Rank int
	Suit Suit
}

func NewCard(rank int, suit Suit) (Card, error) {
	if rank < MinRank || rank > MaxRank {
		return Card{}, fmt.Errorf("invalid rank %d", rank)
	}
	if !validSuit(suit) {
		return Card{}, fmt.Errorf("invalid suit %q", suit)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCard reads the two character notation used by String, e.g. "TS".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return Card{}, fmt.Errorf("card %q: want rank and suit, e.g. QH", s)
	}
	rank := strings.LastIndexByte(rankSymbols, s[0])
	if rank < 2 {
		return Card{}, fmt.Errorf("card %q: unknown rank", s)
	}
	return NewCard(rank, Suit(s[1]))
}

func (c Card) String() string {
	return string(rankSymbols[c.Rank]) + string(c.Suit)
}

func validSuit(suit Suit) bool {
	for _, s := range Suits {
		if s == suit {
			return true
		}
	}
	return false
}

// Deck returns the full deck ordered by rank, then suit.
func Deck() []Card {
	deck := make([]Card, 0, (MaxRank-MinRank+1)*len(Suits))
	for rank := MinRank; rank <= MaxRank; rank++ {
		for _, suit := range Suits {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}
