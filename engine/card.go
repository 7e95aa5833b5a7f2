// Package engine implements the Xì Dách (Vietnamese blackjack) rules.
//
// The package is a pure game core: every exported operation is a
// deterministic transform over explicit inputs, performs no I/O and
// holds no global state. The service layer owns persistence, identity
// and fan-out; the engine assumes it is the sole writer for the
// duration of one transition.
package engine

import "fmt"

// Suit is one of the four French suits, stored as its glyph.
type Suit string

const (
	SuitSpades   Suit = "♠"
	SuitHearts   Suit = "♥"
	SuitDiamonds Suit = "♦"
	SuitClubs    Suit = "♣"
)

// Suits lists all suits in deck-building order.
var Suits = [4]Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Rank is the textual rank of a card: "2".."10", "J", "Q", "K", "A".
type Rank string

// Ranks lists all ranks in deck-building order.
var Ranks = [13]Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Card is an immutable (rank, suit) pair. The wire form is the rank text
// immediately followed by the suit glyph, e.g. "A♠" or "10♥". No rank text
// ends in a suit glyph, so the encoding is unambiguous.
type Card struct {
	Rank Rank
	Suit Suit
}

// String returns the wire form of the card.
func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// IsRed reports whether the card's suit is hearts or diamonds.
func (c Card) IsRed() bool {
	return c.Suit == SuitHearts || c.Suit == SuitDiamonds
}

// ParseCard decodes the wire form: the last rune is the suit, the
// remainder is the rank.
func ParseCard(s string) (Card, error) {
	runes := []rune(s)
	if len(runes) < 2 {
		return Card{}, fmt.Errorf("engine: malformed card %q", s)
	}
	suit := Suit(runes[len(runes)-1])
	rank := Rank(runes[:len(runes)-1])
	if !validSuit(suit) {
		return Card{}, fmt.Errorf("engine: unknown suit in card %q", s)
	}
	if !validRank(rank) {
		return Card{}, fmt.Errorf("engine: unknown rank in card %q", s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

func validSuit(s Suit) bool {
	for _, v := range Suits {
		if v == s {
			return true
		}
	}
	return false
}

func validRank(r Rank) bool {
	for _, v := range Ranks {
		if v == r {
			return true
		}
	}
	return false
}

// MarshalText encodes the card in its wire form so documents serialize
// cards as plain strings ("A♠", "10♥").
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes the wire form.
func (c *Card) UnmarshalText(data []byte) error {
	parsed, err := ParseCard(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
