package engine

import "math/rand"

// DeckSize is the number of cards in a fresh deck.
const DeckSize = 52

// NewDeck builds the 4×13 cartesian product and applies a Fisher-Yates
// shuffle using the supplied source. A fresh deck is created at the start
// of each round and consumed from the front as cards are dealt; it is
// never reused within a round.
func NewDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
