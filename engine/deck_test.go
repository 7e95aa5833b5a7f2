package engine

import (
	"math/rand"
	"testing"
)

// TestNewDeckSetEquality verifies every shuffle outcome contains exactly
// one of each of the 52 rank×suit combinations.
func TestNewDeckSetEquality(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		deck := NewDeck(rand.New(rand.NewSource(seed)))
		if len(deck) != DeckSize {
			t.Fatalf("seed %d: deck size %d", seed, len(deck))
		}
		seen := make(map[Card]bool, DeckSize)
		for _, c := range deck {
			if seen[c] {
				t.Fatalf("seed %d: duplicate card %s", seed, c)
			}
			seen[c] = true
		}
		for _, suit := range Suits {
			for _, rank := range Ranks {
				if !seen[(Card{Rank: rank, Suit: suit})] {
					t.Fatalf("seed %d: missing card %s%s", seed, rank, suit)
				}
			}
		}
	}
}

// TestNewDeckShuffles is a sanity check that two seeds do not produce the
// same ordering.
func TestNewDeckShuffles(t *testing.T) {
	a := NewDeck(rand.New(rand.NewSource(1)))
	b := NewDeck(rand.New(rand.NewSource(2)))
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("two different seeds produced identical deck order")
	}
}
