package game

import (
	"github.com/CuongBC195/vuivengaytet/engine"
)

// ViewCard is one card as a specific observer may see it. Hidden cards
// keep their position but reveal nothing.
type ViewCard struct {
	Known bool   `json:"known"`
	Card  string `json:"card,omitempty"`
}

// PlayerView is one participant's hand tailored to an observer. Score
// and status are populated only once every card of the hand is visible
// to that observer.
type PlayerView struct {
	ID      string                `json:"id"`
	Name    string                `json:"name,omitempty"`
	Cards   []ViewCard            `json:"cards"`
	Score   *int                  `json:"score,omitempty"`
	Status  engine.PlayerStatus   `json:"status,omitempty"`
	IsTurn  bool                  `json:"is_turn"`
	Outcome *engine.CompareResult `json:"outcome,omitempty"`
}

// DealerView is the dealer's hand tailored to an observer.
type DealerView struct {
	ID     string              `json:"id"`
	Cards  []ViewCard          `json:"cards"`
	Score  *int                `json:"score,omitempty"`
	Status engine.DealerStatus `json:"status,omitempty"`
	IsTurn bool                `json:"is_turn"`
}

// RoundView is the full round as one observer may see it. The observer's
// ephemeral peeks reveal only their own cards and only to them; nothing
// about peeking is ever persisted or broadcast.
type RoundView struct {
	Phase       engine.Phase `json:"phase"`
	CurrentTurn string       `json:"current_turn,omitempty"`
	DeckSize    int          `json:"deck_size"`
	Dealer      DealerView   `json:"dealer"`
	Players     []PlayerView `json:"players"`
}

// BuildView projects a round for one observer, applying the visibility
// policy card by card.
func BuildView(r *engine.Round, observer string, ownPeeks map[int]bool) RoundView {
	view := RoundView{
		Phase:       r.Phase,
		CurrentTurn: r.CurrentTurn,
		DeckSize:    len(r.Deck),
		Players:     make([]PlayerView, 0, len(r.Seats)),
	}

	view.Dealer = DealerView{
		ID:     r.DealerID,
		Cards:  projectHand(r, r.DealerID, r.DealerCards, observer, ownPeeks),
		IsTurn: r.CurrentTurn == r.DealerID,
	}
	if r.HandVisible(r.DealerID, observer, ownPeeks) {
		score := engine.BestScore(r.DealerCards)
		view.Dealer.Score = &score
		view.Dealer.Status = r.DealerStatus
	}

	for _, id := range r.Seats {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		pv := PlayerView{
			ID:     id,
			Name:   p.Name,
			Cards:  projectHand(r, id, p.Cards, observer, ownPeeks),
			IsTurn: r.CurrentTurn == id,
		}
		if r.HandVisible(id, observer, ownPeeks) {
			score := p.Score
			pv.Score = &score
			pv.Status = p.Status
		}
		if res, ok := r.Results[id]; ok && r.Phase == engine.PhaseResult {
			outcome := res
			pv.Outcome = &outcome
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

func projectHand(r *engine.Round, ownerID string, cards []engine.Card, observer string, ownPeeks map[int]bool) []ViewCard {
	peeks := ownPeeks
	if observer != ownerID {
		peeks = nil
	}
	out := make([]ViewCard, len(cards))
	for i, c := range cards {
		if r.CardVisible(ownerID, i, observer, peeks) {
			out[i] = ViewCard{Known: true, Card: c.String()}
		} else {
			out[i] = ViewCard{}
		}
	}
	return out
}
