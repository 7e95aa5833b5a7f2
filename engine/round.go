package engine

import (
	"errors"
	"math/rand"
)

// MaxPlayers caps the roster at nine player-participants besides the
// dealer. The dealer is never also a player.
const MaxPlayers = 9

// CardsDealt is the number of cards dealt to every participant and the
// dealer at round start.
const CardsDealt = 2

// Rejected transitions. The service layer absorbs these as no-ops:
// multiple clients race to apply the same action, so duplicates are
// expected and harmless.
var (
	ErrInvalidActor  = errors.New("engine: actor not permitted for this transition")
	ErrInvalidPhase  = errors.New("engine: transition not permitted in current phase")
	ErrNotYourTurn   = errors.New("engine: not the acting participant's turn")
	ErrRosterFull    = errors.New("engine: roster is at capacity")
	ErrAlreadyJoined = errors.New("engine: participant already joined")
	ErrEmptyDeck     = errors.New("engine: deck has no cards remaining")
	ErrNoPlayers     = errors.New("engine: round needs at least one participant")
	ErrUnknownTarget = errors.New("engine: unknown target participant")
)

// PlayerStatus is the per-participant turn status.
type PlayerStatus string

const (
	StatusPlaying PlayerStatus = "playing"
	StatusStand   PlayerStatus = "stand"
	StatusBust    PlayerStatus = "bust"
)

// DealerStatus is the dealer's turn status. The dealer additionally has a
// pre-turn "waiting" state.
type DealerStatus string

const (
	DealerWaiting DealerStatus = "waiting"
	DealerPlaying DealerStatus = "playing"
	DealerStand   DealerStatus = "stand"
	DealerBust    DealerStatus = "bust"
)

// Phase is the round lifecycle phase.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhasePlayerTurns Phase = "player_turns"
	PhaseDealerTurn  Phase = "dealer_turn"
	PhaseDealerDone  Phase = "dealer_done"
	PhaseResult      Phase = "result"
)

// PlayerState is one participant's hand and status. The hand grows only
// by appending; it never shrinks or reorders within a round. Revealed
// holds card indices permanently visible to all observers.
type PlayerState struct {
	Cards    []Card       `json:"cards"`
	Status   PlayerStatus `json:"status"`
	Score    int          `json:"score"`
	Name     string       `json:"name,omitempty"`
	Revealed []int        `json:"revealed_cards,omitempty"`
}

// Round is the xidach_game document: the complete state of one room's
// round, persisted verbatim. Seats records participants in join order so
// turn scanning is deterministic.
type Round struct {
	Deck         []Card                   `json:"deck"`
	DealerID     string                   `json:"dealer_id"`
	Seats        []string                 `json:"seats"`
	Players      map[string]*PlayerState  `json:"players"`
	DealerCards  []Card                   `json:"dealer_cards"`
	DealerStatus DealerStatus             `json:"dealer_status"`
	CurrentTurn  string                   `json:"current_turn,omitempty"`
	Phase        Phase                    `json:"phase"`
	Results      map[string]CompareResult `json:"results"`
}

// NewRound creates the empty waiting-phase round for a room. The dealer
// identity is fixed at creation and survives new rounds; it changes only
// through dealer migration at the service layer.
func NewRound(dealerID string) *Round {
	return &Round{
		Deck:         []Card{},
		DealerID:     dealerID,
		Seats:        []string{},
		Players:      map[string]*PlayerState{},
		DealerCards:  []Card{},
		DealerStatus: DealerWaiting,
		Phase:        PhaseWaiting,
		Results:      map[string]CompareResult{},
	}
}

// Join adds a participant with an empty hand during the waiting phase.
func (r *Round) Join(id, name string) error {
	if r.Phase != PhaseWaiting {
		return ErrInvalidPhase
	}
	if id == r.DealerID {
		return ErrInvalidActor
	}
	if _, ok := r.Players[id]; ok {
		return ErrAlreadyJoined
	}
	if len(r.Seats) >= MaxPlayers {
		return ErrRosterFull
	}
	r.Seats = append(r.Seats, id)
	r.Players[id] = &PlayerState{
		Cards:  []Card{},
		Status: StatusPlaying,
		Name:   name,
	}
	return nil
}

// Start deals a fresh round: a new shuffled deck, two cards to every
// participant in join order, two to the dealer, and the turn to the first
// joined participant. Dealer only, waiting phase only.
func (r *Round) Start(actor string, rng *rand.Rand) error {
	if actor != r.DealerID {
		return ErrInvalidActor
	}
	if r.Phase != PhaseWaiting {
		return ErrInvalidPhase
	}
	if len(r.Seats) == 0 {
		return ErrNoPlayers
	}

	deck := NewDeck(rng)
	idx := 0
	for _, id := range r.Seats {
		cards := []Card{deck[idx], deck[idx+1]}
		idx += CardsDealt
		r.Players[id] = &PlayerState{
			Cards:  cards,
			Status: StatusPlaying,
			Score:  BestScore(cards),
			Name:   r.Players[id].Name,
		}
	}
	r.DealerCards = []Card{deck[idx], deck[idx+1]}
	idx += CardsDealt

	r.Deck = deck[idx:]
	r.DealerStatus = DealerWaiting
	r.CurrentTurn = r.Seats[0]
	r.Phase = PhasePlayerTurns
	r.Results = map[string]CompareResult{}
	return nil
}

// draw removes the next card from the front of the deck. Guarded even
// though a 52-card deck cannot run out with at most ten hands in play.
func (r *Round) draw() (Card, error) {
	if len(r.Deck) == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := r.Deck[0]
	r.Deck = r.Deck[1:]
	return c, nil
}

// Hit draws one card for the current participant. A bust marks the
// participant but does not advance the turn (they must still stand
// explicitly); Ngũ Linh auto-stands and advances, the only hit outcome
// that does.
func (r *Round) Hit(actor string) error {
	if r.Phase != PhasePlayerTurns {
		return ErrInvalidPhase
	}
	if actor != r.CurrentTurn {
		return ErrNotYourTurn
	}
	p, ok := r.Players[actor]
	if !ok || p.Status != StatusPlaying {
		return ErrInvalidActor
	}

	card, err := r.draw()
	if err != nil {
		return err
	}
	p.Cards = append(p.Cards, card)
	p.Score = BestScore(p.Cards)

	if IsBust(p.Score) {
		p.Status = StatusBust
	}
	if IsNguLinh(p.Cards) {
		p.Status = StatusStand
		r.advanceFrom(actor)
	}
	return nil
}

// Stand ends the current participant's turn. A playing participant moves
// to stand; a busted one keeps its bust status. Either way the turn
// advances.
func (r *Round) Stand(actor string) error {
	if r.Phase != PhasePlayerTurns {
		return ErrInvalidPhase
	}
	if actor != r.CurrentTurn {
		return ErrNotYourTurn
	}
	p, ok := r.Players[actor]
	if !ok {
		return ErrInvalidActor
	}
	if p.Status == StatusPlaying {
		p.Status = StatusStand
	}
	r.advanceFrom(actor)
	return nil
}

// advanceFrom scans the seats after the acting participant for the next
// one still playing. Earlier seats have already acted, so no wrap is
// needed; when none remain the dealer takes the turn.
func (r *Round) advanceFrom(actor string) {
	start := 0
	for i, id := range r.Seats {
		if id == actor {
			start = i + 1
			break
		}
	}
	for _, id := range r.Seats[start:] {
		if r.Players[id].Status == StatusPlaying {
			r.CurrentTurn = id
			return
		}
	}
	r.CurrentTurn = r.DealerID
	r.Phase = PhaseDealerTurn
}

// DealerHit draws one card for the dealer. A bust or Ngũ Linh closes the
// dealer turn immediately; otherwise the dealer keeps playing and may hit
// again.
func (r *Round) DealerHit(actor string) error {
	if actor != r.DealerID {
		return ErrInvalidActor
	}
	if r.Phase != PhaseDealerTurn {
		return ErrInvalidPhase
	}

	card, err := r.draw()
	if err != nil {
		return err
	}
	r.DealerCards = append(r.DealerCards, card)

	switch {
	case IsBust(BestScore(r.DealerCards)):
		r.DealerStatus = DealerBust
		r.CurrentTurn = ""
		r.Phase = PhaseDealerDone
	case IsNguLinh(r.DealerCards):
		r.DealerStatus = DealerStand
		r.CurrentTurn = ""
		r.Phase = PhaseDealerDone
	default:
		r.DealerStatus = DealerPlaying
	}
	return nil
}

// DealerStand closes the dealer turn.
func (r *Round) DealerStand(actor string) error {
	if actor != r.DealerID {
		return ErrInvalidActor
	}
	if r.Phase != PhaseDealerTurn {
		return ErrInvalidPhase
	}
	r.DealerStatus = DealerStand
	r.CurrentTurn = ""
	r.Phase = PhaseDealerDone
	return nil
}

// RevealOne permanently reveals every card of one participant to all
// observers. Dealer only, any phase. The reveal is a one-way per-card
// flag, so repeating it is idempotent.
func (r *Round) RevealOne(actor, target string) error {
	if actor != r.DealerID {
		return ErrInvalidActor
	}
	p, ok := r.Players[target]
	if !ok {
		return ErrUnknownTarget
	}
	p.Revealed = allIndices(len(p.Cards))
	return nil
}

// Resolve reveals every participant's cards and computes all outcomes
// against the final dealer hand. Dealer only, dealer_done phase only.
func (r *Round) Resolve(actor string) error {
	if actor != r.DealerID {
		return ErrInvalidActor
	}
	if r.Phase != PhaseDealerDone {
		return ErrInvalidPhase
	}

	dealerScore := BestScore(r.DealerCards)
	dealerBust := IsBust(dealerScore)

	results := make(map[string]CompareResult, len(r.Players))
	for id, p := range r.Players {
		p.Revealed = allIndices(len(p.Cards))
		results[id] = Compare(p.Cards, r.DealerCards, p.Score, dealerScore, p.Status == StatusBust, dealerBust)
	}
	r.Results = results
	r.CurrentTurn = ""
	r.Phase = PhaseResult
	return nil
}

// Reset clears every card-bearing field for a new round while preserving
// the roster, names and dealer identity. Dealer only, any phase.
func (r *Round) Reset(actor string) error {
	if actor != r.DealerID {
		return ErrInvalidActor
	}
	for id, p := range r.Players {
		r.Players[id] = &PlayerState{
			Cards:  []Card{},
			Status: StatusPlaying,
			Name:   p.Name,
		}
	}
	r.Deck = []Card{}
	r.DealerCards = []Card{}
	r.DealerStatus = DealerWaiting
	r.CurrentTurn = ""
	r.Phase = PhaseWaiting
	r.Results = map[string]CompareResult{}
	return nil
}

// RemoveSeat drops a participant from the roster. Used by the service
// layer when a departed player is promoted to dealer; in-round departures
// otherwise leave the document untouched.
func (r *Round) RemoveSeat(id string) {
	delete(r.Players, id)
	for i, s := range r.Seats {
		if s == id {
			r.Seats = append(r.Seats[:i], r.Seats[i+1:]...)
			break
		}
	}
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
