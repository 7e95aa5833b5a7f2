package engine

import (
	"math/rand"
	"reflect"
	"testing"
)

func newTestRound(t *testing.T, players ...string) *Round {
	t.Helper()
	r := NewRound("dealer")
	for _, id := range players {
		if err := r.Join(id, "Player "+id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return r
}

func rng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestJoinRules(t *testing.T) {
	r := newTestRound(t, "a")

	if err := r.Join("a", ""); err != ErrAlreadyJoined {
		t.Errorf("duplicate join: got %v, want ErrAlreadyJoined", err)
	}
	if err := r.Join("dealer", ""); err != ErrInvalidActor {
		t.Errorf("dealer joining as player: got %v, want ErrInvalidActor", err)
	}

	for i := 0; i < MaxPlayers-1; i++ {
		id := string(rune('b' + i))
		if err := r.Join(id, ""); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if err := r.Join("overflow", ""); err != ErrRosterFull {
		t.Errorf("join past capacity: got %v, want ErrRosterFull", err)
	}

	if err := r.Start("dealer", rng(1)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Join("late", ""); err != ErrInvalidPhase {
		t.Errorf("join after start: got %v, want ErrInvalidPhase", err)
	}
}

func TestStartDealsAndConservation(t *testing.T) {
	r := newTestRound(t, "a", "b", "c")

	if err := r.Start("a", rng(1)); err != ErrInvalidActor {
		t.Errorf("non-dealer start: got %v, want ErrInvalidActor", err)
	}
	if err := r.Start("dealer", rng(1)); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if got := len(r.Players[id].Cards); got != 2 {
			t.Errorf("player %s dealt %d cards, want 2", id, got)
		}
		if r.Players[id].Score != BestScore(r.Players[id].Cards) {
			t.Errorf("player %s score not recomputed", id)
		}
	}
	if len(r.DealerCards) != 2 {
		t.Errorf("dealer dealt %d cards, want 2", len(r.DealerCards))
	}
	if len(r.Deck) != DeckSize-8 {
		t.Errorf("deck has %d cards, want %d", len(r.Deck), DeckSize-8)
	}
	if r.CurrentTurn != "a" {
		t.Errorf("current turn %q, want first joined participant", r.CurrentTurn)
	}
	if r.Phase != PhasePlayerTurns {
		t.Errorf("phase %q, want player_turns", r.Phase)
	}

	// Conservation: dealt cards plus deck remainder is the full deck.
	total := len(r.Deck) + len(r.DealerCards)
	for _, p := range r.Players {
		total += len(p.Cards)
	}
	if total != DeckSize {
		t.Errorf("card conservation violated: %d", total)
	}
}

func TestStartRequiresPlayers(t *testing.T) {
	r := NewRound("dealer")
	if err := r.Start("dealer", rng(1)); err != ErrNoPlayers {
		t.Errorf("start with empty roster: got %v, want ErrNoPlayers", err)
	}
}

func TestHitAppendsAndConserves(t *testing.T) {
	r := newTestRound(t, "a", "b")
	if err := r.Start("dealer", rng(3)); err != nil {
		t.Fatalf("start: %v", err)
	}

	deckBefore := len(r.Deck)
	if err := r.Hit("b"); err != ErrNotYourTurn {
		t.Errorf("out-of-turn hit: got %v, want ErrNotYourTurn", err)
	}
	if err := r.Hit("a"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if len(r.Players["a"].Cards) != 3 {
		t.Errorf("hand has %d cards, want 3", len(r.Players["a"].Cards))
	}
	if len(r.Deck) != deckBefore-1 {
		t.Errorf("deck shrank by %d, want 1", deckBefore-len(r.Deck))
	}
}

// TestHitBustDoesNotAdvance: a busted participant keeps the turn and must
// stand explicitly.
func TestHitBustDoesNotAdvance(t *testing.T) {
	r := newTestRound(t, "a", "b")
	r.Phase = PhasePlayerTurns
	r.CurrentTurn = "a"
	r.Players["a"].Cards = hand(t, "K♠", "Q♥")
	r.Players["a"].Score = 20
	r.Deck = hand(t, "9♦", "2♣")

	if err := r.Hit("a"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if r.Players["a"].Status != StatusBust {
		t.Errorf("status %q, want bust", r.Players["a"].Status)
	}
	if r.CurrentTurn != "a" {
		t.Errorf("turn advanced to %q on bust", r.CurrentTurn)
	}

	// A busted participant may no longer hit, only stand.
	if err := r.Hit("a"); err != ErrInvalidActor {
		t.Errorf("hit while busted: got %v, want ErrInvalidActor", err)
	}
	if err := r.Stand("a"); err != nil {
		t.Fatalf("stand: %v", err)
	}
	if r.Players["a"].Status != StatusBust {
		t.Errorf("stand overwrote bust status with %q", r.Players["a"].Status)
	}
	if r.CurrentTurn != "b" {
		t.Errorf("turn is %q after stand, want b", r.CurrentTurn)
	}
}

// TestHitNguLinhAutoAdvances: Ngũ Linh is the only hit outcome that
// advances the turn by itself.
func TestHitNguLinhAutoAdvances(t *testing.T) {
	r := newTestRound(t, "a", "b")
	r.Phase = PhasePlayerTurns
	r.CurrentTurn = "a"
	r.Players["a"].Cards = hand(t, "2♠", "2♥", "2♦", "2♣")
	r.Players["a"].Score = 8
	r.Deck = hand(t, "3♠", "9♦")

	if err := r.Hit("a"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if r.Players["a"].Status != StatusStand {
		t.Errorf("status %q, want stand", r.Players["a"].Status)
	}
	if !IsNguLinh(r.Players["a"].Cards) {
		t.Error("hand should be Ngũ Linh")
	}
	if r.CurrentTurn != "b" {
		t.Errorf("turn is %q, want auto-advance to b", r.CurrentTurn)
	}
}

// TestAdvanceToDealer: with [a,b,c] where a stands, c is bust and b (the
// actor) stands, no participant remains playing and the dealer takes the
// turn.
func TestAdvanceToDealer(t *testing.T) {
	r := newTestRound(t, "a", "b", "c")
	if err := r.Start("dealer", rng(5)); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Players["a"].Status = StatusStand
	r.Players["c"].Status = StatusBust
	r.CurrentTurn = "b"

	if err := r.Stand("b"); err != nil {
		t.Fatalf("stand: %v", err)
	}
	if r.Phase != PhaseDealerTurn {
		t.Errorf("phase %q, want dealer_turn", r.Phase)
	}
	if r.CurrentTurn != "dealer" {
		t.Errorf("turn %q, want dealer", r.CurrentTurn)
	}
}

func TestDealerHitOutcomes(t *testing.T) {
	// Bust closes the dealer turn immediately.
	r := newTestRound(t, "a")
	r.Phase = PhaseDealerTurn
	r.CurrentTurn = "dealer"
	r.DealerCards = hand(t, "K♠", "Q♥")
	r.Deck = hand(t, "9♦")
	if err := r.DealerHit("a"); err != ErrInvalidActor {
		t.Errorf("player calling dealer hit: got %v, want ErrInvalidActor", err)
	}
	if err := r.DealerHit("dealer"); err != nil {
		t.Fatalf("dealer hit: %v", err)
	}
	if r.DealerStatus != DealerBust || r.Phase != PhaseDealerDone {
		t.Errorf("dealer bust: status %q phase %q", r.DealerStatus, r.Phase)
	}

	// Ngũ Linh stands the dealer and closes the turn.
	r = newTestRound(t, "a")
	r.Phase = PhaseDealerTurn
	r.DealerCards = hand(t, "2♠", "2♥", "2♦", "2♣")
	r.Deck = hand(t, "3♠")
	if err := r.DealerHit("dealer"); err != nil {
		t.Fatalf("dealer hit: %v", err)
	}
	if r.DealerStatus != DealerStand || r.Phase != PhaseDealerDone {
		t.Errorf("dealer Ngũ Linh: status %q phase %q", r.DealerStatus, r.Phase)
	}

	// Any other outcome keeps the dealer playing.
	r = newTestRound(t, "a")
	r.Phase = PhaseDealerTurn
	r.DealerCards = hand(t, "2♠", "3♥")
	r.Deck = hand(t, "4♦", "5♣")
	if err := r.DealerHit("dealer"); err != nil {
		t.Fatalf("dealer hit: %v", err)
	}
	if r.DealerStatus != DealerPlaying || r.Phase != PhaseDealerTurn {
		t.Errorf("dealer keeps playing: status %q phase %q", r.DealerStatus, r.Phase)
	}
	if err := r.DealerStand("dealer"); err != nil {
		t.Fatalf("dealer stand: %v", err)
	}
	if r.DealerStatus != DealerStand || r.Phase != PhaseDealerDone {
		t.Errorf("dealer stand: status %q phase %q", r.DealerStatus, r.Phase)
	}
}

// TestDealerDoneClearsTurn: once the dealer turn closes, nobody holds
// the turn until a new round starts. Covers all three paths into
// dealer_done.
func TestDealerDoneClearsTurn(t *testing.T) {
	// Stand.
	r := newTestRound(t, "a")
	r.Phase = PhaseDealerTurn
	r.CurrentTurn = "dealer"
	r.DealerCards = hand(t, "K♠", "8♥")
	if err := r.DealerStand("dealer"); err != nil {
		t.Fatalf("dealer stand: %v", err)
	}
	if r.CurrentTurn != "" {
		t.Errorf("turn %q after dealer stand, want none", r.CurrentTurn)
	}

	// Bust on hit.
	r = newTestRound(t, "a")
	r.Phase = PhaseDealerTurn
	r.CurrentTurn = "dealer"
	r.DealerCards = hand(t, "K♠", "Q♥")
	r.Deck = hand(t, "9♦")
	if err := r.DealerHit("dealer"); err != nil {
		t.Fatalf("dealer hit: %v", err)
	}
	if r.CurrentTurn != "" {
		t.Errorf("turn %q after dealer bust, want none", r.CurrentTurn)
	}

	// Ngũ Linh on hit.
	r = newTestRound(t, "a")
	r.Phase = PhaseDealerTurn
	r.CurrentTurn = "dealer"
	r.DealerCards = hand(t, "2♠", "2♥", "2♦", "2♣")
	r.Deck = hand(t, "3♠")
	if err := r.DealerHit("dealer"); err != nil {
		t.Fatalf("dealer hit: %v", err)
	}
	if r.CurrentTurn != "" {
		t.Errorf("turn %q after dealer Ngũ Linh, want none", r.CurrentTurn)
	}
}

func TestRevealOneIdempotent(t *testing.T) {
	r := newTestRound(t, "a")
	r.Players["a"].Cards = hand(t, "2♠", "3♥", "4♦")

	if err := r.RevealOne("a", "a"); err != ErrInvalidActor {
		t.Errorf("non-dealer reveal: got %v, want ErrInvalidActor", err)
	}
	if err := r.RevealOne("dealer", "ghost"); err != ErrUnknownTarget {
		t.Errorf("unknown target: got %v, want ErrUnknownTarget", err)
	}

	if err := r.RevealOne("dealer", "a"); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	once := append([]int(nil), r.Players["a"].Revealed...)
	if err := r.RevealOne("dealer", "a"); err != nil {
		t.Fatalf("second reveal: %v", err)
	}
	if !reflect.DeepEqual(once, r.Players["a"].Revealed) {
		t.Errorf("reveal not idempotent: %v then %v", once, r.Players["a"].Revealed)
	}
	if !reflect.DeepEqual(r.Players["a"].Revealed, []int{0, 1, 2}) {
		t.Errorf("revealed %v, want all indices", r.Players["a"].Revealed)
	}
}

func TestResolveComputesAllOutcomes(t *testing.T) {
	r := newTestRound(t, "a", "b")
	r.Phase = PhaseDealerDone
	r.Players["a"].Cards = hand(t, "10♠", "J♥") // 20
	r.Players["a"].Score = 20
	r.Players["a"].Status = StatusStand
	r.Players["b"].Cards = hand(t, "K♠", "Q♦", "5♥") // bust
	r.Players["b"].Score = 25
	r.Players["b"].Status = StatusBust
	r.DealerCards = hand(t, "10♦", "8♣") // 18
	r.DealerStatus = DealerStand

	if err := r.Resolve("dealer"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Phase != PhaseResult {
		t.Errorf("phase %q, want result", r.Phase)
	}
	if r.CurrentTurn != "" {
		t.Errorf("current turn %q, want none", r.CurrentTurn)
	}
	if got := r.Results["a"]; got.Outcome != OutcomeWin {
		t.Errorf("a: got %+v, want win", got)
	}
	if got := r.Results["b"]; got.Outcome != OutcomeLose {
		t.Errorf("b: got %+v, want lose", got)
	}
	for id, p := range r.Players {
		if len(p.Revealed) != len(p.Cards) {
			t.Errorf("%s: cards not fully revealed after resolve", id)
		}
	}
}

func TestResolveRequiresDealerDone(t *testing.T) {
	r := newTestRound(t, "a")
	if err := r.Start("dealer", rng(9)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Resolve("dealer"); err != ErrInvalidPhase {
		t.Errorf("resolve mid-round: got %v, want ErrInvalidPhase", err)
	}
}

func TestResetPreservesRoster(t *testing.T) {
	r := newTestRound(t, "a", "b")
	if err := r.Start("dealer", rng(11)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Reset("a"); err != ErrInvalidActor {
		t.Errorf("non-dealer reset: got %v, want ErrInvalidActor", err)
	}
	if err := r.Reset("dealer"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if r.Phase != PhaseWaiting || r.CurrentTurn != "" {
		t.Errorf("reset left phase %q turn %q", r.Phase, r.CurrentTurn)
	}
	if len(r.Deck) != 0 || len(r.DealerCards) != 0 || r.DealerStatus != DealerWaiting {
		t.Error("reset left dealer state behind")
	}
	if !reflect.DeepEqual(r.Seats, []string{"a", "b"}) {
		t.Errorf("roster changed: %v", r.Seats)
	}
	for id, p := range r.Players {
		if len(p.Cards) != 0 || p.Status != StatusPlaying || p.Score != 0 {
			t.Errorf("%s not reset: %+v", id, p)
		}
		if p.Name == "" {
			t.Errorf("%s lost its name", id)
		}
	}
	if len(r.Results) != 0 {
		t.Error("reset kept results")
	}
}

func TestHitEmptyDeckIgnored(t *testing.T) {
	r := newTestRound(t, "a")
	r.Phase = PhasePlayerTurns
	r.CurrentTurn = "a"
	r.Deck = []Card{}
	if err := r.Hit("a"); err != ErrEmptyDeck {
		t.Errorf("hit on empty deck: got %v, want ErrEmptyDeck", err)
	}
	if len(r.Players["a"].Cards) != 0 {
		t.Error("empty-deck hit mutated the hand")
	}
}

func TestCardVisibility(t *testing.T) {
	r := newTestRound(t, "a", "b")
	r.Phase = PhasePlayerTurns
	r.Players["a"].Cards = hand(t, "2♠", "3♥")

	// Hidden by default, even from the owner without a peek.
	if r.CardVisible("a", 0, "a", nil) {
		t.Error("unpeeked own card should be hidden")
	}
	if r.CardVisible("a", 0, "b", nil) {
		t.Error("opponent card should be hidden")
	}

	// A local peek reveals only to the owner.
	peeks := map[int]bool{0: true}
	if !r.CardVisible("a", 0, "a", peeks) {
		t.Error("peeked own card should be visible")
	}
	if r.CardVisible("a", 0, "b", peeks) {
		t.Error("peek must not leak to other observers")
	}
	if r.HandVisible("a", "a", peeks) {
		t.Error("hand with one unpeeked card is not fully visible")
	}

	// A permanent reveal is visible to everyone.
	if err := r.RevealOne("dealer", "a"); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if !r.CardVisible("a", 1, "b", nil) {
		t.Error("revealed card should be visible to all")
	}
	if !r.HandVisible("a", "b", nil) {
		t.Error("fully revealed hand should be visible to all")
	}

	// Dealer cards: dealer sees own hand, others only at result.
	r.DealerCards = hand(t, "K♠", "Q♥")
	if !r.CardVisible("dealer", 0, "dealer", nil) {
		t.Error("dealer sees own cards")
	}
	if r.CardVisible("dealer", 0, "a", nil) {
		t.Error("dealer cards hidden before result")
	}

	// Result phase makes everything visible.
	r.Phase = PhaseResult
	if !r.CardVisible("dealer", 0, "a", nil) || !r.HandVisible("a", "b", nil) {
		t.Error("all cards visible at result")
	}
}
