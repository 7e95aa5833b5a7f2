package engine

// Visibility policy. A card is visible to an observer when the round has
// resolved, when the dealer has permanently revealed it, or when the
// observer owns the hand and has locally peeked at that card. Peeks are
// ephemeral per-connection state supplied by the caller, never persisted,
// and never affect other observers.

// CardVisible reports whether ownerID's card at idx is visible to
// observerID. ownPeeks is the observer's ephemeral peek set and is only
// consulted for the observer's own hand. The dealer's hand has no
// permanent reveal set; the dealer always sees it, everyone else sees it
// at result.
func (r *Round) CardVisible(ownerID string, idx int, observerID string, ownPeeks map[int]bool) bool {
	if r.Phase == PhaseResult {
		return true
	}
	if ownerID == r.DealerID {
		return observerID == r.DealerID
	}
	if p, ok := r.Players[ownerID]; ok {
		for _, rev := range p.Revealed {
			if rev == idx {
				return true
			}
		}
	}
	return observerID == ownerID && ownPeeks[idx]
}

// HandVisible reports whether every card of ownerID's hand is visible to
// observerID. A hand's aggregate score and status may only be displayed
// once this holds.
func (r *Round) HandVisible(ownerID, observerID string, ownPeeks map[int]bool) bool {
	var n int
	if ownerID == r.DealerID {
		n = len(r.DealerCards)
	} else if p, ok := r.Players[ownerID]; ok {
		n = len(p.Cards)
	} else {
		return false
	}
	for i := 0; i < n; i++ {
		if !r.CardVisible(ownerID, i, observerID, ownPeeks) {
			return false
		}
	}
	return true
}
