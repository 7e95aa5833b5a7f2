package engine

// Outcome is the result of a hand comparison from the player's
// perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

// CompareResult carries the outcome and the payout multiplier the winning
// side's hand class commands (1 on a draw or a normal win).
type CompareResult struct {
	Outcome    Outcome `json:"outcome"`
	Multiplier int     `json:"multiplier"`
}

// Compare ranks a player hand against the dealer hand.
//
// Special-hand class overrides score comparison entirely, including a
// would-be bust: the strictly higher class wins outright with that side's
// multiplier. Two equal classes of Xì Dách or Xì Bàn draw. Two Ngũ Linh
// hands invert the usual comparison: the lower score wins. Only when both
// hands are normal does bust/score play: a bust side loses to a non-bust
// side, both bust resolves as a player loss, otherwise the higher score
// wins.
func Compare(player, dealer []Card, playerScore, dealerScore int, playerBust, dealerBust bool) CompareResult {
	pc, dc := Classify(player), Classify(dealer)

	if pc > ClassNormal || dc > ClassNormal {
		switch {
		case pc > dc:
			return CompareResult{Outcome: OutcomeWin, Multiplier: pc.Multiplier()}
		case dc > pc:
			return CompareResult{Outcome: OutcomeLose, Multiplier: dc.Multiplier()}
		case pc == ClassNguLinh:
			// Both Ngũ Linh: lower score wins.
			switch {
			case playerScore < dealerScore:
				return CompareResult{Outcome: OutcomeWin, Multiplier: 1}
			case playerScore > dealerScore:
				return CompareResult{Outcome: OutcomeLose, Multiplier: 1}
			default:
				return CompareResult{Outcome: OutcomeDraw, Multiplier: 1}
			}
		default:
			// Both Xì Dách or both Xì Bàn.
			return CompareResult{Outcome: OutcomeDraw, Multiplier: 1}
		}
	}

	switch {
	case playerBust:
		// Both busting is a player loss: the house wins bust ties.
		return CompareResult{Outcome: OutcomeLose, Multiplier: 1}
	case dealerBust:
		return CompareResult{Outcome: OutcomeWin, Multiplier: 1}
	case playerScore > dealerScore:
		return CompareResult{Outcome: OutcomeWin, Multiplier: 1}
	case playerScore < dealerScore:
		return CompareResult{Outcome: OutcomeLose, Multiplier: 1}
	default:
		return CompareResult{Outcome: OutcomeDraw, Multiplier: 1}
	}
}
