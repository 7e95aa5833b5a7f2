package engine

// Target is the score ceiling a hand plays toward.
const Target = 21

// rankValues returns every point value the rank can count as.
// Numeric ranks count as their number, face cards as 10. An Ace may
// count as 1, 10 or 11 in this variant.
func rankValues(r Rank) []int {
	switch r {
	case "A":
		return []int{1, 10, 11}
	case "J", "Q", "K":
		return []int{10}
	case "10":
		return []int{10}
	default:
		// "2".."9"
		return []int{int(r[0] - '0')}
	}
}

// BestScore computes the best attainable total for a hand: the set of all
// achievable totals is the sumset over every card's value set; the result
// is the maximum total ≤ 21 if one exists, otherwise the minimum total
// overall, so a guaranteed-bust hand still has a displayable score.
func BestScore(hand []Card) int {
	totals := map[int]struct{}{0: {}}
	for _, c := range hand {
		next := make(map[int]struct{}, len(totals)*3)
		for t := range totals {
			for _, v := range rankValues(c.Rank) {
				next[t+v] = struct{}{}
			}
		}
		totals = next
	}

	best := -1
	min := -1
	for t := range totals {
		if min < 0 || t < min {
			min = t
		}
		if t <= Target && t > best {
			best = t
		}
	}
	if best >= 0 {
		return best
	}
	return min
}

// IsBust reports whether a score exceeds the target.
func IsBust(score int) bool {
	return score > Target
}

// HandClass ranks a hand's special status. Higher classes beat lower ones
// outright regardless of score.
type HandClass int

const (
	ClassNormal  HandClass = 1
	ClassNguLinh HandClass = 2 // five cards totalling ≤ 21
	ClassXiDach  HandClass = 3 // Ace + ten-valued card
	ClassXiBan   HandClass = 4 // two Aces
)

// Multiplier returns the payout multiplier the class commands.
func (hc HandClass) Multiplier() int {
	switch hc {
	case ClassXiBan:
		return 3
	case ClassXiDach:
		return 2
	default:
		return 1
	}
}

// IsXiBan reports a two-card hand of two Aces.
func IsXiBan(hand []Card) bool {
	return len(hand) == 2 && hand[0].Rank == "A" && hand[1].Rank == "A"
}

// IsXiDach reports a two-card hand of one Ace and one ten-valued card.
func IsXiDach(hand []Card) bool {
	if len(hand) != 2 {
		return false
	}
	if IsXiBan(hand) {
		return false
	}
	var aces, tens int
	for _, c := range hand {
		switch c.Rank {
		case "A":
			aces++
		case "10", "J", "Q", "K":
			tens++
		}
	}
	return aces == 1 && tens == 1
}

// IsNguLinh reports a five-card hand whose best score stays within the
// target. Only the card count and the score matter; a five-card 11 is
// still Ngũ Linh.
func IsNguLinh(hand []Card) bool {
	return len(hand) == 5 && BestScore(hand) <= Target
}

// Classify returns the hand's class, checking predicates in priority
// order so at most one can hold.
func Classify(hand []Card) HandClass {
	switch {
	case IsXiBan(hand):
		return ClassXiBan
	case IsXiDach(hand):
		return ClassXiDach
	case IsNguLinh(hand):
		return ClassNguLinh
	default:
		return ClassNormal
	}
}
