package loto

import "math/rand"

// NumberCount is the size of the Lô Tô number pool.
const NumberCount = 90

// NextNumber picks a uniformly random number in 1-90 that is not yet in
// drawn. ok is false once all 90 numbers have been called.
func NextNumber(drawn []int, rng *rand.Rand) (n int, ok bool) {
	taken := make(map[int]bool, len(drawn))
	for _, d := range drawn {
		if d >= 1 && d <= NumberCount {
			taken[d] = true
		}
	}
	remaining := make([]int, 0, NumberCount-len(taken))
	for i := 1; i <= NumberCount; i++ {
		if !taken[i] {
			remaining = append(remaining, i)
		}
	}
	if len(remaining) == 0 {
		return 0, false
	}
	return remaining[rng.Intn(len(remaining))], true
}
