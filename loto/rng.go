// Package loto implements the Lô Tô (Vietnamese bingo) core: the
// deterministic 90-number ticket generator and the caller's draw helper.
// Like the engine package it is pure; tickets are reference data built
// once from fixed seeds, never mutated during play.
package loto

// lcg is the Lehmer linear-congruential generator the tickets are seeded
// with (multiplier 16807, modulus 2^31−1). Determinism matters: every
// client must derive the identical ticket catalog from the same seeds.
type lcg struct {
	state int64
}

func newLCG(seed int64) *lcg {
	return &lcg{state: seed}
}

// next returns a uniform value in (0, 1).
func (r *lcg) next() float64 {
	r.state = (r.state * 16807) % 2147483647
	return float64(r.state-1) / 2147483646
}

// intn returns a value in [0, n).
func (r *lcg) intn(n int) int {
	return int(r.next() * float64(n))
}

// shuffled returns a Fisher–Yates shuffled copy of nums.
func shuffled(nums []int, rng *lcg) []int {
	a := append([]int(nil), nums...)
	for i := len(a) - 1; i > 0; i-- {
		j := rng.intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
	return a
}
