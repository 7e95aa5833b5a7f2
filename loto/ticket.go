package loto

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Color identifies a ticket color group. The two tickets of a color
// partition 1-90 between them with no overlap.
type Color string

const (
	Blue   Color = "blue"
	Navy   Color = "navy"
	Green  Color = "green"
	Red    Color = "red"
	Orange Color = "orange"
	Yellow Color = "yellow"
	Purple Color = "purple"
	Pink   Color = "pink"
)

// Colors lists the color groups in catalog order.
var Colors = [8]Color{Blue, Navy, Green, Red, Orange, Yellow, Purple, Pink}

// Labels maps each color to its Vietnamese display name.
var Labels = map[Color]string{
	Blue:   "Xanh dương",
	Navy:   "Xanh đậm",
	Green:  "Xanh lá",
	Red:    "Đỏ",
	Orange: "Cam",
	Yellow: "Vàng",
	Purple: "Tím",
	Pink:   "Hồng",
}

// Strip is one 3×9 sub-grid of a ticket. A cell holds a number, or 0 for
// a blank. Each row has exactly 5 numbers and 4 blanks.
type Strip [3][9]int

// Ticket is three strips of 15 numbers each: 45 numbers total, at most
// one number per (row, column) cell, column c drawing only from its fixed
// range.
type Ticket struct {
	ID     string   `json:"id"`
	Color  Color    `json:"color"`
	Strips [3]Strip `json:"strips"`
}

// Group is the pair of tickets sharing one color.
type Group struct {
	Color   Color     `json:"color"`
	Label   string    `json:"label"`
	Tickets [2]Ticket `json:"tickets"`
}

// colRanges holds the inclusive number range of each of the 9 columns.
// Column sizes are [9, 10, 10, 10, 10, 10, 10, 10, 11], summing to 90.
var colRanges = [9][2]int{
	{1, 9}, {10, 19}, {20, 29}, {30, 39}, {40, 49},
	{50, 59}, {60, 69}, {70, 79}, {80, 90},
}

// catalogSeed returns the fixed generation seed for color index i.
func catalogSeed(i int) int64 {
	return 2024 + int64(i)*997
}

var (
	catalogOnce sync.Once
	groups      []Group
	flat        []Ticket
)

// Groups returns the full ticket catalog, one pair per color, generated
// once from the fixed per-color seeds.
func Groups() []Group {
	catalogOnce.Do(buildCatalog)
	return groups
}

// Tickets returns all tickets of the catalog in color order.
func Tickets() []Ticket {
	catalogOnce.Do(buildCatalog)
	return flat
}

func buildCatalog() {
	groups = make([]Group, 0, len(Colors))
	flat = make([]Ticket, 0, 2*len(Colors))
	for i, color := range Colors {
		a, b := GeneratePair(catalogSeed(i))
		pair := [2]Ticket{
			{ID: fmt.Sprintf("%s-1", color), Color: color, Strips: a},
			{ID: fmt.Sprintf("%s-2", color), Color: color, Strips: b},
		}
		groups = append(groups, Group{Color: color, Label: Labels[color], Tickets: pair})
		flat = append(flat, pair[0], pair[1])
	}
}

// GeneratePair deterministically builds the two tickets of one color.
// Each column's numbers are shuffled with the seeded generator and split
// between the tickets; the floor split leaves ticket A one number short
// of 45, fixed by granting it an extra number from one of the odd-sized
// columns chosen via the seeded shuffle.
func GeneratePair(seed int64) ([3]Strip, [3]Strip) {
	rng := newLCG(seed)

	var allCols [9][]int
	for c, bounds := range colRanges {
		nums := make([]int, 0, bounds[1]-bounds[0]+1)
		for n := bounds[0]; n <= bounds[1]; n++ {
			nums = append(nums, n)
		}
		allCols[c] = shuffled(nums, rng)
	}

	var splits [9]int
	totalA := 0
	for c := range allCols {
		splits[c] = len(allCols[c]) / 2
		totalA += splits[c]
	}

	// The floor split yields 44; top ticket A up to exactly 45 from the
	// odd-length columns (sizes 9 and 11).
	var oddCols []int
	for c := range allCols {
		if len(allCols[c])%2 != 0 {
			oddCols = append(oddCols, c)
		}
	}
	oddCols = shuffled(oddCols, rng)
	for i := 0; totalA < 45 && i < len(oddCols); i++ {
		splits[oddCols[i]]++
		totalA++
	}

	var aCols, bCols [9][]int
	for c := range allCols {
		at := splits[c]
		aCols[c] = append([]int(nil), allCols[c][:at]...)
		bCols[c] = append([]int(nil), allCols[c][at:]...)
		sort.Ints(aCols[c])
		sort.Ints(bCols[c])
	}

	return buildTicket(aCols, rng), buildTicket(bCols, rng)
}

// buildTicket distributes a ticket's 45 numbers across 3 strips of 15.
// Per strip, each column's budget is its remaining count divided by the
// strips left, rounded to nearest and capped at 3 (one slot per row),
// then nudged up or down in seeded-shuffle order until the budgets sum to
// exactly 15.
func buildTicket(colNums [9][]int, rng *lcg) [3]Strip {
	var strips [3]Strip
	var usedPerCol [9]int

	for s := 0; s < 3; s++ {
		stripsLeft := 3 - s

		var budget [9]int
		total := 0
		for c := range colNums {
			remaining := len(colNums[c]) - usedPerCol[c]
			share := int(math.Round(float64(remaining) / float64(stripsLeft)))
			if share > 3 {
				share = 3
			}
			budget[c] = share
			total += share
		}

		adjustOrder := shuffled([]int{0, 1, 2, 3, 4, 5, 6, 7, 8}, rng)
		for total > 15 {
			for _, c := range adjustOrder {
				if total <= 15 {
					break
				}
				if budget[c] > 0 && stripsLeft > 1 {
					budget[c]--
					total--
				}
			}
			// Last strip has no future strips to absorb the remainder.
			if total > 15 {
				for _, c := range adjustOrder {
					if total <= 15 {
						break
					}
					if budget[c] > 0 {
						budget[c]--
						total--
					}
				}
			}
		}
		for total < 15 {
			grew := false
			for _, c := range adjustOrder {
				if total >= 15 {
					break
				}
				remaining := len(colNums[c]) - usedPerCol[c]
				if budget[c] < 3 && budget[c] < remaining {
					budget[c]++
					total++
					grew = true
				}
			}
			if total < 15 && !grew {
				break
			}
		}

		pattern := buildStripPattern(budget, rng)

		for c := range colNums {
			take := budget[c]
			if rem := len(colNums[c]) - usedPerCol[c]; take > rem {
				take = rem
			}
			nums := append([]int(nil), colNums[c][usedPerCol[c]:usedPerCol[c]+take]...)
			sort.Ints(nums)

			ni := 0
			for r := 0; r < 3; r++ {
				if pattern[r][c] && ni < len(nums) {
					strips[s][r][c] = nums[ni]
					ni++
				}
			}
			usedPerCol[c] += budget[c]
		}
	}

	return strips
}

// buildStripPattern picks which cells of a 3×9 strip are filled. Columns
// with the larger budgets are placed first (more constrained); each
// column's slots go to the rows currently holding the fewest numbers,
// never exceeding 5 per row or 1 per (row, column).
func buildStripPattern(budget [9]int, rng *lcg) [3][9]bool {
	var pattern [3][9]bool
	var rowCounts [3]int

	colOrder := shuffled([]int{0, 1, 2, 3, 4, 5, 6, 7, 8}, rng)
	sort.SliceStable(colOrder, func(i, j int) bool {
		return budget[colOrder[i]] > budget[colOrder[j]]
	})

	for _, c := range colOrder {
		if budget[c] == 0 {
			continue
		}
		candidates := make([]int, 0, 3)
		for r := 0; r < 3; r++ {
			if !pattern[r][c] && rowCounts[r] < 5 {
				candidates = append(candidates, r)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return rowCounts[candidates[i]] < rowCounts[candidates[j]]
		})
		if len(candidates) > budget[c] {
			candidates = candidates[:budget[c]]
		}
		for _, r := range candidates {
			pattern[r][c] = true
			rowCounts[r]++
		}
	}

	return pattern
}
