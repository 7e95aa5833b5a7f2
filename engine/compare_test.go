package engine

import "testing"

func TestCompareSpecialClassPrecedence(t *testing.T) {
	xiban := []string{"A♠", "A♥"}
	xidach := []string{"A♦", "K♥"}
	ngulinh := []string{"2♠", "3♥", "2♦", "4♣", "3♠"} // 14, five cards
	normal20 := []string{"10♠", "J♥"}

	cases := []struct {
		name           string
		player, dealer []string
		want           CompareResult
	}{
		{"xiban beats xidach", xiban, xidach, CompareResult{OutcomeWin, 3}},
		{"xidach loses to xiban", xidach, xiban, CompareResult{OutcomeLose, 3}},
		{"xidach beats normal 20", xidach, normal20, CompareResult{OutcomeWin, 2}},
		{"normal loses to dealer xidach", normal20, xidach, CompareResult{OutcomeLose, 2}},
		{"ngulinh beats normal", ngulinh, normal20, CompareResult{OutcomeWin, 1}},
		{"both xidach draws", xidach, []string{"A♣", "Q♠"}, CompareResult{OutcomeDraw, 1}},
	}
	for _, tc := range cases {
		p, d := hand(t, tc.player...), hand(t, tc.dealer...)
		ps, ds := BestScore(p), BestScore(d)
		got := Compare(p, d, ps, ds, IsBust(ps), IsBust(ds))
		if got != tc.want {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

// TestCompareBothNguLinhInverted: between two Ngũ Linh hands the lower
// score wins.
func TestCompareBothNguLinhInverted(t *testing.T) {
	nl15 := hand(t, "2♠", "3♥", "2♦", "4♣", "4♠") // 15
	nl12 := hand(t, "2♥", "2♣", "3♦", "2♠", "3♣") // 12

	got := Compare(nl15, nl12, 15, 12, false, false)
	if got.Outcome != OutcomeLose || got.Multiplier != 1 {
		t.Errorf("Ngũ Linh 15 vs 12: got %+v, want lose ×1", got)
	}

	got = Compare(nl12, nl15, 12, 15, false, false)
	if got.Outcome != OutcomeWin {
		t.Errorf("Ngũ Linh 12 vs 15: got %+v, want win", got)
	}

	got = Compare(nl12, nl12, 12, 12, false, false)
	if got.Outcome != OutcomeDraw {
		t.Errorf("equal Ngũ Linh scores: got %+v, want draw", got)
	}
}

// TestCompareSpecialOverridesBust: a special hand on one side decides the
// outcome even when the other side would matter under bust rules.
func TestCompareSpecialOverridesBust(t *testing.T) {
	bust := hand(t, "K♠", "Q♥", "5♦") // 25
	xidach := hand(t, "A♦", "K♥")

	got := Compare(bust, xidach, 25, 21, true, false)
	if got.Outcome != OutcomeLose || got.Multiplier != 2 {
		t.Errorf("bust vs dealer Xì Dách: got %+v, want lose ×2", got)
	}
}

func TestCompareNormalPlay(t *testing.T) {
	h20 := hand(t, "10♠", "J♥")
	h18 := hand(t, "10♦", "8♥")
	bust := hand(t, "K♠", "Q♥", "5♦")

	cases := []struct {
		name           string
		player, dealer []Card
		ps, ds         int
		pb, db         bool
		want           Outcome
	}{
		{"higher score wins", h20, h18, 20, 18, false, false, OutcomeWin},
		{"lower score loses", h18, h20, 18, 20, false, false, OutcomeLose},
		{"equal scores draw", h20, h20, 20, 20, false, false, OutcomeDraw},
		{"player bust loses", bust, h18, 25, 18, true, false, OutcomeLose},
		{"dealer bust loses", h18, bust, 18, 25, false, true, OutcomeWin},
		// Both busting resolves as a player loss.
		{"both bust favors house", bust, bust, 25, 25, true, true, OutcomeLose},
	}
	for _, tc := range cases {
		got := Compare(tc.player, tc.dealer, tc.ps, tc.ds, tc.pb, tc.db)
		if got.Outcome != tc.want || got.Multiplier != 1 {
			t.Errorf("%s: got %+v, want %s ×1", tc.name, got, tc.want)
		}
	}
}
