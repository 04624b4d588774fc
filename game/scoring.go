package game

// ScoreBreakdown shows how a round score was reached
type ScoreBreakdown struct {
	NumberSum       int `json:"numberSum"`
	AfterMultiplier int `json:"afterMultiplier"`
	ModifierBonus   int `json:"modifierBonus"`
	FlipSevenBonus  int `json:"flipSevenBonus"`
	Final           int `json:"final"`
}

// Score totals a tableau. The multiplier applies to number cards only:
// X2 doubles the sum before additive modifiers and the Flip Seven bonus.
func Score(t *Tableau) ScoreBreakdown {
	if t.Busted() {
		return ScoreBreakdown{}
	}

	sum := 0
	for _, c := range t.numbers {
		sum += c.Value
	}

	multiplied := sum
	bonus := 0
	for _, m := range t.modifiers {
		if m.Modifier.IsMultiplier() {
			multiplied = sum * 2
			continue
		}
		bonus += m.Modifier.Bonus()
	}

	flipSeven := 0
	if t.distinctValues() == FlipSevenThreshold {
		flipSeven = FlipSevenBonus
	}

	return ScoreBreakdown{
		NumberSum:       sum,
		AfterMultiplier: multiplied,
		ModifierBonus:   bonus,
		FlipSevenBonus:  flipSeven,
		Final:           multiplied + bonus + flipSeven,
	}
}
