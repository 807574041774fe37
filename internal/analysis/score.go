package analysis

// DefaultThreshold is the Rule of 40 cut-off.
const DefaultThreshold = 40.0

// Score is accumulated revenue YoY growth plus accumulated gross margin.
func Score(f Financials) float64 {
	return f.AccumulatedRevenueYoY.Float() + f.AccumulatedGrossMargin.Float()
}

func IsHighGrowth(score, threshold float64) bool {
	return score >= threshold
}

// Finalize overwrites whatever score the model claimed with the local formula.
func Finalize(r *Result, threshold float64) {
	r.Score = Score(r.Financials)
	r.IsHighGrowth = IsHighGrowth(r.Score, threshold)
}

// GaugeValue clamps score into [0, 100] for the semicircle gauge.
func GaugeValue(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
