package aggregator

import (
	"math"

	"daily-report-go/internal/types"
)

const (
	highTierPercent   = 20
	mediumTierPercent = 10
)

// ComputeSummary derives the live form summary. It never fails: values
// that do not parse count as zero.
func ComputeSummary(fs types.FieldSet) types.Summary {
	calls := coerce(fs.CallsCount)
	resultative := coerce(fs.KPPlus) + coerce(fs.KP)
	pct := 0
	if calls > 0 {
		pct = roundPercent(resultative, calls)
	}
	return types.Summary{
		TotalCalls:        calls,
		ResultativeCalls:  resultative,
		ConversionPercent: pct,
		Tier:              Tier(pct),
	}
}

// Tier buckets a conversion percentage.
func Tier(percent int) types.ConversionTier {
	switch {
	case percent >= highTierPercent:
		return types.TierHigh
	case percent >= mediumTierPercent:
		return types.TierMedium
	default:
		return types.TierLow
	}
}

// ConversionRate is resultative/total as a percentage with one decimal,
// 0 when total is not positive.
func ConversionRate(resultative, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(resultative)/float64(total)*1000) / 10
}

// Totals is the roll-up of several submitted reports.
type Totals struct {
	Reports           int     `json:"reports"`
	TotalCalls        int     `json:"total_calls"`
	ResultativeCalls  int     `json:"resultative_calls"`
	AverageConversion float64 `json:"average_conversion"`
}

// Aggregate sums calls and resultative calls over reports; the average
// conversion is weighted by calls.
func Aggregate(reports []types.Report) Totals {
	t := Totals{Reports: len(reports)}
	for _, r := range reports {
		t.TotalCalls += r.CallsCount
		t.ResultativeCalls += r.Resultative()
	}
	t.AverageConversion = ConversionRate(t.ResultativeCalls, t.TotalCalls)
	return t
}

func coerce(raw string) int {
	n, err := types.ParseCount(raw)
	if err != nil {
		return 0
	}
	return n
}

// roundPercent computes round(100*num/den) with halves rounded away from
// zero. den must be positive.
func roundPercent(num, den int) int {
	const limit = math.MaxInt / 400
	if num > limit || num < -limit || den > limit {
		return int(math.Round(float64(num) * 100 / float64(den)))
	}
	if num < 0 {
		return -((-200*num + den) / (2 * den))
	}
	return (200*num + den) / (2 * den)
}
