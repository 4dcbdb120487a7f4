package credit

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultNoHistoryScore = 60

	MinScore = 0
	MaxScore = 100
)

var (
	onTimeWeight = decimal.NewFromInt(40)
	half         = decimal.RequireFromString("0.5")
	two          = decimal.NewFromInt(2)
)

// Scorer turns a loan history into a 0-100 credit score.
type Scorer struct {
	NoHistoryScore int
}

func NewScorer(noHistoryScore int) Scorer {
	return Scorer{NoHistoryScore: clampScore(noHistoryScore)}
}

// Score evaluates history as one snapshot. A borrower whose current principal
// exceeds the approved limit always scores 0.
func (s Scorer) Score(b Borrower, history []Obligation, today time.Time) int {
	currentPrincipal := decimal.Zero
	for _, o := range currentLoans(history, today) {
		currentPrincipal = currentPrincipal.Add(o.Principal)
	}
	if currentPrincipal.GreaterThan(b.ApprovedLimit) {
		return MinScore
	}

	if len(history) == 0 {
		return s.NoHistoryScore
	}

	total := onTimeScore(history).
		Add(decimal.NewFromInt(int64(loanCountScore(len(history))))).
		Add(decimal.NewFromInt(int64(currentYearScore(history, today)))).
		Add(decimal.NewFromInt(int64(volumeScore(b, history))))

	return clampScore(int(total.Round(0).IntPart()))
}

func onTimeScore(history []Obligation) decimal.Decimal {
	var paid, tenure int64
	for _, o := range history {
		paid += int64(o.EMIsPaidOnTime)
		tenure += int64(o.Tenure)
	}
	if tenure <= 0 {
		return onTimeWeight
	}

	ratio := decimal.NewFromInt(paid).DivRound(decimal.NewFromInt(tenure), workingPlaces)
	if ratio.LessThan(decimal.Zero) {
		ratio = decimal.Zero
	}
	if ratio.GreaterThan(one) {
		ratio = one
	}
	return ratio.Mul(onTimeWeight)
}

func loanCountScore(count int) int {
	switch {
	case count <= 2:
		return 15
	case count <= 5:
		return 10
	default:
		return 5
	}
}

func currentYearScore(history []Obligation, today time.Time) int {
	year := today.Year()
	started := 0
	for _, o := range history {
		if o.StartDate.Year() == year {
			started++
		}
	}
	return max(0, 15-3*started)
}

func volumeScore(b Borrower, history []Obligation) int {
	volume := decimal.Zero
	for _, o := range history {
		volume = volume.Add(o.Principal)
	}

	limit := b.ApprovedLimit
	if limit.LessThanOrEqual(decimal.Zero) {
		limit = one
	}
	ratio := volume.DivRound(limit, workingPlaces)

	switch {
	case ratio.LessThanOrEqual(half):
		return 30
	case ratio.LessThanOrEqual(one):
		return 20
	case ratio.LessThanOrEqual(two):
		return 10
	default:
		return 0
	}
}

func clampScore(score int) int {
	return min(MaxScore, max(MinScore, score))
}
