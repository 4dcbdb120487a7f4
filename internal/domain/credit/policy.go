package credit

import "github.com/shopspring/decimal"

var (
	midSlabFloorRate = decimal.NewFromInt(12)
	lowSlabFloorRate = decimal.NewFromInt(16)
)

// ApplyPolicy maps a score to whether lending is allowed and the minimum rate
// that applies. Below the allowed band the requested rate is returned as is.
func ApplyPolicy(score int, requestedRate decimal.Decimal) (allowed bool, correctedRate decimal.Decimal) {
	switch {
	case score > 50:
		return true, requestedRate
	case score > 30:
		return true, decimal.Max(requestedRate, midSlabFloorRate)
	case score > 10:
		return true, decimal.Max(requestedRate, lowSlabFloorRate)
	default:
		return false, requestedRate
	}
}
