/*
split.go - Remainder-exact proportional distribution

PURPOSE:
  The primitive every split method and refund path is built on: divide an
  integer cent total across weighted participants so the shares sum to
  the total exactly, whatever the rounding did.

ALGORITHM:
  Every participant but the last receives round(total * weight / sum),
  and the last receives total minus everything already handed out. When
  the weights sum to zero (nobody logged hours, no roles configured) the
  split degrades to floor(total / n) each with the remainder on the last
  participant, so money is never zero-allocated into the void.

SEE ALSO:
  - pools.go: Uses the primitive for pool distribution and refunds
  - rebalance.go: Uses it to ripple a manual override
*/
package tips

import (
	"github.com/shopspring/decimal"

	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// PRIMITIVE
// =============================================================================

// DistributeByRatio splits totalCents across len(weights) participants
// proportionally. The returned shares always sum to totalCents exactly:
// the last participant absorbs the rounding remainder. All-zero weights
// fall back to an even split. An empty weight list returns nil.
func DistributeByRatio(totalCents int64, weights []decimal.Decimal) []int64 {
	n := len(weights)
	if n == 0 {
		return nil
	}

	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w)
	}

	shares := make([]int64, n)
	if totalWeight.IsZero() {
		// No weight signal at all; an even split beats giving everyone zero.
		each := totalCents / int64(n)
		var handed int64
		for i := 0; i < n-1; i++ {
			shares[i] = each
			handed += each
		}
		shares[n-1] = totalCents - handed
		return shares
	}

	total := decimal.NewFromInt(totalCents)
	var handed int64
	for i := 0; i < n-1; i++ {
		share := total.Mul(weights[i]).Div(totalWeight).Round(0).IntPart()
		shares[i] = share
		handed += share
	}
	shares[n-1] = totalCents - handed
	return shares
}

// =============================================================================
// SPLIT METHODS
// =============================================================================

// SplitEven gives every participant weight 1.
func SplitEven(totalCents int64, participants []schedule.EmployeeID) []TipShare {
	weights := make([]decimal.Decimal, len(participants))
	for i := range weights {
		weights[i] = decimal.NewFromInt(1)
	}
	amounts := DistributeByRatio(totalCents, weights)

	shares := make([]TipShare, len(participants))
	for i, id := range participants {
		shares[i] = TipShare{EmployeeID: id, AmountCents: amounts[i]}
	}
	return shares
}

// SplitByHours weights each worker by hours worked.
func SplitByHours(totalCents int64, workers []Worker) []TipShare {
	weights := make([]decimal.Decimal, len(workers))
	for i, w := range workers {
		weights[i] = w.Hours
	}
	amounts := DistributeByRatio(totalCents, weights)

	shares := make([]TipShare, len(workers))
	for i, w := range workers {
		shares[i] = TipShare{EmployeeID: w.EmployeeID, AmountCents: amounts[i], Hours: w.Hours, Role: w.Role}
	}
	return shares
}

// SplitByRole weights each worker by their role's configured weight.
// Unconfigured roles weigh zero; if nothing is configured the primitive's
// even fallback applies.
func SplitByRole(totalCents int64, workers []Worker, roleWeights map[string]decimal.Decimal) []TipShare {
	weights := make([]decimal.Decimal, len(workers))
	for i, w := range workers {
		weights[i] = roleWeights[w.Role]
	}
	amounts := DistributeByRatio(totalCents, weights)

	shares := make([]TipShare, len(workers))
	for i, w := range workers {
		shares[i] = TipShare{EmployeeID: w.EmployeeID, AmountCents: amounts[i], Hours: w.Hours, Role: w.Role}
	}
	return shares
}
