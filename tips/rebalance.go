/*
rebalance.go - Manual override with proportional ripple

PURPOSE:
  A manager can pin one participant's share to a hand-picked value; the
  remainder is redistributed among the other participants proportional
  to their CURRENT shares, not their original weights, so a human
  correction ripples through without manual renormalization. The sum of
  all shares always equals the original total.
*/
package tips

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/schedule-engine/schedule"
)

// ApplyOverride pins the target's share to newAmountCents (clamped to
// [0, total]) and redistributes the rest among the other participants
// proportional to their current shares, last participant absorbing the
// rounding remainder. Returns a new slice; the input is not mutated.
func ApplyOverride(shares []TipShare, target schedule.EmployeeID, newAmountCents int64) ([]TipShare, error) {
	var total int64
	targetIdx := -1
	for i, s := range shares {
		total += s.AmountCents
		if s.EmployeeID == target {
			targetIdx = i
		}
	}
	if targetIdx == -1 {
		return nil, fmt.Errorf("employee %s is not a participant in this split", target)
	}

	pinned := clamp(newAmountCents, 0, total)

	out := make([]TipShare, len(shares))
	copy(out, shares)

	if len(shares) == 1 {
		// Nobody to absorb the difference; the sole participant keeps the total.
		out[0].AmountCents = total
		return out, nil
	}

	others := make([]int, 0, len(shares)-1)
	weights := make([]decimal.Decimal, 0, len(shares)-1)
	for i, s := range shares {
		if i == targetIdx {
			continue
		}
		others = append(others, i)
		weights = append(weights, decimal.NewFromInt(s.AmountCents))
	}

	amounts := DistributeByRatio(total-pinned, weights)
	out[targetIdx].AmountCents = pinned
	for j, idx := range others {
		out[idx].AmountCents = amounts[j]
	}
	return out, nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
