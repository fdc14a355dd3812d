/*
pools.go - Percentage-based multi-pool allocation

PURPOSE:
  For each (server, pool) pair, the server contributes
  round(earned * percentage / 100) cents into the pool. Each pool is then
  either distributed to its eligible active workers by the configured
  split method, or, when no eligible worker actually worked the period,
  refunded to the contributing servers proportional to what they paid in.

ELIGIBILITY:
  A pool recipient must have worked during the period (appear in the
  worked set), be in the pool's eligible list, and be tip-eligible on the
  roster: inactive, salaried, and explicitly tip-ineligible employees
  never receive pool money.

AUDIT:
  The result carries every contribution, share, and refund so a manager
  can trace where each cent went.

SEE ALSO:
  - split.go: The remainder-exact primitive used throughout
*/
package tips

import (
	"github.com/shopspring/decimal"

	"github.com/warp/schedule-engine/schedule"
)

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// ALLOCATION
// =============================================================================

// AllocatePools runs the full percentage allocation: contributions in,
// pool distribution or refund out, per-server retained totals. Never
// returns an error; every edge case degrades to a defined fallback.
func AllocatePools(servers []ServerEarning, pools []ContributionPool, workers []Worker, roster []schedule.Employee) PercentageAllocationResult {
	eligible := eligibleWorkers(workers, roster)

	contributed := make(map[schedule.EmployeeID]int64)
	refunded := make(map[schedule.EmployeeID]int64)

	result := PercentageAllocationResult{}

	for _, pool := range pools {
		poolResult := PoolResult{PoolID: pool.ID}

		// Contributions, one per server with a non-zero cut.
		for _, server := range servers {
			cut := decimal.NewFromInt(server.EarnedCents).
				Mul(pool.ContributionPercentage).
				Div(oneHundred).
				Round(0).
				IntPart()
			if cut == 0 {
				continue
			}
			poolResult.Contributions = append(poolResult.Contributions, Contribution{
				EmployeeID:  server.EmployeeID,
				PoolID:      pool.ID,
				AmountCents: cut,
			})
			poolResult.TotalCents += cut
			contributed[server.EmployeeID] += cut
		}

		recipients := poolRecipients(pool, eligible)

		if len(recipients) == 0 {
			// Empty pool: hand every cent back, proportional to what each
			// server paid in. Silently dropping the pool total is worse
			// than any split.
			poolResult.Refunded = true
			if poolResult.TotalCents > 0 {
				weights := make([]decimal.Decimal, len(poolResult.Contributions))
				for i, c := range poolResult.Contributions {
					weights[i] = decimal.NewFromInt(c.AmountCents)
				}
				amounts := DistributeByRatio(poolResult.TotalCents, weights)
				for i, c := range poolResult.Contributions {
					poolResult.Refunds = append(poolResult.Refunds, TipShare{
						EmployeeID:  c.EmployeeID,
						AmountCents: amounts[i],
					})
					refunded[c.EmployeeID] += amounts[i]
				}
			}
			result.PoolResults = append(result.PoolResults, poolResult)
			continue
		}

		switch pool.ShareMethod {
		case ShareHours:
			poolResult.Shares = SplitByHours(poolResult.TotalCents, recipients)
		case ShareRole:
			poolResult.Shares = SplitByRole(poolResult.TotalCents, recipients, pool.RoleWeights)
		default:
			ids := make([]schedule.EmployeeID, len(recipients))
			for i, w := range recipients {
				ids[i] = w.EmployeeID
			}
			poolResult.Shares = SplitEven(poolResult.TotalCents, ids)
		}

		result.SplitItems = append(result.SplitItems, poolResult.Shares...)
		result.PoolResults = append(result.PoolResults, poolResult)
	}

	for _, server := range servers {
		result.ServerResults = append(result.ServerResults, ServerResult{
			EmployeeID:       server.EmployeeID,
			EarnedCents:      server.EarnedCents,
			ContributedCents: contributed[server.EmployeeID],
			RefundedCents:    refunded[server.EmployeeID],
			RetainedCents:    server.EarnedCents - contributed[server.EmployeeID] + refunded[server.EmployeeID],
		})
	}

	return result
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

// eligibleWorkers filters the worked set down to roster members who may
// receive gratuities. A worker with no roster record is excluded.
func eligibleWorkers(workers []Worker, roster []schedule.Employee) []Worker {
	byID := make(map[schedule.EmployeeID]schedule.Employee, len(roster))
	for _, e := range roster {
		byID[e.ID] = e
	}

	var out []Worker
	for _, w := range workers {
		e, ok := byID[w.EmployeeID]
		if !ok || !e.Active || !e.TipEligible || e.Compensation == schedule.CompensationSalaried {
			continue
		}
		out = append(out, w)
	}
	return out
}

// poolRecipients intersects the eligible worked set with the pool's
// configured eligible list.
func poolRecipients(pool ContributionPool, eligible []Worker) []Worker {
	inPool := make(map[schedule.EmployeeID]bool, len(pool.EligibleEmployeeIDs))
	for _, id := range pool.EligibleEmployeeIDs {
		inPool[id] = true
	}

	var out []Worker
	for _, w := range eligible {
		if inPool[w.EmployeeID] {
			out = append(out, w)
		}
	}
	return out
}
