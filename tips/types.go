/*
Package tips provides the gratuity allocation engine: weighted,
remainder-exact proportional distribution of pooled tips among eligible
workers, percentage-based multi-pool contributions with refund-on-empty
semantics, and manual-override rebalancing.

PURPOSE:
  Runs downstream of a payroll/reporting period closing. Consumes server
  earnings, the employee roster, worked hours, and pool configuration;
  produces per-employee integer cent amounts. Pure computation: results
  are recomputed per invocation and never persisted by this engine.

MONEY INVARIANT:
  Every distribution sums exactly to its input total, in integer cents.
  Per-share rounding is corrected by assigning the final participant the
  arithmetic remainder. Degenerate inputs (all-zero weights, empty pools)
  degrade to well-defined fallbacks instead of dropping money.

KEY CONCEPTS IN THIS FILE (types.go):
  - TipShare: One employee's cut, with hours/role provenance
  - ContributionPool: A configured gratuity-sharing bucket
  - Worker: Someone who actually worked the period (hours + role)
  - PercentageAllocationResult: Full audit trail of every cent

DESIGN PRINCIPLES:
  1. Exactness: decimal arithmetic for ratios, int64 cents at the edges
  2. Auditability: contributed/distributed/refunded breakdown per pool
  3. Degradation over exception: allocation never raises for edge cases

SEE ALSO:
  - split.go: Remainder-exact primitive and split methods
  - pools.go: Percentage multi-pool allocation
  - rebalance.go: Manual override with proportional ripple
*/
package tips

import (
	"github.com/shopspring/decimal"

	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// SHARES AND PARTICIPANTS
// =============================================================================

// TipShare is one employee's cut of a distribution. Hours and Role carry
// the provenance of the split method that produced it.
type TipShare struct {
	EmployeeID  schedule.EmployeeID
	AmountCents int64
	Hours       decimal.Decimal
	Role        string
}

// Worker is an employee who actually worked during the period.
type Worker struct {
	EmployeeID schedule.EmployeeID
	Hours      decimal.Decimal
	Role       string
}

// ServerEarning is a tipped server's gross for the period.
type ServerEarning struct {
	EmployeeID  schedule.EmployeeID
	EarnedCents int64
}

// =============================================================================
// POOL CONFIGURATION
// =============================================================================

type ShareMethod string

const (
	ShareEven  ShareMethod = "even"
	ShareHours ShareMethod = "hours"
	ShareRole  ShareMethod = "role"
)

// ContributionPool is a configured gratuity-sharing bucket: servers
// contribute a percentage of earnings, eligible support workers receive
// the pool by the configured split method.
type ContributionPool struct {
	ID                     string
	ContributionPercentage decimal.Decimal // 0-100
	ShareMethod            ShareMethod
	EligibleEmployeeIDs    []schedule.EmployeeID
	RoleWeights            map[string]decimal.Decimal
}

// =============================================================================
// ALLOCATION RESULTS
// =============================================================================

// Contribution is one server's payment into one pool.
type Contribution struct {
	EmployeeID  schedule.EmployeeID
	PoolID      string
	AmountCents int64
}

// ServerResult is a contributing server's final position.
type ServerResult struct {
	EmployeeID       schedule.EmployeeID
	EarnedCents      int64
	ContributedCents int64
	RefundedCents    int64
	RetainedCents    int64
}

// PoolResult is the full audit trail for one pool.
type PoolResult struct {
	PoolID        string
	TotalCents    int64
	Refunded      bool
	Contributions []Contribution
	Shares        []TipShare // recipients, when distributed
	Refunds       []TipShare // contributors, when refunded
}

// PercentageAllocationResult is the caller-facing allocation contract.
type PercentageAllocationResult struct {
	ServerResults []ServerResult
	PoolResults   []PoolResult

	// SplitItems flattens every pool share handed to a recipient.
	SplitItems []TipShare
}

// CombinedTotals merges retained-as-contributor and received-as-recipient
// into one additive map keyed by employee.
func (r PercentageAllocationResult) CombinedTotals() map[schedule.EmployeeID]int64 {
	combined := make(map[schedule.EmployeeID]int64)
	for _, sr := range r.ServerResults {
		combined[sr.EmployeeID] += sr.RetainedCents
	}
	for _, item := range r.SplitItems {
		combined[item.EmployeeID] += item.AmountCents
	}
	return combined
}
