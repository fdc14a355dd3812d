/*
factory.go - JSON to Go pool configuration conversion

PURPOSE:
  Converts JSON pool definitions into ContributionPool values. This
  enables pool configuration without code changes - a manager can define
  pools in JSON, stored in a database or edited through an admin UI, and
  the factory creates the proper Go structs.

WHY JSON?
  - Non-developers can modify pool percentages and eligibility
  - Easy integration with admin UI
  - Version control for pool definitions
  - Database storage of pool configs

JSON SCHEMA:
  {
    "id": "support-staff",
    "contribution_percentage": 10,
    "share_method": "hours",
    "eligible_employee_ids": ["bus-1", "bus-2"],
    "role_weights": {"bartender": 3, "barback": 1}
  }

USAGE:
  pool, err := tips.ParsePool(jsonStr)

  // From a preset (recommended)
  jsonStr := tips.SupportStaffPoolJSON("support", 10, "bus-1", "bus-2")
  pool, err := tips.ParsePool(jsonStr)

  result := tips.AllocatePools(servers, []tips.ContributionPool{pool}, workers, roster)

SEE ALSO:
  - types.go: ContributionPool definition
  - pools.go: The allocation that consumes parsed pools
*/
package tips

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PoolJSON is the JSON representation of a contribution pool.
type PoolJSON struct {
	ID                     string             `json:"id"`
	ContributionPercentage float64            `json:"contribution_percentage"`
	ShareMethod            string             `json:"share_method,omitempty"`
	EligibleEmployeeIDs    []string           `json:"eligible_employee_ids"`
	RoleWeights            map[string]float64 `json:"role_weights,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParsePool parses a JSON string into a ContributionPool.
func ParsePool(jsonStr string) (ContributionPool, error) {
	var pj PoolJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return ContributionPool{}, fmt.Errorf("failed to parse pool JSON: %w", err)
	}
	return PoolFromJSON(pj)
}

// ParsePools parses a JSON array of pool definitions.
func ParsePools(jsonStr string) ([]ContributionPool, error) {
	var pjs []PoolJSON
	if err := json.Unmarshal([]byte(jsonStr), &pjs); err != nil {
		return nil, fmt.Errorf("failed to parse pool JSON: %w", err)
	}

	pools := make([]ContributionPool, 0, len(pjs))
	for _, pj := range pjs {
		pool, err := PoolFromJSON(pj)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

// PoolFromJSON converts PoolJSON to a ContributionPool, validating the
// percentage range and share method.
func PoolFromJSON(pj PoolJSON) (ContributionPool, error) {
	if pj.ID == "" {
		return ContributionPool{}, fmt.Errorf("pool is missing an id")
	}
	if pj.ContributionPercentage < 0 || pj.ContributionPercentage > 100 {
		return ContributionPool{}, fmt.Errorf("pool %s: contribution percentage %v out of range [0, 100]", pj.ID, pj.ContributionPercentage)
	}

	method := ShareMethod(pj.ShareMethod)
	switch method {
	case ShareEven, ShareHours, ShareRole:
	case "":
		method = ShareEven
	default:
		return ContributionPool{}, fmt.Errorf("pool %s: unknown share method %q", pj.ID, pj.ShareMethod)
	}
	if method == ShareRole && len(pj.RoleWeights) == 0 {
		return ContributionPool{}, fmt.Errorf("pool %s: role share method requires role_weights", pj.ID)
	}

	pool := ContributionPool{
		ID:                     pj.ID,
		ContributionPercentage: decimal.NewFromFloat(pj.ContributionPercentage),
		ShareMethod:            method,
	}
	for _, id := range pj.EligibleEmployeeIDs {
		pool.EligibleEmployeeIDs = append(pool.EligibleEmployeeIDs, schedule.EmployeeID(id))
	}
	if len(pj.RoleWeights) > 0 {
		pool.RoleWeights = make(map[string]decimal.Decimal, len(pj.RoleWeights))
		for role, w := range pj.RoleWeights {
			pool.RoleWeights[role] = decimal.NewFromFloat(w)
		}
	}
	return pool, nil
}

// PoolToJSON converts a ContributionPool back to its JSON representation.
func PoolToJSON(pool ContributionPool) PoolJSON {
	pj := PoolJSON{
		ID:          pool.ID,
		ShareMethod: string(pool.ShareMethod),
	}
	pj.ContributionPercentage, _ = pool.ContributionPercentage.Float64()
	for _, id := range pool.EligibleEmployeeIDs {
		pj.EligibleEmployeeIDs = append(pj.EligibleEmployeeIDs, string(id))
	}
	if len(pool.RoleWeights) > 0 {
		pj.RoleWeights = make(map[string]float64, len(pool.RoleWeights))
		for role, w := range pool.RoleWeights {
			pj.RoleWeights[role], _ = w.Float64()
		}
	}
	return pj
}

// =============================================================================
// PRESET POOLS
// =============================================================================

// SupportStaffPoolJSON returns JSON for a standard support-staff pool:
// servers tip out a percentage, split by hours worked.
func SupportStaffPoolJSON(id string, percentage float64, eligible ...string) string {
	pj := PoolJSON{
		ID:                     id,
		ContributionPercentage: percentage,
		ShareMethod:            string(ShareHours),
		EligibleEmployeeIDs:    eligible,
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// BarPoolJSON returns JSON for a bar pool weighted by role, bartenders
// over barbacks at the given ratio.
func BarPoolJSON(id string, percentage, bartenderWeight, barbackWeight float64, eligible ...string) string {
	pj := PoolJSON{
		ID:                     id,
		ContributionPercentage: percentage,
		ShareMethod:            string(ShareRole),
		EligibleEmployeeIDs:    eligible,
		RoleWeights: map[string]float64{
			"bartender": bartenderWeight,
			"barback":   barbackWeight,
		},
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// KitchenPoolJSON returns JSON for an even-split kitchen pool.
func KitchenPoolJSON(id string, percentage float64, eligible ...string) string {
	pj := PoolJSON{
		ID:                     id,
		ContributionPercentage: percentage,
		ShareMethod:            string(ShareEven),
		EligibleEmployeeIDs:    eligible,
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}
