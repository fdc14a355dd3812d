package tips

import (
	"strings"
	"testing"

	"github.com/warp/schedule-engine/schedule"
)

func TestParsePool_FromPreset(t *testing.T) {
	// GIVEN: A preset support-staff pool definition
	jsonStr := SupportStaffPoolJSON("support", 10, "bus-1", "bus-2")

	pool, err := ParsePool(jsonStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool.ID != "support" {
		t.Errorf("expected id support, got %s", pool.ID)
	}
	if !pool.ContributionPercentage.Equal(dec(10)) {
		t.Errorf("expected 10%%, got %s", pool.ContributionPercentage)
	}
	if pool.ShareMethod != ShareHours {
		t.Errorf("expected hours method, got %s", pool.ShareMethod)
	}
	if len(pool.EligibleEmployeeIDs) != 2 || pool.EligibleEmployeeIDs[0] != "bus-1" {
		t.Errorf("unexpected eligibility %v", pool.EligibleEmployeeIDs)
	}
}

func TestParsePool_RoleWeights(t *testing.T) {
	pool, err := ParsePool(BarPoolJSON("bar", 5, 3, 1, "bar-1", "bb-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool.ShareMethod != ShareRole {
		t.Errorf("expected role method, got %s", pool.ShareMethod)
	}
	if !pool.RoleWeights["bartender"].Equal(dec(3)) || !pool.RoleWeights["barback"].Equal(dec(1)) {
		t.Errorf("unexpected role weights %v", pool.RoleWeights)
	}
}

func TestParsePool_DefaultsToEven(t *testing.T) {
	pool, err := ParsePool(`{"id": "p1", "contribution_percentage": 3, "eligible_employee_ids": ["a"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.ShareMethod != ShareEven {
		t.Errorf("expected even default, got %s", pool.ShareMethod)
	}
}

func TestParsePool_Validation(t *testing.T) {
	cases := []struct {
		name    string
		json    string
		wantErr string
	}{
		{"missing id", `{"contribution_percentage": 5}`, "missing an id"},
		{"percentage too high", `{"id": "p", "contribution_percentage": 150}`, "out of range"},
		{"negative percentage", `{"id": "p", "contribution_percentage": -1}`, "out of range"},
		{"unknown method", `{"id": "p", "contribution_percentage": 5, "share_method": "seniority"}`, "unknown share method"},
		{"role without weights", `{"id": "p", "contribution_percentage": 5, "share_method": "role"}`, "requires role_weights"},
		{"malformed", `{not json`, "failed to parse"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePool(tc.json)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestParsePools_Array(t *testing.T) {
	jsonStr := `[
		{"id": "a", "contribution_percentage": 5, "eligible_employee_ids": ["x"]},
		{"id": "b", "contribution_percentage": 3, "eligible_employee_ids": ["y"]}
	]`

	pools, err := ParsePools(jsonStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pools) != 2 || pools[1].ID != "b" {
		t.Errorf("unexpected pools %v", pools)
	}
}

func TestPoolToJSON_RoundTrip(t *testing.T) {
	original, err := ParsePool(BarPoolJSON("bar", 5, 3, 1, "bar-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pj := PoolToJSON(original)
	back, err := PoolFromJSON(pj)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if back.ID != original.ID || back.ShareMethod != original.ShareMethod {
		t.Errorf("round trip changed the pool: %+v vs %+v", back, original)
	}
	if back.EligibleEmployeeIDs[0] != schedule.EmployeeID("bar-1") {
		t.Errorf("unexpected eligibility %v", back.EligibleEmployeeIDs)
	}
}

func TestParsedPool_FeedsAllocation(t *testing.T) {
	// A preset pool parsed from JSON drives a real allocation.
	pool, err := ParsePool(KitchenPoolJSON("kitchen", 4, "cook-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	servers := []ServerEarning{{EmployeeID: "srv-1", EarnedCents: 10000}}
	workers := []Worker{{EmployeeID: "cook-1", Hours: dec(8), Role: "cook"}}
	roster := []schedule.Employee{rosterMember("srv-1"), rosterMember("cook-1")}

	result := AllocatePools(servers, []ContributionPool{pool}, workers, roster)
	if result.PoolResults[0].TotalCents != 400 {
		t.Errorf("expected 400 pooled, got %d", result.PoolResults[0].TotalCents)
	}
}
