package tips

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/schedule-engine/schedule"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// =============================================================================
// DISTRIBUTE BY RATIO
// =============================================================================

func TestDistributeByRatio_SharesSumToTotal(t *testing.T) {
	cases := []struct {
		name    string
		total   int64
		weights []decimal.Decimal
		want    []int64
	}{
		{"equal thirds", 100, []decimal.Decimal{dec(1), dec(1), dec(1)}, []int64{33, 33, 34}},
		{"two to one", 300, []decimal.Decimal{dec(2), dec(1)}, []int64{200, 100}},
		{"awkward fractions", 1001, []decimal.Decimal{dec(1), dec(1), dec(1)}, []int64{334, 334, 333}},
		{"single participant", 777, []decimal.Decimal{dec(5)}, []int64{777}},
		{"zero total", 0, []decimal.Decimal{dec(1), dec(2)}, []int64{0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistributeByRatio(tc.total, tc.weights)

			var sum int64
			for _, s := range got {
				sum += s
			}
			if sum != tc.total {
				t.Errorf("shares sum to %d, want %d", sum, tc.total)
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("share %d: got %d, want %d", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestDistributeByRatio_AllZeroWeightsFallsBackToEven(t *testing.T) {
	// GIVEN: Nobody carries any weight (no hours logged)
	got := DistributeByRatio(1000, []decimal.Decimal{decimal.Zero, decimal.Zero})

	// THEN: An even split rather than zero-allocating the total
	if got[0] != 500 || got[1] != 500 {
		t.Errorf("expected 500/500, got %v", got)
	}
}

func TestDistributeByRatio_AllZeroWeightsRemainderOnLast(t *testing.T) {
	got := DistributeByRatio(1000, []decimal.Decimal{decimal.Zero, decimal.Zero, decimal.Zero})

	if got[0] != 333 || got[1] != 333 || got[2] != 334 {
		t.Errorf("expected 333/333/334, got %v", got)
	}
}

func TestDistributeByRatio_EmptyWeights(t *testing.T) {
	if got := DistributeByRatio(1000, nil); got != nil {
		t.Errorf("expected nil for no participants, got %v", got)
	}
}

func TestDistributeByRatio_FractionalWeights(t *testing.T) {
	// Hours like 7.5 vs 2.5 must split 3:1.
	weights := []decimal.Decimal{decimal.NewFromFloat(7.5), decimal.NewFromFloat(2.5)}
	got := DistributeByRatio(1000, weights)

	if got[0] != 750 || got[1] != 250 {
		t.Errorf("expected 750/250, got %v", got)
	}
}

// =============================================================================
// SPLIT METHODS
// =============================================================================

func TestSplitEven(t *testing.T) {
	shares := SplitEven(100, []schedule.EmployeeID{"a", "b", "c"})

	var sum int64
	for _, s := range shares {
		sum += s.AmountCents
	}
	if sum != 100 {
		t.Errorf("shares sum to %d, want 100", sum)
	}
	if shares[0].AmountCents != 33 || shares[2].AmountCents != 34 {
		t.Errorf("unexpected split %v", shares)
	}
}

func TestSplitByHours(t *testing.T) {
	workers := []Worker{
		{EmployeeID: "a", Hours: dec(6), Role: "server"},
		{EmployeeID: "b", Hours: dec(2), Role: "busser"},
	}

	shares := SplitByHours(800, workers)

	if shares[0].AmountCents != 600 || shares[1].AmountCents != 200 {
		t.Errorf("expected 600/200, got %v", shares)
	}
	if shares[0].Role != "server" || !shares[0].Hours.Equal(dec(6)) {
		t.Errorf("share must carry worker hours and role, got %+v", shares[0])
	}
}

func TestSplitByRole(t *testing.T) {
	workers := []Worker{
		{EmployeeID: "a", Role: "bartender"},
		{EmployeeID: "b", Role: "barback"},
	}
	weights := map[string]decimal.Decimal{
		"bartender": dec(3),
		"barback":   dec(1),
	}

	shares := SplitByRole(1000, workers, weights)

	if shares[0].AmountCents != 750 || shares[1].AmountCents != 250 {
		t.Errorf("expected 750/250, got %v", shares)
	}
}

func TestSplitByRole_UnconfiguredRolesFallBackToEven(t *testing.T) {
	// GIVEN: Role weights that cover none of the workers
	workers := []Worker{
		{EmployeeID: "a", Role: "host"},
		{EmployeeID: "b", Role: "runner"},
	}

	shares := SplitByRole(1000, workers, map[string]decimal.Decimal{"bartender": dec(3)})

	if shares[0].AmountCents != 500 || shares[1].AmountCents != 500 {
		t.Errorf("expected the even fallback, got %v", shares)
	}
}
