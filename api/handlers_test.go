package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/schedule/store"
)

// =============================================================================
// TEST SERVER
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	h := NewHandler(Deps{
		Shifts:  mem,
		Roster:  mem,
		TimeOff: mem,
		Rules: schedule.OvertimeRules{
			Enabled:                true,
			DailyThresholdMinutes:  480,
			WeeklyThresholdMinutes: 2400,
		},
	})
	srv := httptest.NewServer(NewRouter(h, RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func shiftBody(day, startHour, endHour int) ShiftRequest {
	return ShiftRequest{
		EmployeeID: "emp-1",
		StartTime:  time.Date(2025, time.March, day, startHour, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, time.March, day, endHour, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// SHIFT LIFECYCLE
// =============================================================================

func TestCreateShift_Single(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", shiftBody(3, 9, 17))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[CreateShiftResponse](t, resp)
	assert.NotEmpty(t, created.Shift.ID)
	assert.Empty(t, created.OccurrenceIDs)
	assert.Equal(t, "scheduled", created.Shift.Status)
}

func TestCreateShift_RecurringSeries(t *testing.T) {
	srv, _ := newTestServer(t)

	body := shiftBody(3, 9, 13)
	body.Recurrence = &RecurrenceDTO{Frequency: "weekly", Count: 4}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[CreateShiftResponse](t, resp)
	assert.True(t, created.Shift.IsRecurring)
	assert.Len(t, created.OccurrenceIDs, 3)
}

func TestCreateShift_ConflictReturns409WithValidation(t *testing.T) {
	// GIVEN: An existing shift
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", shiftBody(3, 9, 17))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// WHEN: Creating an overlapping one
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/shifts", shiftBody(3, 12, 20))

	// THEN: 409 with the validation payload, nothing persisted
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	result := decode[ValidationResultDTO](t, resp)
	assert.False(t, result.Valid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "overlapping_shift", result.Conflicts[0].Type)
}

func TestCreateShift_OvernightOverlapAcrossWeekBoundary(t *testing.T) {
	// GIVEN: An overnight shift starting Saturday and running into Sunday,
	// the first day of the next week
	srv, _ := newTestServer(t)
	overnight := ShiftRequest{
		EmployeeID: "emp-1",
		StartTime:  time.Date(2025, time.March, 8, 23, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, time.March, 9, 2, 0, 0, 0, time.UTC),
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", overnight)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// WHEN: Creating a Sunday shift inside the overnight tail
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/shifts", ShiftRequest{
		EmployeeID: "emp-1",
		StartTime:  time.Date(2025, time.March, 9, 1, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, time.March, 9, 5, 0, 0, 0, time.UTC),
	})

	// THEN: The overlap is caught even though the shifts sit in different weeks
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	result := decode[ValidationResultDTO](t, resp)
	assert.False(t, result.Valid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "overlapping_shift", result.Conflicts[0].Type)
}

func TestCreateShift_UntilBeforeStartRejected(t *testing.T) {
	srv, mem := newTestServer(t)

	body := shiftBody(9, 9, 17)
	body.Recurrence = &RecurrenceDTO{Frequency: "weekly", Until: "2025-03-02"}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", body)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	n, err := mem.Count(context.Background(), schedule.ShiftFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestValidateShift_DoesNotPersist(t *testing.T) {
	srv, mem := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts/validate", shiftBody(3, 9, 17))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[ValidationResultDTO](t, resp)
	assert.True(t, result.Valid)

	n, err := mem.Count(context.Background(), schedule.ShiftFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestValidateShift_OvertimeWarningIsAdvisory(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts/validate", shiftBody(3, 6, 18))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[ValidationResultDTO](t, resp)
	assert.True(t, result.Valid)
	require.NotEmpty(t, result.OvertimeWarnings)
	assert.Equal(t, "daily", result.OvertimeWarnings[0].Period)
}

func TestListShifts_FiltersByEmployeeAndRange(t *testing.T) {
	srv, _ := newTestServer(t)

	for day := 3; day <= 5; day++ {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", shiftBody(day, 9, 17))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	url := fmt.Sprintf("%s/api/shifts?employee_id=emp-1&from=%s", srv.URL,
		time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC).Format(time.RFC3339))
	resp := doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	shifts := decode[[]ShiftDTO](t, resp)
	assert.Len(t, shifts, 2)
}

// =============================================================================
// SCOPED MUTATION
// =============================================================================

func createSeries(t *testing.T, srv *httptest.Server) CreateShiftResponse {
	t.Helper()
	body := shiftBody(3, 9, 13)
	body.Recurrence = &RecurrenceDTO{Frequency: "daily", Count: 3}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/shifts", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[CreateShiftResponse](t, resp)
}

func TestUpdateShift_FollowingScope(t *testing.T) {
	srv, _ := newTestServer(t)
	series := createSeries(t, srv)

	notes := "inventory day"
	resp := doJSON(t, http.MethodPut,
		srv.URL+"/api/shifts/"+series.OccurrenceIDs[0]+"?scope=following",
		UpdateShiftRequest{Notes: &notes})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[MutationResultDTO](t, resp)
	assert.Equal(t, 2, result.AffectedCount)
	assert.Zero(t, result.LockedSkippedCount)
}

func TestUpdateShift_InvalidScope(t *testing.T) {
	srv, _ := newTestServer(t)
	series := createSeries(t, srv)

	notes := "x"
	resp := doJSON(t, http.MethodPut,
		srv.URL+"/api/shifts/"+series.Shift.ID+"?scope=everything",
		UpdateShiftRequest{Notes: &notes})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateShift_LockedReturns409(t *testing.T) {
	// GIVEN: A published shift
	srv, mem := newTestServer(t)
	series := createSeries(t, srv)

	id := schedule.ShiftID(series.Shift.ID)
	locked, err := mem.Get(context.Background(), id)
	require.NoError(t, err)
	locked.Locked = true
	_, err = mem.Delete(context.Background(), schedule.ShiftFilter{ID: &id})
	require.NoError(t, err)
	_, err = mem.Insert(context.Background(), locked)
	require.NoError(t, err)

	notes := "x"
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/shifts/"+series.Shift.ID,
		UpdateShiftRequest{Notes: &notes})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteShift_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/shifts/nope", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSeriesInfo(t *testing.T) {
	srv, _ := newTestServer(t)
	series := createSeries(t, srv)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/shifts/"+series.Shift.ID+"/series", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	info := decode[SeriesInfoDTO](t, resp)
	assert.Equal(t, 3, info.TotalCount)
	assert.Zero(t, info.LockedCount)
}

// =============================================================================
// ROSTER AND TIME OFF
// =============================================================================

func TestSaveEmployee_ThenTimeOffConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees", EmployeeDTO{
		ID: "emp-1", Name: "Dana", Compensation: "hourly", TipEligible: true, Active: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/timeoff", TimeOffDTO{
		EmployeeID: "emp-1",
		StartDate:  "2025-03-03",
		EndDate:    "2025-03-03",
		Status:     "approved",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// A shift on the approved day comes back as a time-off conflict.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/shifts/validate", shiftBody(3, 9, 17))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[ValidationResultDTO](t, resp)
	assert.False(t, result.Valid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "time_off_conflict", result.Conflicts[0].Type)
}

func TestSaveTimeOff_RejectsInvertedDates(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/timeoff", TimeOffDTO{
		EmployeeID: "emp-1",
		StartDate:  "2025-03-10",
		EndDate:    "2025-03-08",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// TIPS
// =============================================================================

func TestAllocateTips_EndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, e := range []EmployeeDTO{
		{ID: "srv-1", Name: "Sam", Compensation: "hourly", TipEligible: true, Active: true},
		{ID: "bus-1", Name: "Bo", Compensation: "hourly", TipEligible: true, Active: true},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/employees", e)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tips/allocate", AllocateRequest{
		Servers: []ServerEarningDTO{{EmployeeID: "srv-1", EarnedCents: 10000}},
		Pools: []PoolDTO{{
			ID:                     "support",
			ContributionPercentage: 10,
			ShareMethod:            "even",
			EligibleEmployeeIDs:    []string{"bus-1"},
		}},
		Workers: []WorkerDTO{{EmployeeID: "bus-1", Hours: 8}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decode[AllocationResultDTO](t, resp)
	require.Len(t, result.PoolResults, 1)
	assert.Equal(t, int64(1000), result.PoolResults[0].TotalCents)
	assert.False(t, result.PoolResults[0].Refunded)
	assert.Equal(t, int64(9000), result.Combined["srv-1"])
	assert.Equal(t, int64(1000), result.Combined["bus-1"])
}

func TestRebalanceTips(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tips/rebalance", RebalanceRequest{
		Shares: []TipShareDTO{
			{EmployeeID: "a", AmountCents: 600},
			{EmployeeID: "b", AmountCents: 400},
		},
		EmployeeID:     "a",
		NewAmountCents: 200,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	shares := decode[[]TipShareDTO](t, resp)
	require.Len(t, shares, 2)
	assert.Equal(t, int64(200), shares[0].AmountCents)
	assert.Equal(t, int64(800), shares[1].AmountCents)
}

func TestRebalanceTips_UnknownParticipant(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tips/rebalance", RebalanceRequest{
		Shares:         []TipShareDTO{{EmployeeID: "a", AmountCents: 600}},
		EmployeeID:     "nobody",
		NewAmountCents: 100,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
