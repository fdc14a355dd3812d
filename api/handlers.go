/*
handlers.go - HTTP API handlers for the scheduling integrity engine

PURPOSE:
  Exposes validation, series mutation, and gratuity allocation via REST.
  Handles HTTP request/response and JSON serialization, delegating all
  logic to the schedule and tips packages.

ENDPOINTS:
  Shifts:
    GET    /api/shifts                 List shifts (employee/date range)
    POST   /api/shifts                 Create shift or recurring series
    POST   /api/shifts/validate        Validate without persisting
    PUT    /api/shifts/{id}?scope=     Scoped update (this/following/all)
    DELETE /api/shifts/{id}?scope=     Scoped delete
    GET    /api/shifts/{id}/series     Series membership preview

  Roster / time off:
    GET    /api/employees              List employees
    POST   /api/employees              Create or update employee
    GET    /api/timeoff?employee_id=   List time-off requests
    POST   /api/timeoff                Create or update request

  Gratuities:
    POST   /api/tips/allocate          Run percentage pool allocation
    POST   /api/tips/rebalance         Manual override with ripple

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (bad pattern, bad scope, malformed body)
  - 404: Shift not found
  - 409: Lock violation (published week), partial series creation
  - 500: Store failures
  Validation conflicts are NOT errors: they come back as a 200 payload
  for the caller to render.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/tips"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Shifts    schedule.ShiftStore
	Roster    schedule.Roster
	TimeOff   schedule.TimeOffSource
	Engine    *schedule.SeriesEngine
	Validator schedule.Validator
}

// Deps bundles the stores a handler needs. Shifts, Roster, and TimeOff
// are commonly the same store value implementing all three interfaces.
type Deps struct {
	Shifts  schedule.ShiftStore
	Roster  schedule.Roster
	TimeOff schedule.TimeOffSource
	Cache   schedule.QueryCache
	Rules   schedule.OvertimeRules
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		Shifts:    deps.Shifts,
		Roster:    deps.Roster,
		TimeOff:   deps.TimeOff,
		Engine:    schedule.NewSeriesEngine(deps.Shifts, deps.Cache),
		Validator: schedule.Validator{Rules: deps.Rules},
	}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts for an employee in an optional date range.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	filter := schedule.ShiftFilter{}
	if emp := r.URL.Query().Get("employee_id"); emp != "" {
		id := schedule.EmployeeID(emp)
		filter.EmployeeID = &id
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'from' timestamp (use RFC3339)", err)
			return
		}
		filter.StartFrom = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'to' timestamp (use RFC3339)", err)
			return
		}
		filter.StartTo = &t
	}

	shifts, err := h.Shifts.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ValidateShift runs conflict and overtime checks without persisting.
func (h *Handler) ValidateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	candidate, err := req.toShift()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recurrence", err)
		return
	}

	result, err := h.validate(r, candidate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to validate shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toValidationDTO(result))
}

// CreateShift validates then persists a shift or recurring series.
// A hard conflict blocks the save; overtime warnings do not.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	shift, err := req.toShift()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recurrence", err)
		return
	}

	result, err := h.validate(r, shift)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to validate shift", err)
		return
	}
	if !result.Valid {
		writeJSON(w, http.StatusConflict, toValidationDTO(result))
		return
	}

	created, err := h.Engine.Create(r.Context(), shift)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := CreateShiftResponse{Shift: toShiftDTO(created.Parent)}
	for _, child := range created.Children {
		resp.OccurrenceIDs = append(resp.OccurrenceIDs, string(child.ID))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// UpdateShift applies a scoped update to a shift or its series.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))
	scope, err := schedule.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scope", err)
		return
	}

	var req UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Engine.UpdateScoped(r.Context(), id, scope, req.toPatch())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationDTO(result, "updated"))
}

// DeleteShift applies a scoped delete to a shift or its series.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))
	scope, err := schedule.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scope", err)
		return
	}

	result, err := h.Engine.DeleteScoped(r.Context(), id, scope)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationDTO(result, "deleted"))
}

// GetSeriesInfo previews series membership for scope selection.
func (h *Handler) GetSeriesInfo(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))
	info, err := h.Engine.Info(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SeriesInfoDTO{TotalCount: info.Total, LockedCount: info.Locked})
}

// validate loads the employee's context and runs the validator.
func (h *Handler) validate(r *http.Request, candidate schedule.Shift) (schedule.ValidationResult, error) {
	ctx := r.Context()

	// Overnight shifts cross the week boundary in both directions: a shift
	// that starts late Saturday can run into Sunday, and a Saturday
	// candidate can run into the next week. Open the window a day before
	// the candidate's week and close it at the end of the week the
	// candidate finishes in; the detector ignores anything non-overlapping.
	from := schedule.StartOfWeek(candidate.StartTime).AddDate(0, 0, -1)
	to := schedule.EndOfWeek(candidate.EndTime)
	existing, err := h.Shifts.Query(ctx, schedule.ShiftFilter{
		EmployeeID: &candidate.EmployeeID,
		StartFrom:  &from,
		StartTo:    &to,
	})
	if err != nil {
		return schedule.ValidationResult{}, err
	}

	timeOff, err := h.TimeOff.ListTimeOff(ctx, candidate.EmployeeID)
	if err != nil {
		return schedule.ValidationResult{}, err
	}

	return h.Validator.Validate(candidate, existing, timeOff), nil
}

func mutationDTO(result schedule.MutationResult, verb string) MutationResultDTO {
	msg := fmt.Sprintf("%d shift(s) %s", result.Affected, verb)
	if result.LockedSkipped > 0 {
		msg = fmt.Sprintf("%s, %d locked shift(s) left unchanged", msg, result.LockedSkipped)
	}
	return MutationResultDTO{
		AffectedCount:      result.Affected,
		LockedSkippedCount: result.LockedSkipped,
		Message:            msg,
	}
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeDTO{
			ID:              string(e.ID),
			Name:            e.Name,
			Role:            e.Role,
			HourlyRateCents: e.HourlyRateCents,
			Compensation:    string(e.Compensation),
			TipEligible:     e.TipEligible,
			Active:          e.Active,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveEmployee creates or updates an employee.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Employee id and name are required", nil)
		return
	}

	compensation := schedule.CompensationType(req.Compensation)
	if req.Compensation == "" {
		compensation = schedule.CompensationHourly
	}
	emp := schedule.Employee{
		ID:              schedule.EmployeeID(req.ID),
		Name:            req.Name,
		Role:            req.Role,
		HourlyRateCents: req.HourlyRateCents,
		Compensation:    compensation,
		TipEligible:     req.TipEligible,
		Active:          req.Active,
	}
	if err := h.Roster.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// TIME OFF HANDLERS
// =============================================================================

// ListTimeOff returns an employee's time-off requests.
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	empID := r.URL.Query().Get("employee_id")
	if empID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	requests, err := h.TimeOff.ListTimeOff(r.Context(), schedule.EmployeeID(empID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list time off", err)
		return
	}

	dtos := make([]TimeOffDTO, len(requests))
	for i, req := range requests {
		dtos[i] = TimeOffDTO{
			ID:         string(req.ID),
			EmployeeID: string(req.EmployeeID),
			StartDate:  req.StartDate.Format("2006-01-02"),
			EndDate:    req.EndDate.Format("2006-01-02"),
			Status:     string(req.Status),
			Reason:     req.Reason,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveTimeOff creates or updates a time-off request.
func (h *Handler) SaveTimeOff(w http.ResponseWriter, r *http.Request) {
	var req TimeOffDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date", nil)
		return
	}

	status := schedule.TimeOffStatus(req.Status)
	if req.Status == "" {
		status = schedule.TimeOffPending
	}
	saved, err := h.TimeOff.SaveTimeOff(r.Context(), schedule.TimeOffRequest{
		ID:         schedule.TimeOffID(req.ID),
		EmployeeID: schedule.EmployeeID(req.EmployeeID),
		StartDate:  start,
		EndDate:    end,
		Status:     status,
		Reason:     req.Reason,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save time off", err)
		return
	}
	req.ID = string(saved.ID)
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// TIP HANDLERS
// =============================================================================

// AllocateTips runs the percentage pool allocation against the roster.
func (h *Handler) AllocateTips(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	roster, err := h.Roster.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load roster", err)
		return
	}

	servers, pools, workers := req.toInputs()
	result := tips.AllocatePools(servers, pools, workers, roster)
	writeJSON(w, http.StatusOK, toAllocationDTO(result))
}

// RebalanceTips applies a manual override to an existing split.
func (h *Handler) RebalanceTips(w http.ResponseWriter, r *http.Request) {
	var req RebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shares := make([]tips.TipShare, len(req.Shares))
	for i, s := range req.Shares {
		shares[i] = tips.TipShare{
			EmployeeID:  schedule.EmployeeID(s.EmployeeID),
			AmountCents: s.AmountCents,
			Role:        s.Role,
		}
	}

	rebalanced, err := tips.ApplyOverride(shares, schedule.EmployeeID(req.EmployeeID), req.NewAmountCents)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to rebalance", err)
		return
	}
	writeJSON(w, http.StatusOK, toTipShareDTOs(rebalanced))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case schedule.IsLockViolation(err):
		writeError(w, http.StatusConflict, "Cannot modify a locked shift: the schedule has been published", err)
	case errors.Is(err, schedule.ErrSeriesPartiallyCreated):
		writeError(w, http.StatusConflict, "Series partially created", err)
	case schedule.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Shift not found", err)
	case schedule.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Operation failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"error": message}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
