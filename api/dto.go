/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the HTTP boundary. Timestamps travel as RFC3339,
  money as integer cents, percentages and hours as plain numbers
  converted to decimals at the boundary. Core packages never see these
  types.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/tips"
)

// =============================================================================
// SHIFTS
// =============================================================================

type RecurrenceDTO struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval,omitempty"`
	Count     int    `json:"count,omitempty"`
	Until     string `json:"until,omitempty"` // YYYY-MM-DD
}

func (d *RecurrenceDTO) toPattern() (*schedule.RecurrencePattern, error) {
	if d == nil {
		return nil, nil
	}
	pattern := &schedule.RecurrencePattern{
		Frequency: schedule.Frequency(d.Frequency),
		Interval:  d.Interval,
		Count:     d.Count,
	}
	if d.Until != "" {
		until, err := time.Parse("2006-01-02", d.Until)
		if err != nil {
			return nil, err
		}
		pattern.Until = &until
	}
	return pattern, nil
}

type ShiftRequest struct {
	EmployeeID   string         `json:"employee_id"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	BreakMinutes int            `json:"break_minutes"`
	Position     string         `json:"position,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Status       string         `json:"status,omitempty"`
	Recurrence   *RecurrenceDTO `json:"recurrence,omitempty"`
}

func (r ShiftRequest) toShift() (schedule.Shift, error) {
	status := schedule.ShiftStatus(r.Status)
	if r.Status == "" {
		status = schedule.StatusScheduled
	}
	shift := schedule.Shift{
		EmployeeID:   schedule.EmployeeID(r.EmployeeID),
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		BreakMinutes: r.BreakMinutes,
		Position:     r.Position,
		Notes:        r.Notes,
		Status:       status,
	}
	pattern, err := r.Recurrence.toPattern()
	if err != nil {
		return schedule.Shift{}, err
	}
	if pattern != nil {
		shift.IsRecurring = true
		shift.RecurrencePattern = pattern
	}
	return shift, nil
}

type ShiftDTO struct {
	ID                 string    `json:"id"`
	EmployeeID         string    `json:"employee_id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	BreakMinutes       int       `json:"break_minutes"`
	Position           string    `json:"position,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	Status             string    `json:"status"`
	Locked             bool      `json:"locked"`
	IsRecurring        bool      `json:"is_recurring"`
	RecurrenceParentID string    `json:"recurrence_parent_id,omitempty"`
}

func toShiftDTO(s schedule.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:           string(s.ID),
		EmployeeID:   string(s.EmployeeID),
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		BreakMinutes: s.BreakMinutes,
		Position:     s.Position,
		Notes:        s.Notes,
		Status:       string(s.Status),
		Locked:       s.Locked,
		IsRecurring:  s.IsRecurring,
	}
	if s.RecurrenceParentID != nil {
		dto.RecurrenceParentID = string(*s.RecurrenceParentID)
	}
	return dto
}

type UpdateShiftRequest struct {
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	BreakMinutes *int       `json:"break_minutes,omitempty"`
	Position     *string    `json:"position,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	Status       *string    `json:"status,omitempty"`
}

func (r UpdateShiftRequest) toPatch() schedule.ShiftPatch {
	patch := schedule.ShiftPatch{
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		BreakMinutes: r.BreakMinutes,
		Position:     r.Position,
		Notes:        r.Notes,
	}
	if r.Status != nil {
		status := schedule.ShiftStatus(*r.Status)
		patch.Status = &status
	}
	return patch
}

// =============================================================================
// VALIDATION
// =============================================================================

type ConflictDTO struct {
	Type               string `json:"type"`
	Severity           string `json:"severity"`
	Message            string `json:"message"`
	ConflictingShiftID string `json:"conflicting_shift_id,omitempty"`
	TimeOffID          string `json:"time_off_id,omitempty"`
}

type OvertimeWarningDTO struct {
	Period          string `json:"period"`
	Severity        string `json:"severity"`
	Message         string `json:"message"`
	TotalMinutes    int    `json:"total_minutes"`
	OvertimeMinutes int    `json:"overtime_minutes"`
	Approaching     bool   `json:"approaching,omitempty"`
}

type ValidationResultDTO struct {
	Valid            bool                 `json:"valid"`
	Conflicts        []ConflictDTO        `json:"conflicts"`
	OvertimeWarnings []OvertimeWarningDTO `json:"overtime_warnings"`
}

func toValidationDTO(r schedule.ValidationResult) ValidationResultDTO {
	dto := ValidationResultDTO{
		Valid:            r.Valid,
		Conflicts:        []ConflictDTO{},
		OvertimeWarnings: []OvertimeWarningDTO{},
	}
	for _, c := range r.Conflicts {
		cd := ConflictDTO{
			Type:     string(c.Type),
			Severity: string(c.Severity),
			Message:  c.Message,
		}
		if c.ConflictingShiftID != nil {
			cd.ConflictingShiftID = string(*c.ConflictingShiftID)
		}
		if c.TimeOffID != nil {
			cd.TimeOffID = string(*c.TimeOffID)
		}
		dto.Conflicts = append(dto.Conflicts, cd)
	}
	for _, w := range r.OvertimeWarnings {
		dto.OvertimeWarnings = append(dto.OvertimeWarnings, OvertimeWarningDTO{
			Period:          string(w.Period),
			Severity:        string(w.Severity),
			Message:         w.Message,
			TotalMinutes:    w.TotalMinutes,
			OvertimeMinutes: w.OvertimeMinutes,
			Approaching:     w.Approaching,
		})
	}
	return dto
}

// =============================================================================
// MUTATION
// =============================================================================

type MutationResultDTO struct {
	AffectedCount      int    `json:"affected_count"`
	LockedSkippedCount int    `json:"locked_skipped_count"`
	Message            string `json:"message"`
}

type SeriesInfoDTO struct {
	TotalCount  int `json:"total_count"`
	LockedCount int `json:"locked_count"`
}

type CreateShiftResponse struct {
	Shift         ShiftDTO `json:"shift"`
	OccurrenceIDs []string `json:"occurrence_ids,omitempty"`
}

// =============================================================================
// TIPS
// =============================================================================

type ServerEarningDTO struct {
	EmployeeID  string `json:"employee_id"`
	EarnedCents int64  `json:"earned_cents"`
}

type WorkerDTO struct {
	EmployeeID string  `json:"employee_id"`
	Hours      float64 `json:"hours"`
	Role       string  `json:"role,omitempty"`
}

type PoolDTO struct {
	ID                     string             `json:"id"`
	ContributionPercentage float64            `json:"contribution_percentage"`
	ShareMethod            string             `json:"share_method"`
	EligibleEmployeeIDs    []string           `json:"eligible_employee_ids"`
	RoleWeights            map[string]float64 `json:"role_weights,omitempty"`
}

type AllocateRequest struct {
	Servers []ServerEarningDTO `json:"servers"`
	Pools   []PoolDTO          `json:"pools"`
	Workers []WorkerDTO        `json:"workers"`
}

func (r AllocateRequest) toInputs() ([]tips.ServerEarning, []tips.ContributionPool, []tips.Worker) {
	servers := make([]tips.ServerEarning, len(r.Servers))
	for i, s := range r.Servers {
		servers[i] = tips.ServerEarning{
			EmployeeID:  schedule.EmployeeID(s.EmployeeID),
			EarnedCents: s.EarnedCents,
		}
	}

	pools := make([]tips.ContributionPool, len(r.Pools))
	for i, p := range r.Pools {
		pool := tips.ContributionPool{
			ID:                     p.ID,
			ContributionPercentage: decimal.NewFromFloat(p.ContributionPercentage),
			ShareMethod:            tips.ShareMethod(p.ShareMethod),
		}
		for _, id := range p.EligibleEmployeeIDs {
			pool.EligibleEmployeeIDs = append(pool.EligibleEmployeeIDs, schedule.EmployeeID(id))
		}
		if len(p.RoleWeights) > 0 {
			pool.RoleWeights = make(map[string]decimal.Decimal, len(p.RoleWeights))
			for role, w := range p.RoleWeights {
				pool.RoleWeights[role] = decimal.NewFromFloat(w)
			}
		}
		pools[i] = pool
	}

	workers := make([]tips.Worker, len(r.Workers))
	for i, w := range r.Workers {
		workers[i] = tips.Worker{
			EmployeeID: schedule.EmployeeID(w.EmployeeID),
			Hours:      decimal.NewFromFloat(w.Hours),
			Role:       w.Role,
		}
	}
	return servers, pools, workers
}

type TipShareDTO struct {
	EmployeeID  string  `json:"employee_id"`
	AmountCents int64   `json:"amount_cents"`
	Hours       float64 `json:"hours,omitempty"`
	Role        string  `json:"role,omitempty"`
}

func toTipShareDTOs(shares []tips.TipShare) []TipShareDTO {
	out := make([]TipShareDTO, len(shares))
	for i, s := range shares {
		hours, _ := s.Hours.Float64()
		out[i] = TipShareDTO{
			EmployeeID:  string(s.EmployeeID),
			AmountCents: s.AmountCents,
			Hours:       hours,
			Role:        s.Role,
		}
	}
	return out
}

type ServerResultDTO struct {
	EmployeeID       string `json:"employee_id"`
	EarnedCents      int64  `json:"earned_cents"`
	ContributedCents int64  `json:"contributed_cents"`
	RefundedCents    int64  `json:"refunded_cents"`
	RetainedCents    int64  `json:"retained_cents"`
}

type PoolResultDTO struct {
	PoolID     string        `json:"pool_id"`
	TotalCents int64         `json:"total_cents"`
	Refunded   bool          `json:"refunded"`
	Shares     []TipShareDTO `json:"shares,omitempty"`
	Refunds    []TipShareDTO `json:"refunds,omitempty"`
}

type AllocationResultDTO struct {
	ServerResults []ServerResultDTO `json:"server_results"`
	PoolResults   []PoolResultDTO   `json:"pool_results"`
	SplitItems    []TipShareDTO     `json:"split_items"`
	Combined      map[string]int64  `json:"combined_totals"`
}

func toAllocationDTO(r tips.PercentageAllocationResult) AllocationResultDTO {
	dto := AllocationResultDTO{
		ServerResults: make([]ServerResultDTO, len(r.ServerResults)),
		PoolResults:   make([]PoolResultDTO, len(r.PoolResults)),
		SplitItems:    toTipShareDTOs(r.SplitItems),
		Combined:      make(map[string]int64),
	}
	for i, sr := range r.ServerResults {
		dto.ServerResults[i] = ServerResultDTO{
			EmployeeID:       string(sr.EmployeeID),
			EarnedCents:      sr.EarnedCents,
			ContributedCents: sr.ContributedCents,
			RefundedCents:    sr.RefundedCents,
			RetainedCents:    sr.RetainedCents,
		}
	}
	for i, pr := range r.PoolResults {
		dto.PoolResults[i] = PoolResultDTO{
			PoolID:     pr.PoolID,
			TotalCents: pr.TotalCents,
			Refunded:   pr.Refunded,
			Shares:     toTipShareDTOs(pr.Shares),
			Refunds:    toTipShareDTOs(pr.Refunds),
		}
	}
	for id, cents := range r.CombinedTotals() {
		dto.Combined[string(id)] = cents
	}
	return dto
}

type RebalanceRequest struct {
	Shares         []TipShareDTO `json:"shares"`
	EmployeeID     string        `json:"employee_id"`
	NewAmountCents int64         `json:"new_amount_cents"`
}

// =============================================================================
// ROSTER / TIME OFF
// =============================================================================

type EmployeeDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role,omitempty"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	Compensation    string `json:"compensation"`
	TipEligible     bool   `json:"tip_eligible"`
	Active          bool   `json:"active"`
}

type TimeOffDTO struct {
	ID         string `json:"id,omitempty"`
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}
