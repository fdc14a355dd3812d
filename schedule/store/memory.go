// Package store provides in-memory implementations of the schedule
// persistence interfaces, used for testing and development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements schedule.ShiftStore, schedule.Roster, and
// schedule.TimeOffSource with map-backed state guarded by a RWMutex.
type Memory struct {
	mu        sync.RWMutex
	shifts    map[schedule.ShiftID]schedule.Shift
	employees map[schedule.EmployeeID]schedule.Employee
	timeOff   map[schedule.TimeOffID]schedule.TimeOffRequest
	seq       atomic.Uint64
}

func NewMemory() *Memory {
	return &Memory{
		shifts:    make(map[schedule.ShiftID]schedule.Shift),
		employees: make(map[schedule.EmployeeID]schedule.Employee),
		timeOff:   make(map[schedule.TimeOffID]schedule.TimeOffRequest),
	}
}

func (m *Memory) nextShiftID() schedule.ShiftID {
	return schedule.ShiftID(fmt.Sprintf("shift-%d", m.seq.Add(1)))
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (m *Memory) Insert(_ context.Context, s schedule.Shift) (schedule.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(s)
}

func (m *Memory) insertLocked(s schedule.Shift) (schedule.Shift, error) {
	if s.ID == "" {
		s.ID = m.nextShiftID()
	}
	if _, exists := m.shifts[s.ID]; exists {
		return schedule.Shift{}, fmt.Errorf("shift %s already exists", s.ID)
	}
	m.shifts[s.ID] = s
	return s, nil
}

// InsertBatch is atomic: ID collisions are checked before any write.
func (m *Memory) InsertBatch(_ context.Context, shifts []schedule.Shift) ([]schedule.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[schedule.ShiftID]struct{}, len(shifts))
	for _, s := range shifts {
		if s.ID == "" {
			continue
		}
		if _, exists := m.shifts[s.ID]; exists {
			return nil, fmt.Errorf("shift %s already exists", s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("shift %s appears twice in batch", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	created := make([]schedule.Shift, 0, len(shifts))
	for _, s := range shifts {
		inserted, err := m.insertLocked(s)
		if err != nil {
			return nil, err
		}
		created = append(created, inserted)
	}
	return created, nil
}

func (m *Memory) Get(_ context.Context, id schedule.ShiftID) (schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[id]
	if !ok {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return s, nil
}

func (m *Memory) Query(_ context.Context, f schedule.ShiftFilter) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.Shift
	for _, s := range m.shifts {
		if f.Matches(s) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (m *Memory) Count(_ context.Context, f schedule.ShiftFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.shifts {
		if f.Matches(s) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Update(_ context.Context, f schedule.ShiftFilter, p schedule.ShiftPatch) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	affected := 0
	for id, s := range m.shifts {
		if f.Matches(s) {
			m.shifts[id] = p.Apply(s)
			affected++
		}
	}
	return affected, nil
}

func (m *Memory) Delete(_ context.Context, f schedule.ShiftFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	affected := 0
	for id, s := range m.shifts {
		if f.Matches(s) {
			delete(m.shifts, id)
			affected++
		}
	}
	return affected, nil
}

// =============================================================================
// ROSTER
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id schedule.EmployeeID) (schedule.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return schedule.Employee{}, fmt.Errorf("employee %s not found", id)
	}
	return e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]schedule.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]schedule.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e schedule.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

// =============================================================================
// TIME OFF
// =============================================================================

func (m *Memory) ListTimeOff(_ context.Context, employeeID schedule.EmployeeID) ([]schedule.TimeOffRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []schedule.TimeOffRequest
	for _, r := range m.timeOff {
		if r.EmployeeID == employeeID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, nil
}

func (m *Memory) SaveTimeOff(_ context.Context, req schedule.TimeOffRequest) (schedule.TimeOffRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.ID == "" {
		req.ID = schedule.TimeOffID(fmt.Sprintf("timeoff-%d", m.seq.Add(1)))
	}
	m.timeOff[req.ID] = req
	return req, nil
}

// Compile-time interface checks.
var (
	_ schedule.ShiftStore    = (*Memory)(nil)
	_ schedule.Roster        = (*Memory)(nil)
	_ schedule.TimeOffSource = (*Memory)(nil)
)
