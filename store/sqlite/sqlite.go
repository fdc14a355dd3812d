/*
Package sqlite provides a SQLite-backed implementation of the schedule
storage interfaces.

PURPOSE:
  Implements schedule.ShiftStore, schedule.Roster, and
  schedule.TimeOffSource using SQLite. The same patterns apply to
  PostgreSQL with minor dialect differences.

PREDICATE TRANSLATION:
  schedule.ShiftFilter is translated to a WHERE clause, so the lock
  filter (locked = 0) is enforced by the database row filter at mutation
  time. That row filter, not any earlier count, is what decides which
  series members a bulk operation touches.

ATOMIC BATCHES:
  InsertBatch wraps the whole child insert in one database transaction,
  so a recurring series' children are all-or-nothing. The parent insert
  remains a separate statement; the engine surfaces the partial state if
  the batch fails afterward.

KEY TABLES:
  shifts:    One row per occurrence; series children reference the parent
             via recurrence_parent_id, the parent stores the pattern JSON
  employees: Roster records with tip-eligibility flags
  time_off:  Requests with status; only approved ones block scheduling

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/schedule.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := schedule.NewSeriesEngine(store, nil)

SEE ALSO:
  - schedule/store.go: Interface definitions
  - schedule/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/schedule-engine/schedule"
)

// Store implements the schedule storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	seq atomic.Uint64
}

// New creates a new SQLite store at the given path. Use ":memory:" for
// an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		position TEXT,
		notes TEXT,
		status TEXT NOT NULL,
		locked INTEGER NOT NULL DEFAULT 0,
		is_recurring INTEGER NOT NULL DEFAULT 0,
		recurrence_json TEXT,
		recurrence_parent_id TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_shifts_employee_start ON shifts(employee_id, start_time);
	CREATE INDEX IF NOT EXISTS idx_shifts_parent ON shifts(recurrence_parent_id);
	CREATE INDEX IF NOT EXISTS idx_shifts_locked ON shifts(locked);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT,
		hourly_rate_cents INTEGER NOT NULL DEFAULT 0,
		compensation TEXT NOT NULL DEFAULT 'hourly',
		tip_eligible INTEGER NOT NULL DEFAULT 1,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS time_off (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_time_off_employee ON time_off(employee_id);
	`
	_, err := s.db.Exec(schemaSQL)
	return err
}

func (s *Store) nextID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), s.seq.Add(1))
}

// timeLayout is fixed-width and UTC-normalized so lexicographic ordering
// of stored strings matches chronological ordering in range predicates.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// =============================================================================
// SHIFT STORE
// =============================================================================

const shiftColumns = `id, employee_id, start_time, end_time, break_minutes,
	position, notes, status, locked, is_recurring, recurrence_json, recurrence_parent_id`

func (s *Store) Insert(ctx context.Context, shift schedule.Shift) (schedule.Shift, error) {
	if shift.ID == "" {
		shift.ID = schedule.ShiftID(s.nextID("shift"))
	}
	if err := s.insertOne(ctx, s.db, shift); err != nil {
		return schedule.Shift{}, err
	}
	return shift, nil
}

// InsertBatch persists all shifts in one transaction: all or none.
func (s *Store) InsertBatch(ctx context.Context, shifts []schedule.Shift) ([]schedule.Shift, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created := make([]schedule.Shift, 0, len(shifts))
	for _, shift := range shifts {
		if shift.ID == "" {
			shift.ID = schedule.ShiftID(s.nextID("shift"))
		}
		if err := s.insertOne(ctx, tx, shift); err != nil {
			return nil, err
		}
		created = append(created, shift)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertOne(ctx context.Context, db execer, shift schedule.Shift) error {
	patternJSON, err := marshalPattern(shift.RecurrencePattern)
	if err != nil {
		return err
	}

	var parentID any
	if shift.RecurrenceParentID != nil {
		parentID = string(*shift.RecurrenceParentID)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO shifts (`+shiftColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(shift.ID), string(shift.EmployeeID),
		formatTime(shift.StartTime), formatTime(shift.EndTime),
		shift.BreakMinutes, shift.Position, shift.Notes, string(shift.Status),
		boolToInt(shift.Locked), boolToInt(shift.IsRecurring), patternJSON, parentID,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shift %s: %w", shift.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id schedule.ShiftID) (schedule.Shift, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, string(id))
	shift, err := scanShift(row)
	if err == sql.ErrNoRows {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return shift, err
}

func (s *Store) Query(ctx context.Context, f schedule.ShiftFilter) ([]schedule.Shift, error) {
	where, args := buildWhere(f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts`+where+` ORDER BY start_time`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []schedule.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

func (s *Store) Count(ctx context.Context, f schedule.ShiftFilter) (int, error) {
	where, args := buildWhere(f)
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shifts`+where, args...).Scan(&n)
	return n, err
}

func (s *Store) Update(ctx context.Context, f schedule.ShiftFilter, p schedule.ShiftPatch) (int, error) {
	set, setArgs, err := buildSet(p)
	if err != nil {
		return 0, err
	}
	if set == "" {
		return 0, nil
	}

	where, whereArgs := buildWhere(f)
	res, err := s.db.ExecContext(ctx,
		`UPDATE shifts SET `+set+where, append(setArgs, whereArgs...)...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

func (s *Store) Delete(ctx context.Context, f schedule.ShiftFilter) (int, error) {
	where, args := buildWhere(f)
	res, err := s.db.ExecContext(ctx, `DELETE FROM shifts`+where, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	return int(affected), err
}

// =============================================================================
// PREDICATE / PATCH TRANSLATION
// =============================================================================

func buildWhere(f schedule.ShiftFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.ID != nil {
		clauses = append(clauses, "id = ?")
		args = append(args, string(*f.ID))
	}
	if f.EmployeeID != nil {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, string(*f.EmployeeID))
	}
	if f.SeriesKey != nil {
		clauses = append(clauses, "(id = ? OR recurrence_parent_id = ?)")
		args = append(args, string(*f.SeriesKey), string(*f.SeriesKey))
	}
	if f.StartFrom != nil {
		clauses = append(clauses, "start_time >= ?")
		args = append(args, formatTime(*f.StartFrom))
	}
	if f.StartTo != nil {
		clauses = append(clauses, "start_time <= ?")
		args = append(args, formatTime(*f.StartTo))
	}
	if f.Locked != nil {
		clauses = append(clauses, "locked = ?")
		args = append(args, boolToInt(*f.Locked))
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildSet(p schedule.ShiftPatch) (string, []any, error) {
	var sets []string
	var args []any

	if p.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, formatTime(*p.StartTime))
	}
	if p.EndTime != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, formatTime(*p.EndTime))
	}
	if p.BreakMinutes != nil {
		sets = append(sets, "break_minutes = ?")
		args = append(args, *p.BreakMinutes)
	}
	if p.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *p.Position)
	}
	if p.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *p.Notes)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.RecurrencePattern != nil && !p.ClearRecurrence {
		patternJSON, err := marshalPattern(p.RecurrencePattern)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, "recurrence_json = ?")
		args = append(args, patternJSON)
	}
	if p.ClearRecurrence {
		sets = append(sets, "is_recurring = 0", "recurrence_json = NULL", "recurrence_parent_id = NULL")
	}

	return strings.Join(sets, ", "), args, nil
}

// =============================================================================
// ROW MAPPING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (schedule.Shift, error) {
	var shift schedule.Shift
	var id, employeeID, startTime, endTime, status string
	var position, notes, patternJSON, parentID sql.NullString
	var locked, isRecurring int

	err := row.Scan(&id, &employeeID, &startTime, &endTime, &shift.BreakMinutes,
		&position, &notes, &status, &locked, &isRecurring, &patternJSON, &parentID)
	if err != nil {
		return schedule.Shift{}, err
	}

	shift.ID = schedule.ShiftID(id)
	shift.EmployeeID = schedule.EmployeeID(employeeID)
	shift.Position = position.String
	shift.Notes = notes.String
	shift.Status = schedule.ShiftStatus(status)
	shift.Locked = locked != 0
	shift.IsRecurring = isRecurring != 0

	if shift.StartTime, err = parseTime(startTime); err != nil {
		return schedule.Shift{}, fmt.Errorf("bad start_time for shift %s: %w", id, err)
	}
	if shift.EndTime, err = parseTime(endTime); err != nil {
		return schedule.Shift{}, fmt.Errorf("bad end_time for shift %s: %w", id, err)
	}

	if patternJSON.Valid && patternJSON.String != "" {
		var pattern schedule.RecurrencePattern
		if err := json.Unmarshal([]byte(patternJSON.String), &pattern); err != nil {
			return schedule.Shift{}, fmt.Errorf("bad recurrence pattern for shift %s: %w", id, err)
		}
		shift.RecurrencePattern = &pattern
	}
	if parentID.Valid && parentID.String != "" {
		pid := schedule.ShiftID(parentID.String)
		shift.RecurrenceParentID = &pid
	}
	return shift, nil
}

func marshalPattern(p *schedule.RecurrencePattern) (any, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recurrence pattern: %w", err)
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// ROSTER
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id schedule.EmployeeID) (schedule.Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, hourly_rate_cents, compensation, tip_eligible, active
		FROM employees WHERE id = ?`, string(id))
	return scanEmployee(row)
}

func (s *Store) ListEmployees(ctx context.Context) ([]schedule.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, hourly_rate_cents, compensation, tip_eligible, active
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []schedule.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) SaveEmployee(ctx context.Context, e schedule.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, role, hourly_rate_cents, compensation, tip_eligible, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			hourly_rate_cents = excluded.hourly_rate_cents,
			compensation = excluded.compensation,
			tip_eligible = excluded.tip_eligible,
			active = excluded.active`,
		string(e.ID), e.Name, e.Role, e.HourlyRateCents, string(e.Compensation),
		boolToInt(e.TipEligible), boolToInt(e.Active))
	return err
}

func scanEmployee(row rowScanner) (schedule.Employee, error) {
	var e schedule.Employee
	var id, compensation string
	var role sql.NullString
	var tipEligible, active int

	err := row.Scan(&id, &e.Name, &role, &e.HourlyRateCents, &compensation, &tipEligible, &active)
	if err != nil {
		return schedule.Employee{}, err
	}

	e.ID = schedule.EmployeeID(id)
	e.Role = role.String
	e.Compensation = schedule.CompensationType(compensation)
	e.TipEligible = tipEligible != 0
	e.Active = active != 0
	return e, nil
}

// =============================================================================
// TIME OFF
// =============================================================================

func (s *Store) ListTimeOff(ctx context.Context, employeeID schedule.EmployeeID) ([]schedule.TimeOffRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, start_date, end_date, status, reason
		FROM time_off WHERE employee_id = ? ORDER BY start_date`, string(employeeID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []schedule.TimeOffRequest
	for rows.Next() {
		var req schedule.TimeOffRequest
		var id, empID, startDate, endDate, status string
		var reason sql.NullString
		if err := rows.Scan(&id, &empID, &startDate, &endDate, &status, &reason); err != nil {
			return nil, err
		}
		req.ID = schedule.TimeOffID(id)
		req.EmployeeID = schedule.EmployeeID(empID)
		req.Status = schedule.TimeOffStatus(status)
		req.Reason = reason.String
		if req.StartDate, err = parseTime(startDate); err != nil {
			return nil, fmt.Errorf("bad start_date for time off %s: %w", id, err)
		}
		if req.EndDate, err = parseTime(endDate); err != nil {
			return nil, fmt.Errorf("bad end_date for time off %s: %w", id, err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) SaveTimeOff(ctx context.Context, req schedule.TimeOffRequest) (schedule.TimeOffRequest, error) {
	if req.ID == "" {
		req.ID = schedule.TimeOffID(s.nextID("timeoff"))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off (id, employee_id, start_date, end_date, status, reason)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			status = excluded.status,
			reason = excluded.reason`,
		string(req.ID), string(req.EmployeeID),
		formatTime(req.StartDate), formatTime(req.EndDate),
		string(req.Status), req.Reason)
	if err != nil {
		return schedule.TimeOffRequest{}, err
	}
	return req, nil
}

// Compile-time interface checks.
var (
	_ schedule.ShiftStore    = (*Store)(nil)
	_ schedule.Roster        = (*Store)(nil)
	_ schedule.TimeOffSource = (*Store)(nil)
)
