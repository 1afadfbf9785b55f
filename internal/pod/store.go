package pod

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"bridge/internal/config"
)

// Store wraps the SQLite database holding pods.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the pod database for the given
// configuration and ensures the schema is current.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return OpenPath(ctx, cfg.DatabasePath())
}

// OpenPath opens the pod database at an explicit path. Most callers should
// use Open; this exists for tooling that points at a copied database.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn between the engine and the accountant.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the filesystem location of the database.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new pod snapshot, including its members and tasks.
func (s *Store) Create(ctx context.Context, p *Pod) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO pods (id, name, description, owner, tag, status, current_stage,
                          stage_order, created_at, start_date, end_date, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Name,
		nullableString(p.Description),
		nullableString(p.Owner),
		string(p.Tag),
		string(p.Status),
		p.CurrentStageIndex,
		marshalOrder(p.StageOrder),
		formatTime(p.CreatedAt),
		nullableTime(p.StartDate),
		nullableTime(p.EndDate),
		formatTime(p.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert pod %s: %w", p.ID, err)
	}

	if err := insertMembers(ctx, tx, p.ID, p.Members); err != nil {
		return err
	}
	if err := insertTasks(ctx, tx, p.ID, p.Tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}
	return nil
}

// GetByID returns the pod with the given id, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Pod, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, name, description, owner, tag, status, current_stage,
               stage_order, created_at, start_date, end_date, updated_at
        FROM pods WHERE id = ?`, id)

	p, err := scanPod(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pod %s: %w", id, err)
	}

	if err := s.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns pods, newest first. With no statuses it returns everything;
// otherwise only pods in one of the given statuses.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Pod, error) {
	query := `
        SELECT id, name, description, owner, tag, status, current_stage,
               stage_order, created_at, start_date, end_date, updated_at
        FROM pods`
	var args []any
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	defer rows.Close()

	var pods []*Pod
	for rows.Next() {
		p, err := scanPod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pod: %w", err)
		}
		pods = append(pods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pods: %w", err)
	}

	for _, p := range pods {
		if err := s.loadChildren(ctx, p); err != nil {
			return nil, err
		}
	}
	return pods, nil
}

// Save replaces the stored snapshot of an existing pod. Members and tasks are
// rewritten wholesale; their count is small and the transaction keeps readers
// consistent. Returns ErrNotFound when the pod no longer exists.
func (s *Store) Save(ctx context.Context, p *Pod) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
        UPDATE pods
        SET name = ?, description = ?, owner = ?, tag = ?, status = ?,
            current_stage = ?, stage_order = ?, start_date = ?, end_date = ?,
            updated_at = ?
        WHERE id = ?`,
		p.Name,
		nullableString(p.Description),
		nullableString(p.Owner),
		string(p.Tag),
		string(p.Status),
		p.CurrentStageIndex,
		marshalOrder(p.StageOrder),
		nullableTime(p.StartDate),
		nullableTime(p.EndDate),
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update pod %s: %w", p.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pod %s: %w", p.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("pod %s: %w", p.ID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM pod_members WHERE pod_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear members for pod %s: %w", p.ID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM pod_tasks WHERE pod_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear tasks for pod %s: %w", p.ID, err)
	}

	if err := insertMembers(ctx, tx, p.ID, p.Members); err != nil {
		return err
	}
	if err := insertTasks(ctx, tx, p.ID, p.Tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Delete removes a pod and its children. It reports whether a pod was
// actually removed; deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM pods WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete pod %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete pod %s: %w", id, err)
	}
	return affected > 0, nil
}

// UpdateMemberTime writes the accountant's elapsed-days figure for a single
// member without touching the rest of the pod snapshot.
func (s *Store) UpdateMemberTime(ctx context.Context, memberID string, days float64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE pod_members SET actual_days = ? WHERE id = ?", days, memberID)
	if err != nil {
		return fmt.Errorf("update member time %s: %w", memberID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member time %s: %w", memberID, err)
	}
	if affected == 0 {
		return fmt.Errorf("member %s: %w", memberID, ErrNotFound)
	}
	return nil
}

// Health reports aggregated pod counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM pods GROUP BY status")
	if err != nil {
		return HealthSummary{}, fmt.Errorf("pod health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan pod health: %w", err)
		}
		summary.Total += count
		switch Status(status) {
		case StatusPlanning:
			summary.Planning = count
		case StatusInProgress:
			summary.InProgress = count
		case StatusCompleted:
			summary.Completed = count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate pod health: %w", err)
	}
	return summary, nil
}

func (s *Store) loadChildren(ctx context.Context, p *Pod) error {
	members, err := s.loadMembers(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Members = members

	tasks, err := s.loadTasks(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Tasks = tasks
	return nil
}

func (s *Store) loadMembers(ctx context.Context, podID string) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, role, task_description, planned_start, planned_end,
               handoff_link, completed, work_started_at, work_completed_at, actual_days
        FROM pod_members WHERE pod_id = ? ORDER BY position`, podID)
	if err != nil {
		return nil, fmt.Errorf("load members for pod %s: %w", podID, err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var (
			m               Member
			taskDescription sql.NullString
			plannedStart    sql.NullString
			plannedEnd      sql.NullString
			handoffLink     sql.NullString
			workStartedAt   sql.NullString
			workCompletedAt sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &taskDescription, &plannedStart,
			&plannedEnd, &handoffLink, &m.Completed, &workStartedAt, &workCompletedAt,
			&m.ActualDays); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.TaskDescription = taskDescription.String
		m.HandoffLink = handoffLink.String
		m.PlannedStart = parseTimeString(plannedStart)
		m.PlannedEnd = parseTimeString(plannedEnd)
		m.WorkStartedAt = parseTimePtr(workStartedAt)
		m.WorkCompletedAt = parseTimePtr(workCompletedAt)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

func (s *Store) loadTasks(ctx context.Context, podID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, title, description, assigned_to, assigned_by, status, link,
               created_at, completed_at
        FROM pod_tasks WHERE pod_id = ? ORDER BY created_at`, podID)
	if err != nil {
		return nil, fmt.Errorf("load tasks for pod %s: %w", podID, err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var (
			t           Task
			description sql.NullString
			assignedTo  sql.NullString
			assignedBy  sql.NullString
			link        sql.NullString
			createdAt   string
			completedAt sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Title, &description, &assignedTo, &assignedBy,
			&t.Status, &link, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Description = description.String
		t.AssignedTo = assignedTo.String
		t.AssignedBy = assignedBy.String
		t.Link = link.String
		t.CreatedAt = mustParseTime(createdAt)
		t.CompletedAt = parseTimePtr(completedAt)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, podID string, members []Member) error {
	for position, m := range members {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO pod_members (id, pod_id, position, name, role, task_description,
                                     planned_start, planned_end, handoff_link, completed,
                                     work_started_at, work_completed_at, actual_days)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID,
			podID,
			position,
			m.Name,
			m.Role,
			nullableString(m.TaskDescription),
			nullableTime(m.PlannedStart),
			nullableTime(m.PlannedEnd),
			nullableString(m.HandoffLink),
			m.Completed,
			nullableTimePtr(m.WorkStartedAt),
			nullableTimePtr(m.WorkCompletedAt),
			m.ActualDays,
		); err != nil {
			return fmt.Errorf("insert member %s: %w", m.ID, err)
		}
	}
	return nil
}

func insertTasks(ctx context.Context, tx *sql.Tx, podID string, tasks []Task) error {
	for _, t := range tasks {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO pod_tasks (id, pod_id, title, description, assigned_to,
                                   assigned_by, status, link, created_at, completed_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID,
			podID,
			t.Title,
			nullableString(t.Description),
			nullableString(t.AssignedTo),
			nullableString(t.AssignedBy),
			string(t.Status),
			nullableString(t.Link),
			formatTime(t.CreatedAt),
			nullableTimePtr(t.CompletedAt),
		); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPod(row rowScanner) (*Pod, error) {
	var (
		p           Pod
		description sql.NullString
		owner       sql.NullString
		stageOrder  string
		createdAt   string
		startDate   sql.NullString
		endDate     sql.NullString
		updatedAt   string
	)
	err := row.Scan(&p.ID, &p.Name, &description, &owner, &p.Tag, &p.Status,
		&p.CurrentStageIndex, &stageOrder, &createdAt, &startDate, &endDate, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Owner = owner.String
	p.StageOrder = unmarshalOrder(stageOrder)
	p.CreatedAt = mustParseTime(createdAt)
	p.StartDate = parseTimeString(startDate)
	p.EndDate = parseTimeString(endDate)
	p.UpdatedAt = mustParseTime(updatedAt)
	return &p, nil
}

func marshalOrder(order []string) string {
	if len(order) == 0 {
		return "[]"
	}
	data, err := json.Marshal(order)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalOrder(raw string) []string {
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil
	}
	return order
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

func nullableTimePtr(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func parseTimeString(value sql.NullString) time.Time {
	if !value.Valid || value.String == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value.String)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func parseTimePtr(value sql.NullString) *time.Time {
	parsed := parseTimeString(value)
	if parsed.IsZero() {
		return nil
	}
	return &parsed
}

func mustParseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
