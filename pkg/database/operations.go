package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"todoman/pkg/task"
	"todoman/pkg/utils"
)

const selectColumns = `
	SELECT id, task, due_date, due_time, priority, status, reminder_enabled, created_at, week_day
	FROM todos
`

// priority rank desc, then due date and time ascending with nulls last
const listOrder = `
	ORDER BY CASE priority
		WHEN 'Critical' THEN 4
		WHEN 'High' THEN 3
		WHEN 'Medium' THEN 2
		WHEN 'Low' THEN 1
		ELSE 0 END DESC,
	due_date IS NULL, due_date ASC,
	due_time IS NULL, due_time ASC,
	id ASC
`

// Store is the task table. It is safe for concurrent use by the UI and the reminder worker.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for created_at and the "Today's Tasks" filter.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore wraps an open connection. The schema must already exist.
func NewStore(db *sql.DB, driver string, opts ...Option) *Store {
	if driver == "" {
		driver = DriverSQLite
	}
	s := &Store{db: db, driver: driver, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert adds a new task and returns its id
func (s *Store) Insert(ctx context.Context, d task.Draft) (int64, error) {
	const q = `INSERT INTO todos (task, due_date, due_time, priority, status, reminder_enabled, created_at, week_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{d.Description, d.DueDate, d.DueTime, string(d.Priority), string(task.Pending), d.ReminderEnabled, s.now(), d.WeekDay}

	var id int64
	if s.driver == DriverPostgres {
		if err := s.db.QueryRowContext(ctx, rebind(s.driver, q)+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, task.Storage("insert task", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, task.Storage("insert task", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, task.Storage("insert task", err)
		}
	}

	utils.Log("Added task %d: %s", id, d.Description)
	return id, nil
}

// Update replaces the editable fields of a task. Status and created_at are left alone.
func (s *Store) Update(ctx context.Context, id int64, d task.Draft) error {
	const q = `UPDATE todos SET task = ?, due_date = ?, due_time = ?, priority = ?, reminder_enabled = ?, week_day = ?
		WHERE id = ?`
	if err := s.exec(ctx, "update task", id, q, d.Description, d.DueDate, d.DueTime, string(d.Priority), d.ReminderEnabled, d.WeekDay, id); err != nil {
		return err
	}
	utils.Log("Updated task %d", id)
	return nil
}

// Delete removes a task
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.exec(ctx, "delete task", id, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return err
	}
	utils.Log("Deleted task %d", id)
	return nil
}

// SetStatus moves a task to the given status. Completed tasks cannot go back to Pending.
func (s *Store) SetStatus(ctx context.Context, id int64, status task.Status) error {
	if status != task.Pending && status != task.Completed {
		return task.Invalid("unknown status %q", status)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == task.Completed && status != task.Completed {
		return task.Invalid("task %d is already completed", id)
	}
	return s.exec(ctx, "set status", id, `UPDATE todos SET status = ? WHERE id = ?`, string(status), id)
}

// SetReminder flips the reminder flag. Clearing an already-cleared flag is not an error;
// arming one on a task without a due date is.
func (s *Store) SetReminder(ctx context.Context, id int64, enabled bool) error {
	if enabled {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.DueDate == nil {
			return task.Invalid("task %d has no due date to remind about", id)
		}
	}
	return s.exec(ctx, "set reminder", id, `UPDATE todos SET reminder_enabled = ? WHERE id = ?`, enabled, id)
}

// Get loads a single task
func (s *Store) Get(ctx context.Context, id int64) (task.Task, error) {
	row := s.db.QueryRowContext(ctx, rebind(s.driver, selectColumns+" WHERE id = ?"), id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, task.NotFound(id)
	}
	if err != nil {
		return task.Task{}, task.Storage("get task", err)
	}
	return t, nil
}

// Query lists tasks matching a filter in display order
func (s *Store) Query(ctx context.Context, filter task.Filter) ([]task.Task, error) {
	var (
		where string
		args  []any
		order = listOrder
	)

	switch filter {
	case task.FilterAll, "":
	case task.FilterPending:
		where, args = " WHERE status = ?", []any{string(task.Pending)}
	case task.FilterCompleted:
		where, args = " WHERE status = ?", []any{string(task.Completed)}
	case task.FilterHighPriority:
		where, args = " WHERE priority IN (?, ?)", []any{string(task.High), string(task.Critical)}
	case task.FilterToday:
		where, args = " WHERE due_date = ?", []any{s.now().Format(task.DateLayout)}
		order = " ORDER BY due_time IS NULL, due_time ASC, id ASC"
	default:
		return nil, task.Invalid("unknown filter %q", filter)
	}

	tasks, err := s.list(ctx, selectColumns+where+order, args...)
	if err != nil {
		return nil, task.Storage("query "+string(filter), err)
	}
	utils.Log("Loaded %d tasks for filter %q", len(tasks), filter)
	return tasks, nil
}

// ReminderCandidates returns pending tasks with an armed reminder and a due date.
func (s *Store) ReminderCandidates(ctx context.Context) ([]task.Task, error) {
	q := selectColumns + " WHERE reminder_enabled = ? AND status = ? AND due_date IS NOT NULL AND due_date <> '' ORDER BY id ASC"
	tasks, err := s.list(ctx, q, true, string(task.Pending))
	if err != nil {
		return nil, task.Storage("query reminder candidates", err)
	}
	return tasks, nil
}

// Purge deletes all tasks, or only the completed ones, and returns how many went.
func (s *Store) Purge(ctx context.Context, completedOnly bool) (int64, error) {
	q, args := `DELETE FROM todos`, []any(nil)
	if completedOnly {
		q, args = `DELETE FROM todos WHERE status = ?`, []any{string(task.Completed)}
	}
	res, err := s.db.ExecContext(ctx, rebind(s.driver, q), args...)
	if err != nil {
		return 0, task.Storage("purge", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, task.Storage("purge", err)
	}
	utils.Log("Purged %d tasks", n)
	return n, nil
}

func (s *Store) exec(ctx context.Context, op string, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, rebind(s.driver, query), args...)
	if err != nil {
		return task.Storage(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return task.Storage(op, err)
	}
	if n == 0 {
		return task.NotFound(id)
	}
	return nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, rebind(s.driver, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var (
		t                         task.Task
		dueDate, dueTime, weekDay sql.NullString
		priority, status          string
	)
	if err := row.Scan(&t.ID, &t.Description, &dueDate, &dueTime, &priority, &status, &t.ReminderEnabled, &t.CreatedAt, &weekDay); err != nil {
		return task.Task{}, err
	}
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	t.DueDate = nullable(dueDate)
	t.DueTime = nullable(dueTime)
	t.WeekDay = nullable(weekDay)
	return t, nil
}

// nullable maps NULL and the empty string to nil.
func nullable(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}
