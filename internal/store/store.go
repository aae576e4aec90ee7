package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
)

// Store wraps the sqlite database holding all user data.
type Store struct {
	DB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			title TEXT,
			due_date DATETIME,
			completed INTEGER DEFAULT 0,
			reminded INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			name TEXT,
			streak INTEGER DEFAULT 0,
			done_today INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS courses (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			name TEXT,
			instructor TEXT,
			schedule TEXT,
			next_deadline TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS materials (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			title TEXT,
			content TEXT,
			subject TEXT,
			type TEXT,
			tags TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			title TEXT,
			starts_at DATETIME,
			duration_minutes INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			user_id TEXT,
			date TEXT,
			tasks_completed INTEGER DEFAULT 0,
			study_minutes INTEGER DEFAULT 0,
			habits_done INTEGER DEFAULT 0,
			PRIMARY KEY (user_id, date)
		);`,
	}
	for _, q := range queries {
		if _, err = db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// ---- tasks ----

func (s *Store) CreateTask(ctx context.Context, t Task) (Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	var due any
	if t.DueDate != nil {
		due = t.DueDate.UTC()
	}
	query := `INSERT INTO tasks (id, user_id, title, due_date, completed, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, t.ID, t.UserID, t.Title, due, boolInt(t.Completed), t.CreatedAt.UTC())
	return t, err
}

func (s *Store) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	query := `SELECT id, title, due_date, completed, created_at FROM tasks WHERE user_id = ? ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var due sql.NullTime
		var completed int
		if err := rows.Scan(&t.ID, &t.Title, &due, &completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.UserID = userID
		t.Completed = completed != 0
		if due.Valid {
			d := due.Time
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) CompleteTask(ctx context.Context, userID, taskID string) error {
	query := `UPDATE tasks SET completed = 1 WHERE user_id = ? AND id = ?`
	_, err := s.DB.ExecContext(ctx, query, userID, taskID)
	return err
}

// DueTasks returns uncompleted tasks due within the lookahead window that
// have not been reminded about yet.
func (s *Store) DueTasks(ctx context.Context, lookahead time.Duration) ([]Task, error) {
	cutoff := time.Now().Add(lookahead).UTC()
	query := `SELECT id, user_id, title, due_date FROM tasks
		WHERE completed = 0 AND reminded = 0 AND due_date IS NOT NULL AND due_date <= ?`
	rows, err := s.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var due sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &due); err != nil {
			return nil, err
		}
		if due.Valid {
			d := due.Time
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) MarkReminded(ctx context.Context, taskID string) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE tasks SET reminded = 1 WHERE id = ?`, taskID)
	return err
}

// ---- habits ----

func (s *Store) CreateHabit(ctx context.Context, h Habit) (Habit, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	query := `INSERT INTO habits (id, user_id, name, streak, done_today) VALUES (?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, h.ID, h.UserID, h.Name, h.Streak, boolInt(h.DoneToday))
	return h, err
}

func (s *Store) ListHabits(ctx context.Context, userID string) ([]Habit, error) {
	query := `SELECT id, name, streak, done_today FROM habits WHERE user_id = ? ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		var h Habit
		var done int
		if err := rows.Scan(&h.ID, &h.Name, &h.Streak, &done); err != nil {
			return nil, err
		}
		h.UserID = userID
		h.DoneToday = done != 0
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// ToggleHabit flips today's completion for a habit and adjusts the streak.
func (s *Store) ToggleHabit(ctx context.Context, userID, habitID string) (Habit, error) {
	var h Habit
	var done int
	row := s.DB.QueryRowContext(ctx, `SELECT id, name, streak, done_today FROM habits WHERE user_id = ? AND id = ?`, userID, habitID)
	if err := row.Scan(&h.ID, &h.Name, &h.Streak, &done); err != nil {
		return Habit{}, err
	}
	h.UserID = userID
	h.DoneToday = done == 0
	if h.DoneToday {
		h.Streak++
	} else if h.Streak > 0 {
		h.Streak--
	}
	_, err := s.DB.ExecContext(ctx, `UPDATE habits SET streak = ?, done_today = ? WHERE id = ?`, h.Streak, boolInt(h.DoneToday), h.ID)
	return h, err
}

// ---- courses ----

func (s *Store) CreateCourse(ctx context.Context, c Course) (Course, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `INSERT INTO courses (id, user_id, name, instructor, schedule, next_deadline) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.Instructor, c.Schedule, c.NextDeadline)
	return c, err
}

func (s *Store) ListCourses(ctx context.Context, userID string) ([]Course, error) {
	query := `SELECT id, name, instructor, schedule, next_deadline FROM courses WHERE user_id = ? ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Instructor, &c.Schedule, &c.NextDeadline); err != nil {
			return nil, err
		}
		c.UserID = userID
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ---- materials ----

func (s *Store) AddMaterial(ctx context.Context, m Material) (Material, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	query := `INSERT INTO materials (id, user_id, title, content, subject, type, tags) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, m.ID, m.UserID, m.Title, m.Content, m.Subject, m.Type, strings.Join(m.Tags, ","))
	return m, err
}

func (s *Store) ListMaterials(ctx context.Context, userID string) ([]Material, error) {
	query := `SELECT id, title, content, subject, type, tags FROM materials WHERE user_id = ?`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var materials []Material
	for rows.Next() {
		var m Material
		var tags string
		if err := rows.Scan(&m.ID, &m.Title, &m.Content, &m.Subject, &m.Type, &tags); err != nil {
			return nil, err
		}
		m.UserID = userID
		if tags != "" {
			m.Tags = strings.Split(tags, ",")
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// ---- calendar ----

func (s *Store) CreateEvent(ctx context.Context, e Event) (Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `INSERT INTO events (id, user_id, title, starts_at, duration_minutes) VALUES (?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query, e.ID, e.UserID, e.Title, e.StartsAt.UTC(), e.DurationMinutes)
	return e, err
}

func (s *Store) ListEvents(ctx context.Context, userID string) ([]Event, error) {
	query := `SELECT id, title, starts_at, duration_minutes FROM events WHERE user_id = ? ORDER BY starts_at`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.StartsAt, &e.DurationMinutes); err != nil {
			return nil, err
		}
		e.UserID = userID
		events = append(events, e)
	}
	return events, rows.Err()
}

// ---- stats ----

func (s *Store) GetDailyStats(ctx context.Context, userID, date string) (DailyStats, error) {
	st := DailyStats{UserID: userID, Date: date}
	row := s.DB.QueryRowContext(ctx,
		`SELECT tasks_completed, study_minutes, habits_done FROM daily_stats WHERE user_id = ? AND date = ?`,
		userID, date)
	err := row.Scan(&st.TasksCompleted, &st.StudyMinutes, &st.HabitsDone)
	if err == sql.ErrNoRows {
		// No row yet today is a zero record, not an error.
		return st, nil
	}
	return st, err
}

func (s *Store) RecordStudyMinutes(ctx context.Context, userID, date string, minutes int) error {
	query := `INSERT INTO daily_stats (user_id, date, study_minutes) VALUES (?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET study_minutes = study_minutes + excluded.study_minutes`
	_, err := s.DB.ExecContext(ctx, query, userID, date, minutes)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
