package store

import "time"

// Task is a single to-do item owned by a user.
type Task struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
}

// Habit is a recurring behavior the user tracks daily.
type Habit struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Streak    int    `json:"streak"`
	DoneToday bool   `json:"done_today"`
}

// Course holds the basic info shown for an enrolled course.
type Course struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Instructor   string `json:"instructor,omitempty"`
	Schedule     string `json:"schedule,omitempty"`
	NextDeadline string `json:"next_deadline,omitempty"`
}

// Material is an uploaded study document (notes, flashcards, articles).
type Material struct {
	ID      string   `json:"id"`
	UserID  string   `json:"user_id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Subject string   `json:"subject,omitempty"`
	Type    string   `json:"type,omitempty"` // note, flashcard, article
	Tags    []string `json:"tags,omitempty"`
}

// Event is a calendar entry.
type Event struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// DailyStats is the aggregate dashboard record for one user and day.
type DailyStats struct {
	UserID         string `json:"user_id"`
	Date           string `json:"date"` // YYYY-MM-DD
	TasksCompleted int    `json:"tasks_completed"`
	StudyMinutes   int    `json:"study_minutes"`
	HabitsDone     int    `json:"habits_done"`
}
