// Package bridge holds the action table: named handlers that perform one unit
// of work against a data collaborator and report back in a uniform shape.
package bridge

import (
	"context"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

// Result is the uniform return shape from every handler and from the executor.
// Failure is data, never a raised error.
type Result struct {
	Success           bool           `json:"success"`
	Message           string         `json:"message"`
	Data              map[string]any `json:"data,omitempty"`
	NextStep          string         `json:"next_step,omitempty"`
	RequiresUserInput bool           `json:"requires_user_input,omitempty"`
	UserInputPrompt   string         `json:"user_input_prompt,omitempty"`
}

func Failure(message string) *Result {
	return &Result{Success: false, Message: message}
}

// CommandContext carries per-request caller state into parsing and execution.
type CommandContext struct {
	UserID          string
	CurrentPage     string
	RecentActions   []string
	UserPreferences map[string]any
	AvailableData   *AvailableData
}

// AvailableData is whatever the caller already has loaded; handlers may use it
// but must not require it.
type AvailableData struct {
	Tasks     []store.Task
	Courses   []store.Course
	Habits    []store.Habit
	Materials []store.Material
}

// Params is the loosely typed parameter bag a handler receives: parsed
// entities for single-step commands, resolved step params for sub-actions.
// Absent keys mean "not provided".
type Params map[string]any

func (p Params) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func (p Params) Time(key string) (time.Time, bool) {
	switch v := p[key].(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	}
	return time.Time{}, false
}

// Handler performs one action. Domain failures come back as a failed Result;
// a non-nil error means the collaborator itself broke and the executor will
// translate it into a generic apology.
type Handler func(ctx context.Context, params Params, cctx *CommandContext) (*Result, error)

// Registry maps public action names to handlers.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

func (r *Registry) Get(name string) Handler {
	return r.handlers[name]
}

func (r *Registry) Has(name string) bool {
	return r.handlers[name] != nil
}
