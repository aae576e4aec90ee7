package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

type TaskStore interface {
	CreateTask(ctx context.Context, t store.Task) (store.Task, error)
	ListTasks(ctx context.Context, userID string) ([]store.Task, error)
	CompleteTask(ctx context.Context, userID, taskID string) error
}

// TaskBridges covers task CRUD plus the task sub-actions used by multi-step
// commands.
type TaskBridges struct {
	Store TaskStore
}

func (b *TaskBridges) Register(r *Registry) {
	r.Register("task.create", b.Create)
	r.Register("task.complete", b.Complete)
	r.Register("task.list", b.List)
	r.Register("tasks.createBatch", b.CreateBatch)
	r.Register("tasks.suggestNext", b.SuggestNext)
}

func (b *TaskBridges) Create(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	title, ok := params.String("title")
	if !ok {
		return Failure("I need a title for the task. Try something like \"remind me to submit essay tomorrow\"."), nil
	}

	task := store.Task{UserID: cctx.UserID, Title: title}
	if due, ok := params.Time("dueDate"); ok {
		task.DueDate = &due
	}

	created, err := b.Store.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Added task: %s", created.Title)
	if created.DueDate != nil {
		msg += fmt.Sprintf(" (due %s)", formatDue(created.DueDate))
	}
	return &Result{
		Success: true,
		Message: msg,
		Data:    map[string]any{"result": created.ID, "task": created},
	}, nil
}

func (b *TaskBridges) Complete(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	name, ok := params.String("taskName")
	if !ok {
		return Failure("Which task did you finish? Tell me its name."), nil
	}

	tasks, err := b.Store.ListTasks(ctx, cctx.UserID)
	if err != nil {
		return nil, err
	}

	task := findTask(tasks, name)
	if task == nil {
		return Failure(fmt.Sprintf("I couldn't find a task matching \"%s\". Could you be more specific?", name)), nil
	}

	if err := b.Store.CompleteTask(ctx, cctx.UserID, task.ID); err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Nice work! Marked \"%s\" as done.", task.Title),
		Data:    map[string]any{"result": task.ID},
	}, nil
}

func (b *TaskBridges) List(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	tasks, err := b.Store.ListTasks(ctx, cctx.UserID)
	if err != nil {
		return nil, err
	}

	var pending []store.Task
	for _, t := range tasks {
		if !t.Completed {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return &Result{Success: true, Message: "You're all caught up! No pending tasks.", Data: map[string]any{"tasks": pending}}, nil
	}

	var lines []string
	for _, t := range pending {
		line := "• " + t.Title
		if t.DueDate != nil {
			line += fmt.Sprintf(" (due %s)", formatDue(t.DueDate))
		}
		lines = append(lines, line)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("You have %d pending tasks:\n%s", len(pending), strings.Join(lines, "\n")),
		Data:    map[string]any{"tasks": pending, "count": len(pending)},
	}, nil
}

// CreateBatch turns a generated schedule into one task per day. The schedule
// arrives via a template reference to the schedule.generate step; if it never
// resolved there is nothing to create.
func (b *TaskBridges) CreateBatch(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	schedule, ok := params["schedule"].([]ScheduleEntry)
	if !ok || len(schedule) == 0 {
		return Failure("There's no schedule to create tasks from."), nil
	}

	created := 0
	for _, entry := range schedule {
		due := entry.Date
		_, err := b.Store.CreateTask(ctx, store.Task{
			UserID:  cctx.UserID,
			Title:   fmt.Sprintf("Study %s (day %d)", entry.Focus, entry.Day),
			DueDate: &due,
		})
		if err != nil {
			return nil, err
		}
		created++
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Created %d study tasks from your schedule.", created),
		Data:    map[string]any{"result": created},
	}, nil
}

// SuggestNext asks the user to pick the task to focus on. It always pauses
// the run for input.
func (b *TaskBridges) SuggestNext(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	tasks, err := b.Store.ListTasks(ctx, cctx.UserID)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, t := range tasks {
		if !t.Completed {
			candidates = append(candidates, t.Title)
		}
		if len(candidates) == 5 {
			break
		}
	}

	prompt := "Which task do you want to focus on?"
	if len(candidates) > 0 {
		prompt += "\n• " + strings.Join(candidates, "\n• ")
	}
	return &Result{
		Success:           true,
		Message:           "Let's pick something to work on.",
		Data:              map[string]any{"candidates": candidates},
		RequiresUserInput: true,
		UserInputPrompt:   prompt,
	}, nil
}

// findTask does a case-insensitive substring match over task titles. The
// first match in store order wins.
func findTask(tasks []store.Task, name string) *store.Task {
	needle := strings.ToLower(name)
	for i := range tasks {
		if strings.Contains(strings.ToLower(tasks[i].Title), needle) {
			return &tasks[i]
		}
	}
	return nil
}

func formatDue(t *time.Time) string {
	if t == nil {
		return "no due date"
	}
	return t.Format("Mon, Jan 2")
}
