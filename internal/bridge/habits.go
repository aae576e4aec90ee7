package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

type HabitStore interface {
	ListHabits(ctx context.Context, userID string) ([]store.Habit, error)
	ToggleHabit(ctx context.Context, userID, habitID string) (store.Habit, error)
}

type HabitBridges struct {
	Store HabitStore
}

func (b *HabitBridges) Register(r *Registry) {
	r.Register("habit.toggle", b.Toggle)
	r.Register("habit.list", b.List)
}

func (b *HabitBridges) Toggle(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	name, ok := params.String("habitName")
	if !ok {
		return Failure("Which habit do you want to log?"), nil
	}

	habits, err := b.Store.ListHabits(ctx, cctx.UserID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	var habit *store.Habit
	for i := range habits {
		if strings.Contains(strings.ToLower(habits[i].Name), needle) {
			habit = &habits[i]
			break
		}
	}
	if habit == nil {
		return Failure(fmt.Sprintf("I couldn't find a habit matching \"%s\". Could you be more specific?", name)), nil
	}

	updated, err := b.Store.ToggleHabit(ctx, cctx.UserID, habit.ID)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Logged \"%s\" for today. Streak: %d days.", updated.Name, updated.Streak)
	if !updated.DoneToday {
		msg = fmt.Sprintf("Unchecked \"%s\" for today. Streak: %d days.", updated.Name, updated.Streak)
	}
	return &Result{
		Success: true,
		Message: msg,
		Data:    map[string]any{"result": updated.ID, "habit": updated},
	}, nil
}

func (b *HabitBridges) List(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	habits, err := b.Store.ListHabits(ctx, cctx.UserID)
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return &Result{Success: true, Message: "You haven't set up any habits yet.", Data: map[string]any{"habits": habits}}, nil
	}

	var lines []string
	for _, h := range habits {
		check := " "
		if h.DoneToday {
			check = "x"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s (streak %d)", check, h.Name, h.Streak))
	}
	return &Result{
		Success: true,
		Message: "Your habits today:\n" + strings.Join(lines, "\n"),
		Data:    map[string]any{"habits": habits},
	}, nil
}
