package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ScheduleEntry is one day of a generated study schedule. It flows between
// the schedule.generate and tasks.createBatch steps.
type ScheduleEntry struct {
	Day     int       `json:"day"`
	Focus   string    `json:"focus"`
	Minutes int       `json:"minutes"`
	Date    time.Time `json:"date"`
}

// Minutes of study budgeted per day when nothing better is known.
const defaultDailyMinutes = 90

// PlanBridges holds the plan.create sub-actions that don't belong to another
// domain.
type PlanBridges struct {
	Tasks TaskStore
}

func (b *PlanBridges) Register(r *Registry) {
	r.Register("progress.check", b.CheckProgress)
	r.Register("time.estimate", b.EstimateTime)
	r.Register("schedule.generate", b.GenerateSchedule)
}

// CheckProgress reports how much related work is already done versus pending.
func (b *PlanBridges) CheckProgress(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	subject, _ := params.String("subject")

	tasks, err := b.Tasks.ListTasks(ctx, cctx.UserID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(subject)
	completed, pending := 0, 0
	for _, t := range tasks {
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("You've completed %d related tasks; %d are still pending.", completed, pending),
		Data: map[string]any{
			"result": map[string]any{"completed": completed, "pending": pending},
		},
	}, nil
}

// EstimateTime budgets study minutes across the available days.
func (b *PlanBridges) EstimateTime(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	days, ok := params.Int("days")
	if !ok || days <= 0 {
		days = 7
	}

	perDay := defaultDailyMinutes
	total := days * perDay
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Plan for about %d minutes a day, %d minutes total.", perDay, total),
		Data: map[string]any{
			"result": map[string]any{"perDayMinutes": perDay, "totalMinutes": total},
		},
	}, nil
}

// GenerateSchedule lays out one entry per day, rotating through the analyzed
// topics when the materials step found any.
func (b *PlanBridges) GenerateSchedule(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	subject, ok := params.String("subject")
	if !ok {
		return Failure("I need a subject to build a schedule for."), nil
	}
	days, ok := params.Int("days")
	if !ok || days <= 0 {
		days = 7
	}

	perDay := defaultDailyMinutes
	if est, ok := params["estimate"].(map[string]any); ok {
		if v, ok := est["perDayMinutes"].(int); ok && v > 0 {
			perDay = v
		}
	}

	var topics []string
	if mats, ok := params["materials"].(map[string]any); ok {
		if ts, ok := mats["topics"].([]string); ok {
			topics = ts
		}
	}

	start := time.Now()
	schedule := make([]ScheduleEntry, 0, days)
	for day := 1; day <= days; day++ {
		focus := subject
		if len(topics) > 0 {
			focus = topics[(day-1)%len(topics)]
		}
		schedule = append(schedule, ScheduleEntry{
			Day:     day,
			Focus:   focus,
			Minutes: perDay,
			Date:    midnight(start).AddDate(0, 0, day),
		})
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Drafted a %d-day schedule for %s.", days, subject),
		Data:    map[string]any{"result": schedule},
	}, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
