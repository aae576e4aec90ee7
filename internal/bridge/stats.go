package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

type StatsStore interface {
	GetDailyStats(ctx context.Context, userID, date string) (store.DailyStats, error)
}

type StatsBridges struct {
	Store StatsStore
}

func (b *StatsBridges) Register(r *Registry) {
	r.Register("stats.daily", b.Daily)
}

func (b *StatsBridges) Daily(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	today := time.Now().Format("2006-01-02")
	stats, err := b.Store.GetDailyStats(ctx, cctx.UserID, today)
	if err != nil {
		return nil, err
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Today so far: %d tasks completed, %d minutes studied, %d habits done.",
			stats.TasksCompleted, stats.StudyMinutes, stats.HabitsDone),
		Data: map[string]any{"result": stats, "stats": stats},
	}, nil
}
