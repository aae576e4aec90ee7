package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

type StudyRecorder interface {
	RecordStudyMinutes(ctx context.Context, userID, date string, minutes int) error
}

// FocusBridges covers study sessions and the productivity.start sub-actions.
type FocusBridges struct {
	Events EventStore
	Stats  StudyRecorder
}

func (b *FocusBridges) Register(r *Registry) {
	r.Register("study.start", b.StartStudy)
	r.Register("focus.setup", b.Setup)
	r.Register("timer.start", b.StartTimer)
	r.Register("focus.monitor", b.Monitor)
}

// StartStudy begins a timed study session: a calendar entry for the session
// plus a study-minutes record for today's stats.
func (b *FocusBridges) StartStudy(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	duration, ok := params.Int("duration")
	if !ok || duration <= 0 {
		duration = 25
	}

	title := "Study session"
	if task, ok := params.String("task"); ok {
		title = fmt.Sprintf("Study session: %s", task)
	}

	now := time.Now()
	event, err := b.Events.CreateEvent(ctx, store.Event{
		UserID:          cctx.UserID,
		Title:           title,
		StartsAt:        now,
		DurationMinutes: duration,
	})
	if err != nil {
		return nil, err
	}

	if b.Stats != nil {
		if err := b.Stats.RecordStudyMinutes(ctx, cctx.UserID, now.Format("2006-01-02"), duration); err != nil {
			return nil, err
		}
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("%s started — %d minutes on the clock. Good luck!", title, duration),
		Data:    map[string]any{"result": event.ID, "event": event},
	}, nil
}

func (b *FocusBridges) Setup(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	duration, ok := params.Int("duration")
	if !ok || duration <= 0 {
		duration = 25
	}
	return &Result{
		Success: true,
		Message: "Focus mode is ready. Notifications off, music on.",
		Data:    map[string]any{"result": map[string]any{"mode": "focus", "duration": duration}},
	}, nil
}

// StartTimer starts the session timer for whichever task the user picked in
// the select_task step.
func (b *FocusBridges) StartTimer(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	duration, ok := params.Int("duration")
	if !ok || duration <= 0 {
		duration = 25
	}

	session := Params{"duration": duration}
	if task, ok := params.String("task"); ok {
		session["task"] = task
	}
	return b.StartStudy(ctx, session, cctx)
}

func (b *FocusBridges) Monitor(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	return &Result{
		Success: true,
		Message: "I'll check in when the timer runs out.",
		Data:    map[string]any{"result": "monitoring"},
	}, nil
}
