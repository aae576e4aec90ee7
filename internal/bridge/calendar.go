package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

type EventStore interface {
	CreateEvent(ctx context.Context, e store.Event) (store.Event, error)
}

type CalendarBridges struct {
	Store EventStore
}

func (b *CalendarBridges) Register(r *Registry) {
	r.Register("calendar.add", b.Add)
}

func (b *CalendarBridges) Add(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	title, ok := params.String("title")
	if !ok {
		return Failure("What should I call the event?"), nil
	}

	// Events without a stated date land on tomorrow morning.
	startsAt, ok := params.Time("date")
	if !ok {
		now := time.Now()
		startsAt = time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	}

	duration := 60
	if d, ok := params.Int("duration"); ok {
		duration = d
	}

	event, err := b.Store.CreateEvent(ctx, store.Event{
		UserID:          cctx.UserID,
		Title:           title,
		StartsAt:        startsAt,
		DurationMinutes: duration,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Scheduled \"%s\" for %s.", event.Title, event.StartsAt.Format("Mon, Jan 2 at 3:04 PM")),
		Data:    map[string]any{"result": event.ID, "event": event},
	}, nil
}
