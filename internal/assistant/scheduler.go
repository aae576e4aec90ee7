package assistant

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/executor"
	"github.com/hrideymarwah15/studyassistant/internal/gateway"
	"github.com/hrideymarwah15/studyassistant/internal/observability"
	"github.com/hrideymarwah15/studyassistant/internal/store"
)

// Scheduler polls for tasks coming due and nudges their owners over the
// gateway. It also sweeps expired execution states so abandoned multi-step
// commands don't pile up.
type Scheduler struct {
	Store   *store.Store
	States  *executor.StateStore
	Gateway gateway.Messenger
	Logger  *observability.Logger

	Interval  time.Duration
	Lookahead time.Duration
}

func NewScheduler(st *store.Store, states *executor.StateStore, gw gateway.Messenger, logger *observability.Logger) *Scheduler {
	return &Scheduler{
		Store:     st,
		States:    states,
		Gateway:   gw,
		Logger:    logger,
		Interval:  30 * time.Second,
		Lookahead: time.Hour,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Println("Reminder scheduler started...")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	observability.Heartbeat()
	if s.Logger != nil {
		s.Logger.LogHeartbeat()
	}

	if s.States != nil {
		if n := s.States.Sweep(); n > 0 {
			log.Printf("Swept %d expired command states", n)
		}
	}

	tasks, err := s.Store.DueTasks(ctx, s.Lookahead)
	if err != nil {
		log.Printf("Error polling due tasks: %v", err)
		return
	}

	for _, t := range tasks {
		msg := fmt.Sprintf("⏰ *Reminder*\n\n\"%s\" is due %s.", t.Title, t.DueDate.Format("Mon 15:04"))
		if s.Gateway != nil {
			if err := s.Gateway.Send(t.UserID, msg); err != nil {
				log.Printf("Error sending reminder for task %s: %v", t.ID, err)
				continue
			}
		}
		if err := s.Store.MarkReminded(ctx, t.ID); err != nil {
			log.Printf("Error marking task %s reminded: %v", t.ID, err)
		}
	}
}
