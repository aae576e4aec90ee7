package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

func TestCheckProgressFiltersBySubject(t *testing.T) {
	fs := &fakeTaskStore{tasks: []store.Task{
		{ID: "t1", Title: "Biology reading", Completed: true},
		{ID: "t2", Title: "Biology lab writeup"},
		{ID: "t3", Title: "French homework"},
	}}
	b := &PlanBridges{Tasks: fs}

	res, err := b.CheckProgress(context.Background(), Params{"subject": "biology"}, userContext())
	if err != nil {
		t.Fatal(err)
	}

	result, ok := res.Data["result"].(map[string]any)
	if !ok {
		t.Fatalf("result payload = %#v", res.Data["result"])
	}
	if result["completed"] != 1 || result["pending"] != 1 {
		t.Errorf("progress = %v", result)
	}
}

func TestEstimateTime(t *testing.T) {
	b := &PlanBridges{Tasks: &fakeTaskStore{}}

	res, err := b.EstimateTime(context.Background(), Params{"days": 5}, userContext())
	if err != nil {
		t.Fatal(err)
	}

	result := res.Data["result"].(map[string]any)
	if result["perDayMinutes"] != 90 || result["totalMinutes"] != 450 {
		t.Errorf("estimate = %v", result)
	}
}

func TestGenerateScheduleRotatesTopics(t *testing.T) {
	b := &PlanBridges{Tasks: &fakeTaskStore{}}

	res, err := b.GenerateSchedule(context.Background(), Params{
		"subject":   "biology",
		"days":      4,
		"estimate":  map[string]any{"perDayMinutes": 60, "totalMinutes": 240},
		"materials": map[string]any{"topics": []string{"cells", "genetics"}},
	}, userContext())
	if err != nil {
		t.Fatal(err)
	}

	schedule, ok := res.Data["result"].([]ScheduleEntry)
	if !ok {
		t.Fatalf("result payload = %#v", res.Data["result"])
	}
	if len(schedule) != 4 {
		t.Fatalf("got %d entries, want 4", len(schedule))
	}

	if schedule[0].Focus != "cells" || schedule[1].Focus != "genetics" || schedule[2].Focus != "cells" {
		t.Errorf("topic rotation broken: %+v", schedule)
	}
	for i, entry := range schedule {
		if entry.Day != i+1 {
			t.Errorf("entry %d day = %d", i, entry.Day)
		}
		if entry.Minutes != 60 {
			t.Errorf("entry %d minutes = %d, want the estimated 60", i, entry.Minutes)
		}
		if entry.Date.Hour() != 0 || entry.Date.Minute() != 0 {
			t.Errorf("entry %d date should be midnight: %v", i, entry.Date)
		}
	}
	if !schedule[1].Date.After(schedule[0].Date) {
		t.Error("dates should advance day by day")
	}
}

func TestGenerateScheduleDefaults(t *testing.T) {
	b := &PlanBridges{Tasks: &fakeTaskStore{}}

	res, err := b.GenerateSchedule(context.Background(), Params{"subject": "chemistry"}, userContext())
	if err != nil {
		t.Fatal(err)
	}

	schedule := res.Data["result"].([]ScheduleEntry)
	if len(schedule) != 7 {
		t.Errorf("got %d entries, want the 7-day default", len(schedule))
	}
	if schedule[0].Focus != "chemistry" {
		t.Errorf("focus = %q, want the subject when no topics exist", schedule[0].Focus)
	}
	if schedule[0].Minutes != 90 {
		t.Errorf("minutes = %d, want the 90-minute default", schedule[0].Minutes)
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	if schedule[0].Date.Day() != tomorrow.Day() {
		t.Errorf("first entry = %v, want tomorrow", schedule[0].Date)
	}
}

func TestGenerateScheduleNeedsSubject(t *testing.T) {
	b := &PlanBridges{Tasks: &fakeTaskStore{}}

	res, _ := b.GenerateSchedule(context.Background(), Params{"days": 3}, userContext())
	if res.Success {
		t.Error("schedule without a subject should fail")
	}
}

// The schedule generated by one sub-action must be directly consumable by the
// next, the way the executor hands it over.
func TestScheduleFeedsCreateBatch(t *testing.T) {
	fs := &fakeTaskStore{}
	b := &PlanBridges{Tasks: fs}
	tb := &TaskBridges{Store: fs}

	gen, err := b.GenerateSchedule(context.Background(), Params{"subject": "biology", "days": 3}, userContext())
	if err != nil {
		t.Fatal(err)
	}

	res, err := tb.CreateBatch(context.Background(), Params{"schedule": gen.Data["result"]}, userContext())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || len(fs.tasks) != 3 {
		t.Fatalf("res = %+v, stored %d tasks", res, len(fs.tasks))
	}
}
