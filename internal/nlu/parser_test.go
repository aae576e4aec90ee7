package nlu

import (
	"strings"
	"testing"
	"time"
)

func fixedParser() *Parser {
	return &Parser{now: func() time.Time { return testNow }}
}

func TestParseCreateTaskWithDueDate(t *testing.T) {
	cmd := fixedParser().Parse("Remind me to submit essay tomorrow", nil)

	if cmd.Intent != "task.create" {
		t.Fatalf("intent = %q, want task.create", cmd.Intent)
	}
	if cmd.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", cmd.Confidence)
	}
	if cmd.RequiresConfirmation {
		t.Error("typical confidence should not require confirmation")
	}
	if cmd.MultiStep {
		t.Error("task.create is single-step")
	}

	ents, ok := cmd.Entities.(CreateTaskEntities)
	if !ok {
		t.Fatalf("entities type = %T", cmd.Entities)
	}
	if ents.Title != "submit essay" {
		t.Errorf("title = %q, want %q", ents.Title, "submit essay")
	}
	want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if ents.DueDate == nil || !ents.DueDate.Equal(want) {
		t.Errorf("dueDate = %v, want %v", ents.DueDate, want)
	}
}

func TestParseStudySession(t *testing.T) {
	cmd := fixedParser().Parse("start a study session for calculus for 45 minutes", nil)

	if cmd.Intent != "study.start" {
		t.Fatalf("intent = %q, want study.start", cmd.Intent)
	}
	ents := cmd.Entities.(StartStudyEntities)
	if ents.Task != "calculus" {
		t.Errorf("task = %q, want calculus", ents.Task)
	}
	if ents.Duration != 45 {
		t.Errorf("duration = %d, want 45", ents.Duration)
	}
}

func TestParseStudySessionDurationOnly(t *testing.T) {
	// The duration lands in the task slot here; it must not become the task.
	cmd := fixedParser().Parse("start a study session for 45 minutes", nil)

	ents := cmd.Entities.(StartStudyEntities)
	if ents.Task != "" {
		t.Errorf("task = %q, want empty", ents.Task)
	}
	if ents.Duration != 45 {
		t.Errorf("duration = %d, want 45", ents.Duration)
	}
}

func TestParseStudyDefaultDuration(t *testing.T) {
	cmd := fixedParser().Parse("study linear algebra", nil)

	ents := cmd.Entities.(StartStudyEntities)
	if ents.Task != "linear algebra" {
		t.Errorf("task = %q", ents.Task)
	}
	if ents.Duration != 25 {
		t.Errorf("duration = %d, want the 25-minute default", ents.Duration)
	}
}

func TestParseCreatePlanMultiStep(t *testing.T) {
	cmd := fixedParser().Parse("create a study plan for exam biology in 5 days", nil)

	if cmd.Intent != "plan.create" {
		t.Fatalf("intent = %q, want plan.create", cmd.Intent)
	}
	if cmd.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", cmd.Confidence)
	}
	if !cmd.MultiStep {
		t.Fatal("plan.create should be multi-step")
	}

	ents := cmd.Entities.(CreatePlanEntities)
	if ents.ExamName != "biology" || ents.Days != 5 {
		t.Errorf("entities = %+v", ents)
	}

	wantIDs := []string{"analyze_materials", "check_completion", "estimate_time", "generate_schedule", "create_tasks"}
	if len(cmd.Steps) != len(wantIDs) {
		t.Fatalf("got %d steps, want %d", len(cmd.Steps), len(wantIDs))
	}
	for i, id := range wantIDs {
		if cmd.Steps[i].ID != id {
			t.Errorf("step %d = %q, want %q", i, cmd.Steps[i].ID, id)
		}
	}
	if !strings.Contains(cmd.Completion, "biology") || !strings.Contains(cmd.Completion, "5 days") {
		t.Errorf("completion = %q", cmd.Completion)
	}
}

func TestParseCreatePlanDefaultDays(t *testing.T) {
	cmd := fixedParser().Parse("make a study plan for chemistry", nil)

	ents := cmd.Entities.(CreatePlanEntities)
	if ents.ExamName != "chemistry" {
		t.Errorf("examName = %q", ents.ExamName)
	}
	if ents.Days != 7 {
		t.Errorf("days = %d, want the 7-day default", ents.Days)
	}
}

func TestParseProductivityMultiStep(t *testing.T) {
	cmd := fixedParser().Parse("start a focus session", nil)

	if cmd.Intent != "productivity.start" {
		t.Fatalf("intent = %q, want productivity.start", cmd.Intent)
	}
	if !cmd.MultiStep || len(cmd.Steps) != 4 {
		t.Fatalf("got %d steps, want 4 multi-step", len(cmd.Steps))
	}
	if cmd.Steps[1].ID != "select_task" || !cmd.Steps[1].RequiresUserInput {
		t.Errorf("step 2 = %+v, want select_task pausing for input", cmd.Steps[1])
	}
}

func TestParseAmbiguousInputIsDeterministic(t *testing.T) {
	// Matches both the task.complete and habit.toggle patterns; the earlier
	// registry entry must win every time.
	p := fixedParser()
	for i := 0; i < 50; i++ {
		cmd := p.Parse("mark yoga habit as done", nil)
		if cmd.Intent != "task.complete" {
			t.Fatalf("iteration %d: intent = %q, want task.complete", i, cmd.Intent)
		}
		if name := cmd.Entities.(CompleteTaskEntities).TaskName; name != "yoga habit" {
			t.Fatalf("iteration %d: taskName = %q", i, name)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	cmd := fixedParser().Parse("blorp fizzle quux", nil)

	if cmd.Intent != IntentUnknown {
		t.Fatalf("intent = %q, want unknown", cmd.Intent)
	}
	if cmd.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", cmd.Confidence)
	}
	if !cmd.RequiresConfirmation {
		t.Error("unknown should carry the confirmation flag")
	}
	if cmd.OriginalCommand != "blorp fizzle quux" {
		t.Errorf("original = %q", cmd.OriginalCommand)
	}
}

func TestParseHelpIsLowConfidence(t *testing.T) {
	cmd := fixedParser().Parse("what can you do", nil)

	if cmd.Intent != "assistant.help" {
		t.Fatalf("intent = %q, want assistant.help", cmd.Intent)
	}
	if cmd.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", cmd.Confidence)
	}
	if !cmd.RequiresConfirmation {
		t.Error("fallback confidence should require confirmation")
	}
}

func TestParseListVariants(t *testing.T) {
	cases := map[string]string{
		"show my tasks":         "task.list",
		"what's due today?":     "task.list",
		"list my habits":        "habit.list",
		"how am i doing today?": "stats.daily",
		"search my notes for mitosis":       "material.search",
		"tell me about my physics class":    "course.info",
		"schedule a meeting: advisor check": "calendar.add",
	}

	p := fixedParser()
	for input, want := range cases {
		if cmd := p.Parse(input, nil); cmd.Intent != want {
			t.Errorf("Parse(%q) = %q, want %q", input, cmd.Intent, want)
		}
	}
}
