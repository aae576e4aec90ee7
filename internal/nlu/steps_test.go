package nlu

import (
	"strings"
	"testing"
)

func TestSynthesizePlanSteps(t *testing.T) {
	steps, completion := synthesizeSteps("plan.create", CreatePlanEntities{ExamName: "biology", Days: 5})

	if len(steps) != 5 {
		t.Fatalf("got %d steps, want 5", len(steps))
	}

	if got := steps[0].Params["subject"]; got != "biology" {
		t.Errorf("analyze_materials subject = %v, want biology", got)
	}
	if got := steps[2].Params["days"]; got != 5 {
		t.Errorf("estimate_time days = %v, want 5", got)
	}

	gen := steps[3]
	if len(gen.DependsOn) != 3 {
		t.Errorf("generate_schedule deps = %v, want all three analysis steps", gen.DependsOn)
	}
	if ref, ok := gen.Params["materials"].(StepRef); !ok || ref.Step != "analyze_materials" || ref.Field != "result" {
		t.Errorf("materials param = %#v, want ref to analyze_materials.result", gen.Params["materials"])
	}
	if ref, ok := gen.Params["estimate"].(StepRef); !ok || ref.Step != "estimate_time" {
		t.Errorf("estimate param = %#v", gen.Params["estimate"])
	}

	if ref, ok := steps[4].Params["schedule"].(StepRef); !ok || ref.Step != "generate_schedule" || ref.Field != "result" {
		t.Errorf("schedule param = %#v", steps[4].Params["schedule"])
	}

	if !strings.Contains(completion, "biology") || !strings.Contains(completion, "5 days") {
		t.Errorf("completion = %q", completion)
	}
}

func TestSynthesizeProductivitySteps(t *testing.T) {
	steps, _ := synthesizeSteps("productivity.start", StartProductivityEntities{Duration: 25})

	if len(steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(steps))
	}
	if !steps[1].RequiresUserInput {
		t.Error("select_task should pause for input")
	}
	if ref, ok := steps[2].Params["task"].(StepRef); !ok || ref.Step != "select_task" || ref.Field != "result" {
		t.Errorf("start_timer task param = %#v", steps[2].Params["task"])
	}
	if got := steps[2].Params["duration"]; got != 25 {
		t.Errorf("start_timer duration = %v, want 25", got)
	}
}

func TestSynthesizeUnknownIntent(t *testing.T) {
	steps, completion := synthesizeSteps("task.create", NoEntities{})
	if steps != nil || completion != "" {
		t.Errorf("got (%v, %q), want nothing for a single-step intent", steps, completion)
	}
}

func TestSynthesizeDoesNotMutateTemplate(t *testing.T) {
	synthesizeSteps("plan.create", CreatePlanEntities{ExamName: "history", Days: 3})
	steps, _ := synthesizeSteps("plan.create", CreatePlanEntities{ExamName: "physics", Days: 10})

	if got := steps[0].Params["subject"]; got != "physics" {
		t.Errorf("second synthesis subject = %v; a prior run leaked into the template", got)
	}
	if got := steps[2].Params["days"]; got != 10 {
		t.Errorf("second synthesis days = %v", got)
	}
}

func TestLoadTemplatesValidation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "dangling dependency",
			yaml: `
x.y:
  steps:
    - id: a
      action: do.a
    - id: b
      action: do.b
      depends_on: [c]
`,
			wantErr: "depends on unknown step",
		},
		{
			name: "duplicate step id",
			yaml: `
x.y:
  steps:
    - id: a
      action: do.a
    - id: a
      action: do.b
`,
			wantErr: "duplicate step id",
		},
		{
			name: "forward reference",
			yaml: `
x.y:
  steps:
    - id: a
      action: do.a
      params:
        v: { ref: b.result }
    - id: b
      action: do.b
`,
			wantErr: "references unknown step",
		},
		{
			name: "missing action",
			yaml: `
x.y:
  steps:
    - id: a
`,
			wantErr: "missing id or action",
		},
	}

	for _, c := range cases {
		_, err := loadTemplates([]byte(c.yaml))
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.wantErr) {
			t.Errorf("%s: error = %v, want mention of %q", c.name, err, c.wantErr)
		}
	}
}

func TestEmbeddedTemplatesLoad(t *testing.T) {
	if _, ok := stepTemplates["plan.create"]; !ok {
		t.Error("plan.create template missing")
	}
	if _, ok := stepTemplates["productivity.start"]; !ok {
		t.Error("productivity.start template missing")
	}
}

func TestStepRefResolve(t *testing.T) {
	results := map[string]map[string]any{
		"a": {"result": 42, "extra": "x"},
	}

	if got := (StepRef{Step: "a", Field: "result"}).Resolve(results); got != 42 {
		t.Errorf("resolve a.result = %v, want 42", got)
	}
	if got := (StepRef{Step: "a"}).Resolve(results); got == nil {
		t.Error("whole-output ref should resolve to the data map")
	}
	if got := (StepRef{Step: "missing", Field: "result"}).Resolve(results); got != nil {
		t.Errorf("missing step resolved to %v, want nil", got)
	}
	if got := (StepRef{Step: "a", Field: "nope"}).Resolve(results); got != nil {
		t.Errorf("missing field resolved to %v, want nil", got)
	}
}
