package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hrideymarwah15/studyassistant/internal/bridge"
	"github.com/hrideymarwah15/studyassistant/internal/governance"
	"github.com/hrideymarwah15/studyassistant/internal/nlu"
)

func newTestExecutor(reg *bridge.Registry) *Executor {
	return New(reg, nil, NewStateStore(), nil)
}

func okHandler(data map[string]any) bridge.Handler {
	return func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		return &bridge.Result{Success: true, Message: "ok", Data: data}, nil
	}
}

func testContext() *bridge.CommandContext {
	return &bridge.CommandContext{UserID: "u1"}
}

func TestExecuteSingleStep(t *testing.T) {
	reg := bridge.NewRegistry()
	var got bridge.Params
	reg.Register("task.list", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		got = params
		return &bridge.Result{Success: true, Message: "2 tasks"}, nil
	})

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:   "task.list",
		Entities: nlu.NoEntities{},
	}, testContext())

	if !res.Success || res.Message != "2 tasks" {
		t.Fatalf("res = %+v", res)
	}
	if got == nil {
		t.Error("handler never received params")
	}
	if e.States.Len() != 0 {
		t.Error("single-step commands should not create execution state")
	}
}

func TestExecuteUnknownIntent(t *testing.T) {
	e := newTestExecutor(bridge.NewRegistry())
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:          nlu.IntentUnknown,
		Entities:        nlu.NoEntities{},
		OriginalCommand: "blorp",
	}, testContext())

	if res.Success {
		t.Fatal("unknown intent should fail")
	}
	if !strings.Contains(res.Message, "blorp") {
		t.Errorf("message should echo the input: %q", res.Message)
	}
}

func TestExecuteUnregisteredAction(t *testing.T) {
	e := newTestExecutor(bridge.NewRegistry())
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:   "task.create",
		Entities: nlu.NoEntities{},
	}, testContext())

	if res.Success {
		t.Fatal("unregistered action should fail gracefully")
	}
}

func TestMultiStepRunWithReferences(t *testing.T) {
	reg := bridge.NewRegistry()
	reg.Register("do.a", okHandler(map[string]any{"result": 7}))

	var bParams bridge.Params
	reg.Register("do.b", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		bParams = params
		return &bridge.Result{Success: true, Message: "done b"}, nil
	})

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:    "x.y",
		Entities:  nlu.NoEntities{},
		MultiStep: true,
		Steps: []nlu.CommandStep{
			{ID: "a", Action: "do.a"},
			{ID: "b", Action: "do.b", DependsOn: []string{"a"}, Params: map[string]any{
				"x":     nlu.StepRef{Step: "a", Field: "result"},
				"fixed": "literal",
			}},
		},
		Completion: "all wrapped up",
	}, testContext())

	if !res.Success {
		t.Fatalf("res = %+v", res)
	}
	if res.Message != "all wrapped up" {
		t.Errorf("message = %q", res.Message)
	}
	if bParams["x"] != 7 {
		t.Errorf("step b got x = %v, want 7 from a.result", bParams["x"])
	}
	if bParams["fixed"] != "literal" {
		t.Errorf("literal param = %v", bParams["fixed"])
	}

	id, _ := res.Data["commandId"].(string)
	st, ok := e.States.Get(id)
	if !ok {
		t.Fatal("state missing after run")
	}
	if st.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", st.Status)
	}
}

func TestDependencyGateStopsRun(t *testing.T) {
	reg := bridge.NewRegistry()
	called := false
	reg.Register("do.b", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		called = true
		return &bridge.Result{Success: true}, nil
	})

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:    "x.y",
		Entities:  nlu.NoEntities{},
		MultiStep: true,
		Steps: []nlu.CommandStep{
			{ID: "b", Action: "do.b", DependsOn: []string{"ghost"}},
		},
	}, testContext())

	if res.Success {
		t.Fatal("run should fail on an unsatisfied dependency")
	}
	if called {
		t.Error("gated step must not run")
	}
}

func TestStepFailureStopsRunWithoutRollback(t *testing.T) {
	reg := bridge.NewRegistry()
	aRan := false
	reg.Register("do.a", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		aRan = true
		return &bridge.Result{Success: true, Data: map[string]any{"result": 1}}, nil
	})
	reg.Register("do.b", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		return bridge.Failure("storage is on fire"), nil
	})
	cRan := false
	reg.Register("do.c", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		cRan = true
		return &bridge.Result{Success: true}, nil
	})

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:    "x.y",
		Entities:  nlu.NoEntities{},
		MultiStep: true,
		Steps: []nlu.CommandStep{
			{ID: "a", Action: "do.a"},
			{ID: "b", Action: "do.b", Description: "middle step"},
			{ID: "c", Action: "do.c"},
		},
	}, testContext())

	if res.Success {
		t.Fatal("run should fail")
	}
	if !strings.Contains(res.Message, "middle step") || !strings.Contains(res.Message, "storage is on fire") {
		t.Errorf("message = %q", res.Message)
	}
	if !aRan {
		t.Error("step a should have run")
	}
	if cRan {
		t.Error("steps after the failure must not run")
	}
}

func TestWaitingAndResume(t *testing.T) {
	reg := bridge.NewRegistry()
	reg.Register("ask", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		return &bridge.Result{
			Success:           true,
			Message:           "pick one",
			RequiresUserInput: true,
			UserInputPrompt:   "Which task?",
		}, nil
	})
	var finishParams bridge.Params
	reg.Register("finish", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		finishParams = params
		return &bridge.Result{Success: true, Message: "finished"}, nil
	})

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:    "x.y",
		Entities:  nlu.NoEntities{},
		MultiStep: true,
		Steps: []nlu.CommandStep{
			{ID: "ask", Action: "ask", RequiresUserInput: true},
			{ID: "finish", Action: "finish", DependsOn: []string{"ask"}, Params: map[string]any{
				"answer": nlu.StepRef{Step: "ask", Field: "result"},
			}},
		},
		Completion: "done",
	}, testContext())

	if !res.RequiresUserInput {
		t.Fatal("run should pause for input")
	}
	if res.UserInputPrompt != "Which task?" {
		t.Errorf("prompt = %q", res.UserInputPrompt)
	}
	if res.NextStep != "finish" {
		t.Errorf("nextStep = %q", res.NextStep)
	}

	id, _ := res.Data["commandId"].(string)
	if id == "" {
		t.Fatal("paused result must carry the command id")
	}
	st, _ := e.States.Get(id)
	if st.Status != StatusWaiting || st.WaitingStep != "ask" {
		t.Fatalf("state = %+v", st)
	}

	resumed := e.Resume(context.Background(), id, "calculus homework", testContext())
	if !resumed.Success || resumed.Message != "done" {
		t.Fatalf("resumed = %+v", resumed)
	}
	if finishParams["answer"] != "calculus homework" {
		t.Errorf("answer = %v, want the user's reply", finishParams["answer"])
	}

	st, _ = e.States.Get(id)
	if st.Status != StatusCompleted {
		t.Errorf("status after resume = %s", st.Status)
	}
}

func TestResumeUnknownCommand(t *testing.T) {
	e := newTestExecutor(bridge.NewRegistry())
	res := e.Resume(context.Background(), "nope", "answer", testContext())
	if res.Success {
		t.Fatal("resuming a missing command should fail")
	}
}

func TestResumeNonWaitingCommand(t *testing.T) {
	e := newTestExecutor(bridge.NewRegistry())
	e.States.Put(&ExecutionState{CommandID: "c1", Status: StatusCompleted})

	res := e.Resume(context.Background(), "c1", "answer", testContext())
	if res.Success {
		t.Fatal("only waiting commands can be resumed")
	}
}

func TestCancel(t *testing.T) {
	e := newTestExecutor(bridge.NewRegistry())
	e.States.Put(&ExecutionState{CommandID: "c1", Status: StatusWaiting, WaitingStep: "ask"})

	if !e.Cancel("c1") {
		t.Fatal("cancel should find the command")
	}
	st, _ := e.States.Get("c1")
	if st.Status != StatusFailed || st.Error != "cancelled by user" {
		t.Errorf("state = %+v", st)
	}

	if e.Cancel("ghost") {
		t.Error("cancelling an unknown command should report false")
	}
}

func TestPanickingBridgeIsContained(t *testing.T) {
	reg := bridge.NewRegistry()
	reg.Register("boom", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		panic("handler bug")
	})

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:   "boom",
		Entities: nlu.NoEntities{},
	}, testContext())

	if res.Success {
		t.Fatal("panic should surface as a failed result")
	}
	if strings.Contains(res.Message, "handler bug") {
		t.Error("panic detail must not leak to the user")
	}
}

func TestBridgeErrorBecomesApology(t *testing.T) {
	reg := bridge.NewRegistry()
	reg.Register("broken", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		return nil, errors.New("sqlite: locked")
	})

	e := newTestExecutor(reg)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:   "broken",
		Entities: nlu.NoEntities{},
	}, testContext())

	if res.Success {
		t.Fatal("collaborator error should fail the result")
	}
	if strings.Contains(res.Message, "sqlite") {
		t.Error("internal error detail must not leak to the user")
	}
}

func TestPolicyDenial(t *testing.T) {
	reg := bridge.NewRegistry()
	called := false
	reg.Register("task.create", func(ctx context.Context, params bridge.Params, cctx *bridge.CommandContext) (*bridge.Result, error) {
		called = true
		return &bridge.Result{Success: true}, nil
	})

	gov := governance.NewDefaultPolicyEngine()
	gov.DenyAction("task.create")

	e := New(reg, gov, NewStateStore(), nil)
	res := e.Execute(context.Background(), nlu.ParsedCommand{
		Intent:   "task.create",
		Entities: nlu.NoEntities{},
	}, testContext())

	if res.Success {
		t.Fatal("denied action should fail")
	}
	if called {
		t.Error("handler must not run when policy denies")
	}
}

func TestResolveParamsIsPure(t *testing.T) {
	params := map[string]any{
		"ref":     nlu.StepRef{Step: "a", Field: "result"},
		"missing": nlu.StepRef{Step: "ghost", Field: "result"},
		"literal": 3,
	}
	results := map[string]map[string]any{
		"a": {"result": "value"},
	}

	first := resolveParams(params, results)
	second := resolveParams(params, results)

	if first["ref"] != "value" || second["ref"] != "value" {
		t.Errorf("ref = %v / %v", first["ref"], second["ref"])
	}
	if _, ok := first["missing"]; ok {
		t.Error("unresolvable refs should be absent, not nil")
	}
	if first["literal"] != 3 {
		t.Errorf("literal = %v", first["literal"])
	}
	// The input map must still hold the unresolved reference.
	if _, ok := params["ref"].(nlu.StepRef); !ok {
		t.Error("resolveParams mutated its input")
	}
}

func TestStateSweep(t *testing.T) {
	s := NewStateStore()
	s.SetTTL(1) // effectively everything is expired

	s.Put(&ExecutionState{CommandID: "old"})
	if n := s.Sweep(); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, ok := s.Get("old"); ok {
		t.Error("expired state should be gone")
	}
}
