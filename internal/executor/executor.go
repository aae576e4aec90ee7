// Package executor drives parsed commands: single-step intents go straight to
// their bridge, multi-step intents walk a dependency-gated step graph with a
// persisted execution state.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hrideymarwah15/studyassistant/internal/bridge"
	"github.com/hrideymarwah15/studyassistant/internal/governance"
	"github.com/hrideymarwah15/studyassistant/internal/nlu"
	"github.com/hrideymarwah15/studyassistant/internal/observability"
)

const genericApology = "Sorry, something went wrong while doing that. Please try again."

type Executor struct {
	Bridges *bridge.Registry
	Policy  governance.PolicyEngine
	States  *StateStore
	Logger  *observability.Logger
}

func New(bridges *bridge.Registry, policy governance.PolicyEngine, states *StateStore, logger *observability.Logger) *Executor {
	return &Executor{
		Bridges: bridges,
		Policy:  policy,
		States:  states,
		Logger:  logger,
	}
}

// Execute runs a parsed command to its first stopping point: completion,
// failure, or a pause for user input. All failure comes back as data; this
// layer never lets an error or panic escape to the caller.
func (e *Executor) Execute(ctx context.Context, parsed nlu.ParsedCommand, cctx *bridge.CommandContext) *bridge.Result {
	if parsed.Intent == nlu.IntentUnknown {
		return bridge.Failure(fmt.Sprintf("I'm not sure what you mean by \"%s\". Try \"help\" to see what I can do.", parsed.OriginalCommand))
	}

	if !parsed.MultiStep {
		if !e.Bridges.Has(parsed.Intent) {
			return bridge.Failure("I don't know how to do that yet.")
		}
		return e.invoke(ctx, parsed.Intent, parsed.Entities.Fields(), cctx)
	}

	st := &ExecutionState{
		CommandID:  uuid.NewString(),
		Intent:     parsed.Intent,
		TotalSteps: len(parsed.Steps),
		Results:    make(map[string]map[string]any),
		Status:     StatusRunning,
		Steps:      parsed.Steps,
		Completion: parsed.Completion,
		Context:    cctx,
		UpdatedAt:  time.Now(),
	}
	e.States.Put(st)
	return e.runFrom(ctx, st, 0)
}

// Resume re-enters a waiting execution with the user's answer, picking up at
// the step after the one that asked.
func (e *Executor) Resume(ctx context.Context, commandID, answer string, cctx *bridge.CommandContext) *bridge.Result {
	st, ok := e.States.Get(commandID)
	if !ok {
		return bridge.Failure("I can't find that command anymore — it may have expired. Let's start over.")
	}
	if st.Status != StatusWaiting {
		return bridge.Failure(fmt.Sprintf("That command isn't waiting for input (status: %s).", st.Status))
	}
	if cctx != nil {
		st.Context = cctx
	}

	data := st.Results[st.WaitingStep]
	if data == nil {
		data = make(map[string]any)
		st.Results[st.WaitingStep] = data
	}
	data["result"] = answer

	st.Status = StatusRunning
	st.WaitingStep = ""
	return e.runFrom(ctx, st, st.CurrentStep+1)
}

// Cancel marks a tracked execution as failed. It is advisory only: an
// in-flight bridge call is not interrupted.
func (e *Executor) Cancel(commandID string) bool {
	st, ok := e.States.Get(commandID)
	if !ok {
		return false
	}
	st.Status = StatusFailed
	st.Error = "cancelled by user"
	st.UpdatedAt = time.Now()
	if e.Logger != nil {
		e.Logger.LogState(commandID, string(StatusFailed), st.Error)
	}
	return true
}

func (e *Executor) runFrom(ctx context.Context, st *ExecutionState, start int) *bridge.Result {
	for i := start; i < len(st.Steps); i++ {
		step := st.Steps[i]
		st.CurrentStep = i
		st.UpdatedAt = time.Now()

		// Dependency gate. Order is fixed at synthesis time; this only stops
		// a step whose inputs never materialized, it never reorders.
		for _, dep := range step.DependsOn {
			if _, ok := st.Results[dep]; !ok {
				st.Error = fmt.Sprintf("step %q depends on %q, which has not completed", step.ID, dep)
				return e.fail(st, fmt.Sprintf("I couldn't finish: %s.", st.Error))
			}
		}

		params := resolveParams(step.Params, st.Results)
		if e.Logger != nil {
			e.Logger.LogStep(st.CommandID, step.ID, step.Action, "started")
		}

		res := e.invoke(ctx, step.Action, params, st.Context)
		if !res.Success {
			st.Error = res.Message
			return e.fail(st, fmt.Sprintf("I got stuck at \"%s\": %s", step.Description, res.Message))
		}

		data := res.Data
		if data == nil {
			data = make(map[string]any)
		}
		st.Results[step.ID] = data
		if e.Logger != nil {
			e.Logger.LogStep(st.CommandID, step.ID, step.Action, "completed")
		}

		if res.RequiresUserInput {
			st.Status = StatusWaiting
			st.WaitingStep = step.ID
			st.UpdatedAt = time.Now()
			if e.Logger != nil {
				e.Logger.LogState(st.CommandID, string(StatusWaiting), "")
			}
			next := ""
			if i+1 < len(st.Steps) {
				next = st.Steps[i+1].ID
			}
			return &bridge.Result{
				Success:           true,
				Message:           res.Message,
				Data:              map[string]any{"commandId": st.CommandID},
				NextStep:          next,
				RequiresUserInput: true,
				UserInputPrompt:   res.UserInputPrompt,
			}
		}
	}

	st.Status = StatusCompleted
	st.UpdatedAt = time.Now()
	if e.Logger != nil {
		e.Logger.LogState(st.CommandID, string(StatusCompleted), "")
	}

	msg := st.Completion
	if msg == "" {
		msg = "All done!"
	}
	return &bridge.Result{
		Success: true,
		Message: msg,
		Data: map[string]any{
			"commandId": st.CommandID,
			"results":   st.Results,
		},
	}
}

func (e *Executor) fail(st *ExecutionState, message string) *bridge.Result {
	st.Status = StatusFailed
	st.UpdatedAt = time.Now()
	if e.Logger != nil {
		e.Logger.LogState(st.CommandID, string(StatusFailed), st.Error)
	}
	// Side effects from steps that already ran stay applied; there is no
	// compensation mechanism.
	return bridge.Failure(message)
}

// invoke runs one bridge behind the policy gate. Panics and errors are
// contained here and come back as failed results.
func (e *Executor) invoke(ctx context.Context, action string, params bridge.Params, cctx *bridge.CommandContext) (res *bridge.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bridge %s panicked: %v", action, r)
			res = bridge.Failure(genericApology)
		}
	}()

	if e.Policy != nil {
		serialized, _ := json.Marshal(params)
		verdict, err := e.Policy.Evaluate(ctx, governance.Request{
			Action: action,
			Params: string(serialized),
			UserID: userOf(cctx),
		})
		if err == nil && verdict.Effect == governance.EffectDeny {
			if e.Logger != nil {
				e.Logger.LogPolicyDenial(userOf(cctx), action, verdict.Reason)
			}
			return bridge.Failure("Sorry, I'm not allowed to do that: " + verdict.Reason)
		}
	}

	h := e.Bridges.Get(action)
	if h == nil {
		return bridge.Failure("I don't know how to do that yet.")
	}

	out, err := h(ctx, params, cctx)
	if err != nil {
		log.Printf("bridge %s failed: %v", action, err)
		if e.Logger != nil {
			e.Logger.LogBridge(userOf(cctx), action, false, err.Error())
		}
		return bridge.Failure(genericApology)
	}
	if out == nil {
		return bridge.Failure(genericApology)
	}
	if e.Logger != nil {
		e.Logger.LogBridge(userOf(cctx), action, out.Success, "")
	}
	return out
}

// resolveParams replaces step references with the referenced steps' outputs.
// It is a pure function of its inputs; unresolvable references are simply
// absent from the result, leaving validation to the receiving bridge.
func resolveParams(params map[string]any, results map[string]map[string]any) bridge.Params {
	resolved := make(bridge.Params, len(params))
	for key, value := range params {
		if ref, ok := value.(nlu.StepRef); ok {
			if v := ref.Resolve(results); v != nil {
				resolved[key] = v
			}
			continue
		}
		resolved[key] = value
	}
	return resolved
}

func userOf(cctx *bridge.CommandContext) string {
	if cctx == nil {
		return ""
	}
	return cctx.UserID
}
