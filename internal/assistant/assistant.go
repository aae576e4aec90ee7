// Package assistant is the composition root for command handling: it loads
// caller context, parses text into intents, runs them through the executor and
// tracks which conversations are paused waiting for an answer.
package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/hrideymarwah15/studyassistant/internal/bridge"
	"github.com/hrideymarwah15/studyassistant/internal/executor"
	"github.com/hrideymarwah15/studyassistant/internal/nlu"
	"github.com/hrideymarwah15/studyassistant/internal/observability"
	"github.com/hrideymarwah15/studyassistant/internal/store"
)

type Assistant struct {
	Store  *store.Store
	Parser *nlu.Parser
	Exec   *executor.Executor
	Logger *observability.Logger

	mu      sync.Mutex
	pending map[string]string // user id -> command id paused for input
}

func New(st *store.Store, parser *nlu.Parser, exec *executor.Executor, logger *observability.Logger) *Assistant {
	return &Assistant{
		Store:   st,
		Parser:  parser,
		Exec:    exec,
		Logger:  logger,
		pending: make(map[string]string),
	}
}

// Handle is the conversational entrypoint used by gateways: one incoming
// message in, one reply out. If the user's previous command is paused for
// input, the message is treated as the answer; "cancel" abandons it.
func (a *Assistant) Handle(ctx context.Context, userID, text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "I didn't catch that. What would you like to do?"
	}

	observability.SetStatus(observability.PhaseParsing, trimmed)
	defer observability.SetStatus(observability.PhaseIdle, "")

	cctx := a.contextFor(ctx, userID, "")

	if commandID, ok := a.pendingFor(userID); ok {
		if strings.EqualFold(trimmed, "cancel") {
			a.Exec.Cancel(commandID)
			a.clearPending(userID)
			return "Okay, I've cancelled that."
		}
		observability.SetStatus(observability.PhaseExecuting, trimmed)
		res := a.Exec.Resume(ctx, commandID, trimmed, cctx)
		return a.finish(userID, commandID, trimmed, "resume", res)
	}

	parsed := a.Parser.Parse(trimmed, cctx)
	if a.Logger != nil {
		a.Logger.LogParse(userID, parsed.Intent, parsed.Confidence, parsed.MultiStep)
	}

	observability.SetStatus(observability.PhaseExecuting, trimmed)
	res := a.Exec.Execute(ctx, parsed, cctx)

	reply := a.finish(userID, commandIDOf(res), trimmed, parsed.Intent, res)
	if parsed.RequiresConfirmation && res.Success && !res.RequiresUserInput {
		reply += "\n(If that's not what you meant, just rephrase and I'll try again.)"
	}
	return reply
}

// Parse exposes intent classification without executing anything.
func (a *Assistant) Parse(ctx context.Context, userID, text string) nlu.ParsedCommand {
	return a.Parser.Parse(text, a.contextFor(ctx, userID, ""))
}

// Execute runs an already-parsed command.
func (a *Assistant) Execute(ctx context.Context, userID string, parsed nlu.ParsedCommand) *bridge.Result {
	return a.Exec.Execute(ctx, parsed, a.contextFor(ctx, userID, ""))
}

// Resume feeds an answer into a paused multi-step command.
func (a *Assistant) Resume(ctx context.Context, userID, commandID, answer string) *bridge.Result {
	res := a.Exec.Resume(ctx, commandID, answer, a.contextFor(ctx, userID, ""))
	if !res.RequiresUserInput {
		a.clearPending(userID)
	}
	return res
}

// Cancel abandons a paused or running multi-step command.
func (a *Assistant) Cancel(userID, commandID string) bool {
	ok := a.Exec.Cancel(commandID)
	a.clearPending(userID)
	return ok
}

// Suggestions returns commands worth offering the user on their current page.
func (a *Assistant) Suggestions(ctx context.Context, userID, page string) []string {
	return nlu.SuggestedCommands(a.contextFor(ctx, userID, page))
}

// finish records the outcome, updates pause tracking and builds the reply.
func (a *Assistant) finish(userID, commandID, input, intent string, res *bridge.Result) string {
	if res.RequiresUserInput {
		if id := commandIDOf(res); id != "" {
			a.setPending(userID, id)
		}
		observability.SetStatus(observability.PhaseWaiting, input)
	} else {
		a.clearPending(userID)
	}

	if a.Logger != nil {
		a.Logger.LogCommand(userID, commandID, input, intent, res.Success, res.Message)
	}

	reply := res.Message
	if res.RequiresUserInput && res.UserInputPrompt != "" && res.UserInputPrompt != res.Message {
		reply += "\n" + res.UserInputPrompt
	}
	return reply
}

// contextFor snapshots the user's data so handlers and suggestions can work
// from memory. Load failures degrade to an empty context rather than blocking
// the command.
func (a *Assistant) contextFor(ctx context.Context, userID, page string) *bridge.CommandContext {
	cctx := &bridge.CommandContext{
		UserID:      userID,
		CurrentPage: page,
	}
	if a.Store == nil {
		return cctx
	}

	data := &bridge.AvailableData{}
	if tasks, err := a.Store.ListTasks(ctx, userID); err == nil {
		data.Tasks = tasks
	}
	if courses, err := a.Store.ListCourses(ctx, userID); err == nil {
		data.Courses = courses
	}
	if habits, err := a.Store.ListHabits(ctx, userID); err == nil {
		data.Habits = habits
	}
	if materials, err := a.Store.ListMaterials(ctx, userID); err == nil {
		data.Materials = materials
	}
	cctx.AvailableData = data
	return cctx
}

func (a *Assistant) pendingFor(userID string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.pending[userID]
	return id, ok
}

func (a *Assistant) setPending(userID, commandID string) {
	a.mu.Lock()
	a.pending[userID] = commandID
	a.mu.Unlock()
}

func (a *Assistant) clearPending(userID string) {
	a.mu.Lock()
	delete(a.pending, userID)
	a.mu.Unlock()
}

func commandIDOf(res *bridge.Result) string {
	if res == nil || res.Data == nil {
		return ""
	}
	id, _ := res.Data["commandId"].(string)
	return id
}
