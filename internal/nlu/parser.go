// Package nlu turns free-text commands into structured intents with extracted
// parameters, using ordered pattern matching. No statistical model is
// involved; matching is deterministic.
package nlu

import (
	"strings"
	"time"

	"github.com/hrideymarwah15/studyassistant/internal/bridge"
)

const (
	// Matches below this confidence are rejected outright.
	acceptThreshold = 0.3
	// Matches below this confidence are surfaced with a confirmation flag.
	confirmThreshold = 0.7

	unknownConfidence = 0.1
)

// IntentUnknown is returned when no pattern matches.
const IntentUnknown = "unknown"

// ParsedCommand is the parser's output. It is immutable once produced.
type ParsedCommand struct {
	Intent               string
	Entities             Entities
	Confidence           float64
	OriginalCommand      string
	RequiresConfirmation bool
	MultiStep            bool
	Steps                []CommandStep
	// Completion is the intent-specific phrasing the executor reports when
	// every step finishes.
	Completion string
}

// CommandStep is one node in a multi-step command's graph. DependsOn only
// gates execution; declaration order is execution order.
type CommandStep struct {
	ID                string
	Action            string
	Params            map[string]any
	Description       string
	DependsOn         []string
	RequiresUserInput bool
}

// StepRef is a deferred reference to a prior step's output, constructed when
// the step templates load. An empty Field refers to the whole output map.
type StepRef struct {
	Step  string
	Field string
}

// Resolve looks the reference up in the accumulated results. It is a pure
// function; unresolvable references yield nil and defer any complaint to the
// receiving bridge.
func (r StepRef) Resolve(results map[string]map[string]any) any {
	data, ok := results[r.Step]
	if !ok {
		return nil
	}
	if r.Field == "" {
		return data
	}
	return data[r.Field]
}

// Parser matches utterances against the intent registry. The zero value is
// not usable; construct with NewParser.
type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// Parse interprets raw text. It never fails: unmatched input comes back as
// the unknown intent with a low confidence and a confirmation flag.
func (p *Parser) Parse(text string, cctx *bridge.CommandContext) ParsedCommand {
	normalized := strings.ToLower(strings.TrimSpace(text))
	now := p.now()

	for _, def := range registry {
		if def.confidence < acceptThreshold {
			continue
		}
		for _, re := range def.patterns {
			m := re.FindStringSubmatch(normalized)
			if m == nil {
				continue
			}

			cmd := ParsedCommand{
				Intent:               def.name,
				Entities:             def.extract(m, now),
				Confidence:           def.confidence,
				OriginalCommand:      text,
				RequiresConfirmation: def.confidence < confirmThreshold,
			}
			if def.multiStep {
				cmd.MultiStep = true
				cmd.Steps, cmd.Completion = synthesizeSteps(def.name, cmd.Entities)
			}
			return cmd
		}
	}

	return ParsedCommand{
		Intent:               IntentUnknown,
		Entities:             NoEntities{},
		Confidence:           unknownConfidence,
		OriginalCommand:      text,
		RequiresConfirmation: true,
	}
}
