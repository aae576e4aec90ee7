package nlu

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// entityRef marks a template param that binds to a parsed entity at
// synthesis time.
type entityRef struct {
	field string
}

type stepTemplate struct {
	ID                string
	Action            string
	Description       string
	DependsOn         []string
	RequiresUserInput bool
	Params            map[string]any // literal | entityRef | StepRef
}

type commandTemplate struct {
	Completion string
	Steps      []stepTemplate
}

// stepTemplates is the fixed multi-step allow-list, keyed by public intent
// name. Adding a multi-step intent means adding both a registry pattern and a
// template here.
var stepTemplates = mustLoadTemplates(templatesYAML)

type rawStep struct {
	ID                string         `yaml:"id"`
	Action            string         `yaml:"action"`
	Description       string         `yaml:"description"`
	DependsOn         []string       `yaml:"depends_on"`
	RequiresUserInput bool           `yaml:"requires_user_input"`
	Params            map[string]any `yaml:"params"`
}

type rawTemplate struct {
	Completion string    `yaml:"completion"`
	Steps      []rawStep `yaml:"steps"`
}

func mustLoadTemplates(data []byte) map[string]commandTemplate {
	templates, err := loadTemplates(data)
	if err != nil {
		panic(fmt.Sprintf("nlu: bad embedded step templates: %v", err))
	}
	return templates
}

func loadTemplates(data []byte) (map[string]commandTemplate, error) {
	var raw map[string]rawTemplate
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	templates := make(map[string]commandTemplate, len(raw))
	for intent, rt := range raw {
		tpl := commandTemplate{Completion: rt.Completion}
		seen := map[string]bool{}
		for _, rs := range rt.Steps {
			if rs.ID == "" || rs.Action == "" {
				return nil, fmt.Errorf("%s: step missing id or action", intent)
			}
			if seen[rs.ID] {
				return nil, fmt.Errorf("%s: duplicate step id %q", intent, rs.ID)
			}
			// Dependencies and references must name steps declared earlier;
			// a dangling id here would silently fail every run.
			for _, dep := range rs.DependsOn {
				if !seen[dep] {
					return nil, fmt.Errorf("%s: step %q depends on unknown step %q", intent, rs.ID, dep)
				}
			}
			params, err := convertParams(intent, rs.ID, rs.Params, seen)
			if err != nil {
				return nil, err
			}
			tpl.Steps = append(tpl.Steps, stepTemplate{
				ID:                rs.ID,
				Action:            rs.Action,
				Description:       rs.Description,
				DependsOn:         rs.DependsOn,
				RequiresUserInput: rs.RequiresUserInput,
				Params:            params,
			})
			seen[rs.ID] = true
		}
		templates[intent] = tpl
	}
	return templates, nil
}

func convertParams(intent, stepID string, raw map[string]any, declared map[string]bool) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(raw))
	for key, value := range raw {
		marker, ok := value.(map[string]any)
		if !ok || len(marker) != 1 {
			params[key] = value
			continue
		}
		if name, ok := marker["entity"].(string); ok {
			params[key] = entityRef{field: name}
			continue
		}
		if target, ok := marker["ref"].(string); ok {
			ref := StepRef{Step: target}
			if i := strings.Index(target, "."); i >= 0 {
				ref = StepRef{Step: target[:i], Field: target[i+1:]}
			}
			if !declared[ref.Step] {
				return nil, fmt.Errorf("%s: step %q references unknown step %q", intent, stepID, ref.Step)
			}
			params[key] = ref
			continue
		}
		params[key] = value
	}
	return params, nil
}

// synthesizeSteps binds an intent's step template to the parsed entities,
// producing the concrete step graph and completion message.
func synthesizeSteps(intent string, ents Entities) ([]CommandStep, string) {
	tpl, ok := stepTemplates[intent]
	if !ok {
		return nil, ""
	}

	fields := ents.Fields()
	steps := make([]CommandStep, 0, len(tpl.Steps))
	for _, st := range tpl.Steps {
		var params map[string]any
		if len(st.Params) > 0 {
			params = make(map[string]any, len(st.Params))
			for key, value := range st.Params {
				if er, ok := value.(entityRef); ok {
					if v, ok := fields[er.field]; ok {
						params[key] = v
					}
					continue
				}
				params[key] = value
			}
		}
		steps = append(steps, CommandStep{
			ID:                st.ID,
			Action:            st.Action,
			Params:            params,
			Description:       st.Description,
			DependsOn:         st.DependsOn,
			RequiresUserInput: st.RequiresUserInput,
		})
	}

	completion := tpl.Completion
	for key, value := range fields {
		completion = strings.ReplaceAll(completion, "{"+key+"}", fmt.Sprintf("%v", value))
	}
	return steps, completion
}
