package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrideymarwah15/studyassistant/internal/search"
)

// MaterialSearcher is the per-user relevance search over cached materials.
type MaterialSearcher interface {
	Search(ctx context.Context, userID, query string, opts search.Options) ([]search.Result, error)
}

type MaterialBridges struct {
	Searcher MaterialSearcher
}

func (b *MaterialBridges) Register(r *Registry) {
	r.Register("material.search", b.Search)
	r.Register("materials.analyze", b.Analyze)
}

func (b *MaterialBridges) Search(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	query, ok := params.String("query")
	if !ok {
		return Failure("What should I search your materials for?"), nil
	}

	results, err := b.Searcher.Search(ctx, cctx.UserID, query, search.Options{Limit: 5})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Result{
			Success: true,
			Message: fmt.Sprintf("No materials matched \"%s\".", query),
			Data:    map[string]any{"results": results},
		}, nil
	}

	var lines []string
	for _, res := range results {
		line := "• " + res.Material.Title
		if res.Excerpt != "" {
			line += "\n  " + res.Excerpt
		}
		lines = append(lines, line)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Found %d materials for \"%s\":\n%s", len(results), query, strings.Join(lines, "\n")),
		Data:    map[string]any{"results": results, "count": len(results)},
	}, nil
}

// Analyze is the plan.create sub-action that surveys what the user has to
// study from for a subject.
func (b *MaterialBridges) Analyze(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
	subject, ok := params.String("subject")
	if !ok {
		return Failure("I need a subject to analyze materials for."), nil
	}

	results, err := b.Searcher.Search(ctx, cctx.UserID, subject, search.Options{Limit: 10})
	if err != nil {
		return nil, err
	}

	topics := make([]string, 0, len(results))
	for _, res := range results {
		topics = append(topics, res.Material.Title)
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("Found %d materials on %s.", len(results), subject),
		Data: map[string]any{
			"result": map[string]any{
				"materialCount": len(results),
				"topics":        topics,
			},
		},
	}, nil
}
