// Package search provides the in-memory relevance search over a user's
// previously loaded study materials.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hrideymarwah15/studyassistant/internal/store"
)

const defaultExcerptWindow = 50

// Scoring weights. Each material scores at most one of title/content/subject,
// plus the exact-title bonus.
const (
	scoreTitle      = 10
	scoreContent    = 5
	scoreTag        = 3
	scoreExactTitle = 20
)

// MaterialStore loads a user's materials for indexing.
type MaterialStore interface {
	ListMaterials(ctx context.Context, userID string) ([]store.Material, error)
}

// Options narrows and bounds a search.
type Options struct {
	Limit int
	Types []string
	Tags  []string
}

// Result is one scored match.
type Result struct {
	Material store.Material
	Score    int
	Excerpt  string
}

// Engine caches each user's materials in memory and scores queries against
// the cache. Caches are keyed by user id and must be invalidated explicitly
// when materials change.
type Engine struct {
	store     MaterialStore
	sanitizer *bluemonday.Policy

	mu    sync.RWMutex
	users map[string][]store.Material
}

func NewEngine(st MaterialStore) *Engine {
	return &Engine{
		store:     st,
		sanitizer: bluemonday.StrictPolicy(),
		users:     make(map[string][]store.Material),
	}
}

// Initialize loads and caches all of a user's materials. Content is stripped
// of any residual HTML before indexing so excerpts are plain text.
func (e *Engine) Initialize(ctx context.Context, userID string) error {
	materials, err := e.store.ListMaterials(ctx, userID)
	if err != nil {
		return err
	}
	for i := range materials {
		materials[i].Content = e.sanitizer.Sanitize(materials[i].Content)
	}

	e.mu.Lock()
	e.users[userID] = materials
	e.mu.Unlock()
	return nil
}

// Invalidate drops a user's cached index.
func (e *Engine) Invalidate(userID string) {
	e.mu.Lock()
	delete(e.users, userID)
	e.mu.Unlock()
}

// Search scores the user's cached materials against the query, loading the
// cache first if needed. Materials scoring zero are excluded; results come
// back sorted by descending score and truncated to opts.Limit.
func (e *Engine) Search(ctx context.Context, userID, query string, opts Options) ([]Result, error) {
	e.mu.RLock()
	materials, ok := e.users[userID]
	e.mu.RUnlock()
	if !ok {
		if err := e.Initialize(ctx, userID); err != nil {
			return nil, err
		}
		e.mu.RLock()
		materials = e.users[userID]
		e.mu.RUnlock()
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var results []Result
	for _, m := range materials {
		if !matchesFilter(m, opts) {
			continue
		}
		score := scoreMaterial(m, q)
		if score == 0 {
			continue
		}
		results = append(results, Result{
			Material: m,
			Score:    score,
			Excerpt:  excerpt(m.Content, q, defaultExcerptWindow),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// matchesFilter applies the types/tags pre-filter before any scoring.
func matchesFilter(m store.Material, opts Options) bool {
	if len(opts.Types) > 0 && !containsFold(opts.Types, m.Type) {
		return false
	}
	if len(opts.Tags) > 0 {
		found := false
		for _, t := range m.Tags {
			if containsFold(opts.Tags, t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func scoreMaterial(m store.Material, q string) int {
	title := strings.ToLower(m.Title)
	score := 0

	if strings.Contains(title, q) {
		score += scoreTitle
	} else if strings.Contains(strings.ToLower(m.Content), q) {
		score += scoreContent
	} else if subjectOrTagMatch(m, q) {
		score += scoreTag
	}

	if title == q {
		score += scoreExactTitle
	}
	return score
}

func subjectOrTagMatch(m store.Material, q string) bool {
	if strings.Contains(strings.ToLower(m.Subject), q) && m.Subject != "" {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// excerpt cuts a symmetric window around the first case-insensitive occurrence
// of the query, with ellipses wherever the window clipped the content. When
// the query never appears in the content the window starts at the beginning.
func excerpt(content, q string, window int) string {
	if content == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(content), q)
	if idx < 0 {
		idx = 0
	}

	start := idx - window
	if start < 0 {
		start = 0
	}
	end := idx + len(q) + window
	if end > len(content) {
		end = len(content)
	}

	out := content[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out = out + "..."
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
