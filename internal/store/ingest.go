package store

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

const maxMaterialContent = 50000

// IngestHTML extracts the readable text of an HTML document and saves it as a
// study material for the user. The caller supplies the document; no fetching
// happens here.
func (s *Store) IngestHTML(ctx context.Context, userID string, r io.Reader, sourceURL string) (Material, error) {
	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return Material{}, fmt.Errorf("failed to parse source URL: %v", err)
	}

	article, err := readability.FromReader(r, parsedURL)
	if err != nil {
		return Material{}, fmt.Errorf("failed to parse article: %v", err)
	}

	// Sanitize output (remove any remaining HTML tags or scripts)
	p := bluemonday.StrictPolicy()
	content := p.Sanitize(article.TextContent)
	if len(content) > maxMaterialContent {
		content = content[:maxMaterialContent]
	}

	return s.AddMaterial(ctx, Material{
		UserID:  userID,
		Title:   article.Title,
		Content: content,
		Type:    "article",
	})
}
