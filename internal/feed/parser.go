// Package feed reads raw story lists, renders aggregated story bars, and
// watches story files for changes.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fakeyudi/reelwatch/internal/story"
)

// ItemParser decodes a raw story list.
type ItemParser interface {
	Parse(data []byte) ([]story.Item, error)
}

// JSONParser accepts either a bare JSON array of stories or an API envelope
// of the form {"stories": [...]}.
type JSONParser struct{}

type envelope struct {
	Stories []story.Item `json:"stories"`
}

func (p *JSONParser) Parse(data []byte) ([]story.Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to parse stories: empty input")
	}

	var items []story.Item
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to parse stories: %w", err)
		}
		items = env.Stories
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("failed to parse stories: %w", err)
	}

	for i, it := range items {
		if it.ID == "" || it.AuthorID == "" {
			return nil, fmt.Errorf("failed to parse stories: item %d is missing id or authorId", i)
		}
	}
	return items, nil
}
