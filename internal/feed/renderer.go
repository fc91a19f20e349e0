package feed

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/reelwatch/internal/story"
)

// GroupRenderer serializes an ordered story bar to bytes.
type GroupRenderer interface {
	Render(groups []story.Group, currentUserID string) ([]byte, error)
}

// JSONRenderer renders groups as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(groups []story.Group, currentUserID string) ([]byte, error) {
	if groups == nil {
		groups = []story.Group{}
	}
	return json.MarshalIndent(groups, "", "  ")
}

var (
	authorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	unseenStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
)

// TextRenderer renders a human-readable story bar, one author per block.
type TextRenderer struct{}

func (r *TextRenderer) Render(groups []story.Group, currentUserID string) ([]byte, error) {
	var sb strings.Builder

	if len(groups) == 0 || groups[0].AuthorID != currentUserID {
		sb.WriteString(mineStyle.Render("+ Add to your story"))
		sb.WriteString("\n")
	}
	if len(groups) == 0 {
		sb.WriteString(dimStyle.Render("No stories."))
		sb.WriteString("\n")
		return []byte(sb.String()), nil
	}

	for i, g := range groups {
		marker := "  "
		switch {
		case g.AuthorID == currentUserID:
			marker = mineStyle.Render("● ")
		case g.HasUnviewed:
			marker = unseenStyle.Render("● ")
		}
		label := g.AuthorID
		if g.AuthorID == currentUserID {
			label += " (you)"
		}
		fmt.Fprintf(&sb, "%d. %s%s  %s  %s\n",
			i+1,
			marker,
			authorStyle.Render(label),
			dimStyle.Render(fmt.Sprintf("%d stories", len(g.Items))),
			timeStyle.Render(g.MostRecentCreatedAt.Format("2006-01-02 15:04:05")),
		)
		for _, it := range g.Items {
			seen := "new"
			if it.Viewed || g.AuthorID == currentUserID {
				seen = "seen"
			}
			fmt.Fprintf(&sb, "     - %s  %s  %s\n",
				it.ID,
				timeStyle.Render(it.CreatedAt.Format("2006-01-02 15:04:05")),
				dimStyle.Render(seen),
			)
		}
	}
	return []byte(sb.String()), nil
}

// RendererFor picks a renderer by format name. Anything but "json" is text.
func RendererFor(format string) GroupRenderer {
	if strings.EqualFold(format, "json") {
		return &JSONRenderer{}
	}
	return &TextRenderer{}
}
