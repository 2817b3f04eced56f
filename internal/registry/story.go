package registry

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/docblocks/internal/preview"
)

// Story is one renderable example of a component.
type Story struct {
	// ID is the stable identifier, e.g. "button--primary".
	ID string
	// Title is shown in listings; derived from ID when empty.
	Title string
	// Component renders the story.
	Component templ.Component
	// Source is the code shown under the story's previews, if any.
	Source *preview.SourceSpec
	// Description is markdown shown on the story's canvas page.
	Description string
	// FilePath is where the story was loaded from, empty for stories
	// registered in code.
	FilePath string
	LastMod  time.Time
}

// DisplayTitle returns Title, or a title derived from ID:
// "button--primary" becomes "Button / Primary".
func (s *Story) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return TitleFromID(s.ID)
}

// TitleFromID turns a story id into a human title.
func TitleFromID(id string) string {
	caser := cases.Title(language.English)

	parts := strings.Split(id, "--")
	for i, part := range parts {
		part = strings.NewReplacer("-", " ", "_", " ").Replace(part)
		parts[i] = caser.String(strings.TrimSpace(part))
	}
	return strings.Join(parts, " / ")
}

// Node wraps the story's component so a preview can recognise which story it
// shows.
func (s *Story) Node() templ.Component {
	return storyNode{story: s}
}

type storyNode struct {
	story *Story
}

func (n storyNode) Render(ctx context.Context, w io.Writer) error {
	if n.story.Component == nil {
		return nil
	}
	return n.story.Component.Render(ctx, w)
}

func (n storyNode) StoryID() string {
	return n.story.ID
}
