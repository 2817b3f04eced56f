package blocks

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// DefaultCanvasURL is where the "open canvas" link points when no base URL
// is configured.
const DefaultCanvasURL = "./iframe.html"

// ToolbarProps configures the zoom toolbar.
type ToolbarProps struct {
	Border bool
	// StoryID scopes the canvas link. Empty means no link.
	StoryID string
	BaseURL string
}

// CanvasURL builds the link to the standalone canvas of one story.
func CanvasURL(baseURL, storyID string) string {
	if baseURL == "" {
		baseURL = DefaultCanvasURL
	}
	return baseURL + "?id=" + url.QueryEscape(storyID)
}

// Toolbar renders the zoom buttons and, when a story id is known, a link to
// that story's canvas.
func Toolbar(p ToolbarProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &writer{w: w}

		class := "docblock-toolbar"
		if p.Border {
			class += " docblock-toolbar--border"
		}
		hw.printf(`<div class="%s">`, class)

		hw.raw(`<div class="docblock-toolbar-left">`)
		toolbarButton(hw, ActionZoomIn, "Zoom in", "+")
		toolbarButton(hw, ActionZoomOut, "Zoom out", "&minus;")
		toolbarButton(hw, ActionReset, "Reset zoom", "&#8634;")
		hw.raw(`</div>`)

		if p.StoryID != "" {
			hw.printf(
				`<div class="docblock-toolbar-right"><a class="docblock-canvas-link" href="%s" target="_blank" rel="noopener noreferrer" title="Open canvas in new tab">&#8599;</a></div>`,
				attr(CanvasURL(p.BaseURL, p.StoryID)),
			)
		}

		hw.raw(`</div>`)
		return hw.err
	})
}

func toolbarButton(hw *writer, action, title, label string) {
	hw.printf(
		`<button type="button" class="docblock-toolbar-button" data-action="%s" title="%s">%s</button>`,
		attr(action), attr(title), label,
	)
}
