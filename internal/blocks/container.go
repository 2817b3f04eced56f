package blocks

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ContainerProps configures the outer preview frame.
type ContainerProps struct {
	// ID is written as data-preview-id so the page script can address the
	// instance. Empty for static renders.
	ID        string
	ClassName string
	// WithSource and Expanded square off the bottom corners so the source
	// panel attaches flush.
	WithSource  bool
	Expanded    bool
	WithToolbar bool
}

// ContainerClass returns the class list of the preview frame.
func ContainerClass(className string) string {
	if className != "" {
		return className + " docblock docblock-preview"
	}
	return "docblock docblock-preview"
}

// Container renders the frame around a preview. Any of toolbar, body or
// panel may be nil.
func Container(p ContainerProps, toolbar, body, panel templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &writer{w: w}

		classes := []string{ContainerClass(p.ClassName)}
		if p.WithSource && p.Expanded {
			classes = append(classes, "docblock-preview--expanded")
		}
		if p.WithToolbar {
			classes = append(classes, "docblock-preview--toolbar")
		}

		hw.printf(`<div class="%s"`, attr(strings.Join(classes, " ")))
		if p.ID != "" {
			hw.printf(` data-preview-id="%s"`, attr(p.ID))
		}
		hw.raw(`>`)

		hw.component(ctx, toolbar)
		hw.raw(`<div class="docblock-relative">`)
		hw.component(ctx, body)
		hw.raw(`</div>`)
		hw.component(ctx, panel)

		hw.raw(`</div>`)
		return hw.err
	})
}
