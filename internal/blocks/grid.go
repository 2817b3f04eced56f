package blocks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// GridProps configures the children container.
type GridProps struct {
	IsColumn bool
	// Columns is the requested column count; 0 means unset.
	Columns int
	// Keyed wraps each child in a container carrying its index.
	Keyed bool
	// Scale is the current zoom; each child is drawn at 1/Scale. It is
	// written as given, so callers must set it.
	Scale float64
}

// Grid lays children out as a block column or a wrapping flex row.
func Grid(p GridProps, children ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &writer{w: w}

		hw.printf(`<div class="%s" style="%s">`, gridClass(p), gridStyle(p))
		for i, child := range children {
			if p.Keyed {
				hw.printf(`<div class="docblock-story" data-key="%d" style="%s">`, i, childStyle(p))
			} else {
				hw.printf(`<div class="docblock-story" style="%s">`, childStyle(p))
			}
			hw.component(ctx, child)
			hw.raw(`</div>`)
		}
		hw.raw(`</div>`)

		return hw.err
	})
}

func gridClass(p GridProps) string {
	if p.IsColumn {
		return "docblock-children docblock-children--column"
	}
	return "docblock-children docblock-children--row"
}

func gridStyle(p GridProps) string {
	display := "flex"
	if p.IsColumn || p.Columns == 0 {
		display = "block"
	}
	direction := "row"
	if p.IsColumn {
		direction = "column"
	}
	return fmt.Sprintf("display: %s; flex-direction: %s", display, direction)
}

func childStyle(p GridProps) string {
	styles := []string{"zoom: " + formatFloat(1/p.Scale)}
	if p.IsColumn {
		styles = append(styles, "width: 100%", "display: block")
	} else {
		styles = append(styles, "max-width: 100%", "display: inline-block")
	}
	if p.Columns > 1 {
		styles = append(styles, fmt.Sprintf("min-width: calc(100%% / %d - 20px)", p.Columns))
	}
	return strings.Join(styles, "; ")
}
