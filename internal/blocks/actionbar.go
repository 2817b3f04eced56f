package blocks

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ActionButton is one control in the action bar.
type ActionButton struct {
	Name     string
	Title    string
	Disabled bool
}

// ActionBar renders the buttons pinned to the bottom right of a preview.
func ActionBar(items ...ActionButton) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &writer{w: w}

		hw.raw(`<div class="docblock-actionbar">`)
		for _, item := range items {
			hw.printf(`<button type="button" class="docblock-action" data-action="%s"`, attr(item.Name))
			if item.Disabled {
				hw.raw(` disabled`)
			}
			hw.raw(`>`)
			hw.text(item.Title)
			hw.raw(`</button>`)
		}
		hw.raw(`</div>`)

		return hw.err
	})
}
