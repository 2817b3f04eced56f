package blocks

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// SourceProps configures the source view.
type SourceProps struct {
	Code     string
	Language string
	// Dark selects the dark palette used under a preview.
	Dark bool
}

// Source renders code in a pre block. An empty Code renders an empty block
// rather than nothing so the panel keeps its place under the preview.
func Source(p SourceProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &writer{w: w}

		classes := []string{"docblock-source"}
		if p.Dark {
			classes = append(classes, "docblock-source--dark")
		}
		hw.printf(`<div class="%s">`, strings.Join(classes, " "))

		hw.raw(`<pre><code`)
		if p.Language != "" {
			hw.printf(` class="language-%s"`, attr(p.Language))
		}
		hw.raw(`>`)
		hw.text(strings.TrimRight(p.Code, "\n"))
		hw.raw(`</code></pre></div>`)

		return hw.err
	})
}
