// Package blocks renders the visual pieces of a documentation preview:
// the outer container, the children grid, the zoom toolbar, the action bar
// and the source view. Everything here is presentation. The decisions about
// what to show are made by the preview package.
package blocks

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Action names carried on rendered controls as data-action.
const (
	ActionSource  = "source"
	ActionZoomIn  = "zoom-in"
	ActionZoomOut = "zoom-out"
	ActionReset   = "reset"
)

// writer accumulates the first write error so render functions can emit
// markup without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (hw *writer) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *writer) printf(format string, args ...interface{}) {
	if hw.err != nil {
		return
	}
	_, hw.err = fmt.Fprintf(hw.w, format, args...)
}

func (hw *writer) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *writer) component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

func attr(s string) string {
	return templ.EscapeString(s)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
