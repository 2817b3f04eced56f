package preview

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Default multipliers used by the toolbar buttons.
const (
	DefaultZoomInStep  = 0.8
	DefaultZoomOutStep = 1.25
)

// Zoom holds the multiplicative scale of a preview. Multipliers are not
// validated: a zero or negative multiplier is applied as given.
type Zoom struct {
	scale float64
}

// NewZoom returns a Zoom at scale 1.
func NewZoom() Zoom {
	return Zoom{scale: 1}
}

// Apply composes multiplier into the current scale.
func (z *Zoom) Apply(multiplier float64) {
	z.scale *= multiplier
}

// Reset sets the scale back to 1.
func (z *Zoom) Reset() {
	z.scale = 1
}

// Scale returns the current scale.
func (z Zoom) Scale() float64 {
	return z.scale
}

type scaleKey struct{}

// WithScale publishes scale to everything rendered with the returned context.
func WithScale(ctx context.Context, scale float64) context.Context {
	return context.WithValue(ctx, scaleKey{}, scale)
}

// ScaleFromContext returns the scale published by the nearest enclosing
// preview, or 1 outside of any preview.
func ScaleFromContext(ctx context.Context) float64 {
	if ctx == nil {
		return 1
	}
	if scale, ok := ctx.Value(scaleKey{}).(float64); ok {
		return scale
	}
	return 1
}

// scoped renders c with scale published on its context.
func scoped(scale float64, c templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return c.Render(WithScale(ctx, scale), w)
	})
}
