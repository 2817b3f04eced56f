// Package preview implements the preview block: a frame showing one or
// more stories side by side with an optional zoom toolbar and a collapsible
// source panel.
//
// A Preview owns two pieces of state, whether the source panel is expanded
// and the zoom scale. Both change only through messages passed to Update,
// either directly or through the closures handed out in a Decision. Every
// render derives its decisions from the current state; nothing is re-read
// from Config after construction except the layout options.
//
// The zoom scale is published on the render context, so any story rendered
// inside a preview can read it with ScaleFromContext.
//
// A Preview is not safe for concurrent use. Hosts that receive events from
// several goroutines must serialize them (see internal/session).
package preview

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/docblocks/internal/blocks"
	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/logging"
)

// Config is the construction-time input of a preview.
type Config struct {
	IsColumn bool
	// Columns is the requested column count; 0 leaves it unset.
	Columns int
	// WithSource enables the source control and panel. Nil disables both.
	WithSource  *SourceSpec
	WithToolbar bool
	// IsExpanded seeds the panel state and is not consulted afterwards.
	IsExpanded bool
	ClassName  string
	Children   Children
}

// Msg is a state transition request.
type Msg interface {
	isMsg()
}

// ToggleSource sets the expansion state of the source panel.
type ToggleSource struct {
	Expanded bool
}

// ZoomBy multiplies the current scale.
type ZoomBy struct {
	Multiplier float64
}

// ResetZoom sets the scale back to 1.
type ResetZoom struct{}

func (ToggleSource) isMsg() {}
func (ZoomBy) isMsg()       {}
func (ResetZoom) isMsg()    {}

// Observer is notified about preview activity. The metrics package provides
// the production implementation.
type Observer interface {
	ToolbarSuppressed()
	Dispatched(msg Msg)
}

// Option configures a Preview.
type Option func(*Preview)

// WithID sets the instance id written into the rendered markup.
func WithID(id string) Option {
	return func(p *Preview) { p.id = id }
}

// WithLogger sets the logger that receives diagnostics.
func WithLogger(logger logging.Logger) Option {
	return func(p *Preview) {
		if logger != nil {
			p.logger = logger.WithComponent("preview")
		}
	}
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(p *Preview) { p.observer = o }
}

// WithCanvasURL sets the base URL of the toolbar's canvas link.
func WithCanvasURL(url string) Option {
	return func(p *Preview) {
		if url != "" {
			p.canvasURL = url
		}
	}
}

// WithZoomSteps overrides the multipliers applied by the zoom-in and
// zoom-out buttons.
func WithZoomSteps(in, out float64) Option {
	return func(p *Preview) {
		p.zoomIn = in
		p.zoomOut = out
	}
}

// Preview is one live preview block.
type Preview struct {
	id        string
	cfg       Config
	expanded  bool
	zoom      Zoom
	zoomIn    float64
	zoomOut   float64
	canvasURL string
	logger    logging.Logger
	observer  Observer
}

// New creates a preview from cfg.
func New(cfg Config, opts ...Option) *Preview {
	if cfg.Columns < 0 {
		cfg.Columns = 0
	}

	p := &Preview{
		cfg:       cfg,
		zoom:      NewZoom(),
		zoomIn:    DefaultZoomInStep,
		zoomOut:   DefaultZoomOutStep,
		canvasURL: blocks.DefaultCanvasURL,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.expanded = cfg.IsExpanded && !p.sourceUnavailable()

	return p
}

// ID returns the instance id, empty if none was set.
func (p *Preview) ID() string { return p.id }

// Expanded reports whether the source panel is open.
func (p *Preview) Expanded() bool { return p.expanded }

// Scale returns the current zoom scale.
func (p *Preview) Scale() float64 { return p.zoom.Scale() }

// Config returns the construction-time configuration.
func (p *Preview) Config() Config { return p.cfg }

func (p *Preview) sourceUnavailable() bool {
	return p.cfg.WithSource != nil && p.cfg.WithSource.Error != ""
}

// Update applies msg to the preview state.
func (p *Preview) Update(msg Msg) {
	switch m := msg.(type) {
	case ToggleSource:
		p.expanded = m.Expanded && !p.sourceUnavailable()
	case ZoomBy:
		p.zoom.Apply(m.Multiplier)
	case ResetZoom:
		p.zoom.Reset()
	default:
		return
	}

	if p.observer != nil {
		p.observer.Dispatched(msg)
	}
}

// ToolbarBinding wires the toolbar to one preview.
type ToolbarBinding struct {
	// StoryID is empty when the children do not name a single story.
	StoryID string
	Zoom    func(multiplier float64)
	Reset   func()
}

// Decision is everything a render pass needs to know about the preview.
type Decision struct {
	// Toolbar is nil when the toolbar is not shown.
	Toolbar *ToolbarBinding
	// Source is nil when the preview has no source attached.
	Source   *SourceItem
	Children Children
	Scale    float64
}

// Decide derives the render decisions from the current state. It runs the
// toolbar check, so a suppressed toolbar is reported once per call.
func (p *Preview) Decide(ctx context.Context) Decision {
	return p.decide(ctx, true)
}

func (p *Preview) decide(ctx context.Context, diagnose bool) Decision {
	var logger logging.Logger
	if diagnose {
		logger = p.logger
	}

	d := Decision{
		Children: p.cfg.Children,
		Scale:    p.zoom.Scale(),
	}

	if ShouldShowToolbar(ctx, logger, p.cfg.WithToolbar, p.cfg.Children) {
		storyID, _ := StoryID(p.cfg.Children)
		d.Toolbar = &ToolbarBinding{
			StoryID: storyID,
			Zoom:    func(m float64) { p.Update(ZoomBy{Multiplier: m}) },
			Reset:   func() { p.Update(ResetZoom{}) },
		}
	} else if diagnose && p.cfg.WithToolbar && p.observer != nil {
		p.observer.ToolbarSuppressed()
	}

	if p.cfg.WithSource != nil {
		item := SourcePanel(p.cfg.WithSource, p.expanded, func(v bool) {
			p.Update(ToggleSource{Expanded: v})
		})
		d.Source = &item
	}

	return d
}

// Activate performs the named control's action, as if the user had clicked
// it. Controls that are not part of the current render yield a not-found
// error; unknown names yield a validation error.
func (p *Preview) Activate(ctx context.Context, action string) error {
	d := p.decide(ctx, false)

	switch action {
	case ActionSource:
		if d.Source == nil {
			return errors.NewNotFoundError(errors.ErrCodeUnknownAction, "preview has no source control")
		}
		d.Source.Action.OnActivate()
	case ActionZoomIn, ActionZoomOut, ActionReset:
		if d.Toolbar == nil {
			return errors.NewNotFoundError(errors.ErrCodeUnknownAction, "preview has no toolbar")
		}
		switch action {
		case ActionZoomIn:
			d.Toolbar.Zoom(p.zoomIn)
		case ActionZoomOut:
			d.Toolbar.Zoom(p.zoomOut)
		default:
			d.Toolbar.Reset()
		}
	default:
		return errors.NewValidationError(errors.ErrCodeUnknownAction, "unknown preview action").
			WithContext("action", action)
	}

	return nil
}

// Component returns the templ component that renders the preview. Each
// Render call is one render pass over the current state.
func (p *Preview) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		d := p.Decide(ctx)

		var toolbar templ.Component
		if d.Toolbar != nil {
			toolbar = blocks.Toolbar(blocks.ToolbarProps{
				Border:  true,
				StoryID: d.Toolbar.StoryID,
				BaseURL: p.canvasURL,
			})
		}

		grid := blocks.Grid(blocks.GridProps{
			IsColumn: p.cfg.IsColumn,
			Columns:  p.cfg.Columns,
			Keyed:    d.Children.Kind() == Many,
			Scale:    d.Scale,
		}, d.Children.Nodes()...)

		var actionBar, panel templ.Component
		if d.Source != nil {
			a := d.Source.Action
			actionBar = blocks.ActionBar(blocks.ActionButton{Name: a.Name, Title: a.Title, Disabled: a.Disabled})
			panel = d.Source.Panel
		}

		container := blocks.Container(blocks.ContainerProps{
			ID:          p.id,
			ClassName:   p.cfg.ClassName,
			WithSource:  d.Source != nil,
			Expanded:    d.Source != nil && d.Source.Panel != nil,
			WithToolbar: d.Toolbar != nil,
		}, toolbar, scoped(d.Scale, join(grid, actionBar)), panel)

		return container.Render(ctx, w)
	})
}

func join(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
