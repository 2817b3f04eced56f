package preview

import (
	"github.com/a-h/templ"

	"github.com/conneroisu/docblocks/internal/blocks"
)

// Action names understood by Preview.Activate.
const (
	ActionSource  = blocks.ActionSource
	ActionZoomIn  = blocks.ActionZoomIn
	ActionZoomOut = blocks.ActionZoomOut
	ActionReset   = blocks.ActionReset
)

// Titles shown on the source control.
const (
	TitleNoCode   = "No code available"
	TitleHideCode = "Hide code"
	TitleShowCode = "Show code"
)

// SourceSpec describes the source text attached to a preview. Only Error is
// inspected by the decision logic; the rest is handed to the source view.
type SourceSpec struct {
	// Error, when non-empty, marks the source as unavailable.
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	// Path is the file the code was read from, if any.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ActionItem is the single control the source panel exposes to the action bar.
type ActionItem struct {
	Name       string
	Title      string
	Disabled   bool
	OnActivate func()
}

// SourceItem is the source panel decision: the panel to render, if any, and
// the control that toggles it.
type SourceItem struct {
	// Panel is nil when nothing should be shown below the preview.
	Panel  templ.Component
	Action ActionItem
}

// SourcePanel decides what the source control shows and does. It has no side
// effects; toggle is only invoked when the returned action is activated.
func SourcePanel(spec *SourceSpec, expanded bool, toggle func(bool)) SourceItem {
	switch {
	case spec != nil && spec.Error != "":
		return SourceItem{
			Action: ActionItem{
				Name:       ActionSource,
				Title:      TitleNoCode,
				Disabled:   true,
				OnActivate: func() { toggle(false) },
			},
		}
	case expanded:
		return SourceItem{
			Panel: sourceView(spec),
			Action: ActionItem{
				Name:       ActionSource,
				Title:      TitleHideCode,
				OnActivate: func() { toggle(false) },
			},
		}
	default:
		return SourceItem{
			Action: ActionItem{
				Name:       ActionSource,
				Title:      TitleShowCode,
				OnActivate: func() { toggle(true) },
			},
		}
	}
}

func sourceView(spec *SourceSpec) templ.Component {
	props := blocks.SourceProps{Dark: true}
	if spec != nil {
		props.Code = spec.Code
		props.Language = spec.Language
	}
	return blocks.Source(props)
}
