package cmd

import (
	"github.com/conneroisu/docblocks/internal/config"
	"github.com/conneroisu/docblocks/internal/docs"
	"github.com/conneroisu/docblocks/internal/logging"
	"github.com/conneroisu/docblocks/internal/preview"
	"github.com/conneroisu/docblocks/internal/registry"
)

// project is a loaded manifest with its stories and a page builder, for
// commands that work without a server.
type project struct {
	config   *config.Config
	registry *registry.StoryRegistry
	manifest *docs.Manifest
	builder  *docs.Builder
}

func loadProject(cfg *config.Config, logger logging.Logger) (*project, error) {
	reg := registry.NewStoryRegistry()
	m, err := docs.Load(cfg.Docs.Manifest, reg)
	if err != nil {
		return nil, err
	}

	factory := func(pc preview.Config) *preview.Preview {
		return preview.New(pc,
			preview.WithLogger(logger),
			preview.WithCanvasURL(cfg.Preview.ToolbarBaseURL),
			preview.WithZoomSteps(cfg.Preview.ZoomInStep, cfg.Preview.ZoomOutStep),
		)
	}

	return &project{
		config:   cfg,
		registry: reg,
		manifest: m,
		builder:  docs.NewBuilder(m, reg, factory, logger),
	}, nil
}
