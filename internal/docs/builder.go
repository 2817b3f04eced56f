package docs

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"

	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/logging"
	"github.com/conneroisu/docblocks/internal/preview"
	"github.com/conneroisu/docblocks/internal/registry"
)

// Factory constructs the preview for one block. The session store provides
// a factory that also tracks the instance for later actions.
type Factory func(cfg preview.Config) *preview.Preview

// Page is an assembled docs page.
type Page struct {
	ID          string
	Title       string
	Description templ.Component
	Previews    []*preview.Preview
}

// PageSummary is a page as shown in the index.
type PageSummary struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Blocks int    `json:"blocks" yaml:"blocks"`
}

// Builder assembles pages from the current manifest and registry.
type Builder struct {
	mu       sync.RWMutex
	manifest *Manifest
	registry *registry.StoryRegistry
	factory  Factory
	logger   logging.Logger
}

// NewBuilder creates a builder. A nil factory builds plain previews with
// preview.New.
func NewBuilder(m *Manifest, reg *registry.StoryRegistry, factory Factory, logger logging.Logger) *Builder {
	if factory == nil {
		factory = func(cfg preview.Config) *preview.Preview { return preview.New(cfg) }
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{
		manifest: m,
		registry: reg,
		factory:  factory,
		logger:   logger.WithComponent("docs"),
	}
}

// SetManifest swaps the manifest after a reload.
func (b *Builder) SetManifest(m *Manifest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.manifest = m
}

// Manifest returns the current manifest.
func (b *Builder) Manifest() *Manifest {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.manifest
}

// Pages lists the manifest's pages in declaration order.
func (b *Builder) Pages() []PageSummary {
	m := b.Manifest()
	if m == nil {
		return nil
	}

	out := make([]PageSummary, 0, len(m.Pages))
	for _, p := range m.Pages {
		out = append(out, PageSummary{ID: p.ID, Title: pageTitle(p), Blocks: len(p.Blocks)})
	}
	return out
}

func pageTitle(p PageEntry) string {
	if p.Title != "" {
		return p.Title
	}
	return registry.TitleFromID(p.ID)
}

// Page assembles page id, creating one preview per block.
func (b *Builder) Page(ctx context.Context, id string) (*Page, error) {
	m := b.Manifest()
	if m == nil {
		return nil, errors.NewNotFoundError(errors.ErrCodePageNotFound, "no manifest loaded")
	}

	entry, ok := m.Page(id)
	if !ok {
		return nil, errors.NewNotFoundError(errors.ErrCodePageNotFound, "page not found").
			WithContext("page", id)
	}

	src, err := m.Description(entry)
	if err != nil {
		return nil, err
	}
	description, err := Markdown(src)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, errors.ErrCodeInternalError, "failed to render page description")
	}

	page := &Page{
		ID:          entry.ID,
		Title:       pageTitle(entry),
		Description: description,
		Previews:    make([]*preview.Preview, 0, len(entry.Blocks)),
	}

	// Every block must resolve before any preview is created, so a failed
	// page leaves nothing behind in the factory.
	configs := make([]preview.Config, 0, len(entry.Blocks))
	for i, block := range entry.Blocks {
		cfg, err := b.blockConfig(ctx, m, block)
		if err != nil {
			b.logger.Warn(ctx, err, "Failed to assemble block", "page", entry.ID, "block", i)
			return nil, err
		}
		configs = append(configs, cfg)
	}
	for _, cfg := range configs {
		page.Previews = append(page.Previews, b.factory(cfg))
	}

	b.logger.Debug(ctx, "Assembled page", "page", entry.ID, "blocks", len(page.Previews))

	return page, nil
}

func (b *Builder) blockConfig(ctx context.Context, m *Manifest, block BlockEntry) (preview.Config, error) {
	nodes := make([]templ.Component, 0, len(block.Stories))
	var stories []*registry.Story

	for _, id := range block.Stories {
		story, ok := b.registry.Get(id)
		if !ok {
			return preview.Config{}, errors.NewNotFoundError(errors.ErrCodeStoryNotFound, "story not registered").
				WithContext("story", id)
		}
		stories = append(stories, story)
		nodes = append(nodes, story.Node())
	}

	cfg := preview.Config{
		IsColumn:    block.IsColumn,
		Columns:     block.Columns,
		WithToolbar: block.WithToolbar,
		IsExpanded:  block.IsExpanded,
		ClassName:   block.ClassName,
		Children:    preview.NewChildren(nodes...),
	}

	switch {
	case block.Source != nil:
		cfg.WithSource = m.source(block.Source)
	case block.ShowSource:
		cfg.WithSource = blockSource(stories)
		if cfg.WithSource.Error != "" {
			b.logger.Warn(ctx, errors.NewSourceUnavailableError(cfg.WithSource.Error, nil),
				"Block source unavailable", "stories", block.Stories)
		}
	}

	return cfg, nil
}

// blockSource picks the source shown by a block that asked for it without
// naming one: the source of its only story.
func blockSource(stories []*registry.Story) *preview.SourceSpec {
	switch {
	case len(stories) != 1:
		return &preview.SourceSpec{Error: fmt.Sprintf("source needs exactly one story, block has %d", len(stories))}
	case stories[0].Source == nil:
		return &preview.SourceSpec{Error: fmt.Sprintf("story %q has no source", stories[0].ID)}
	default:
		return stories[0].Source
	}
}

// Component renders the page body: heading, description and previews.
func (p *Page) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<article class="docblock-page" data-page="%s"><h1>%s</h1>`,
			templ.EscapeString(p.ID), templ.EscapeString(p.Title)); err != nil {
			return err
		}
		if p.Description != nil {
			if err := p.Description.Render(ctx, w); err != nil {
				return err
			}
		}
		for _, pv := range p.Previews {
			if err := pv.Component().Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</article>`)
		return err
	})
}
