package docs

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/logging"
	"github.com/conneroisu/docblocks/internal/preview"
	"github.com/conneroisu/docblocks/internal/registry"
	"github.com/conneroisu/docblocks/internal/session"
	"github.com/conneroisu/docblocks/internal/testutils"
)

const sampleManifest = `
stories:
  - id: button--primary
    title: Primary
    html: <button class="btn">OK</button>
    source:
      file: button.templ
  - id: button--secondary
    html_file: stories/secondary.html
  - id: button--broken
    html: <button disabled>Nope</button>
    source:
      file: missing.templ
pages:
  - id: buttons
    title: Buttons
    description_file: buttons.md
    blocks:
      - stories: [button--primary]
        with_toolbar: true
        show_source: true
      - stories: [button--primary, button--secondary]
        with_toolbar: true
        columns: 2
      - stories: [button--secondary]
        show_source: true
      - stories: [button--broken]
        show_source: true
        is_expanded: true
  - id: inline-source
    description: Plain *inline* text.
    blocks:
      - stories: [button--secondary]
        source:
          code: <Secondary/>
          language: templ
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := testutils.CreateTempProject(t)
	testutils.WriteFile(t, dir, "button.templ", "templ Button() {\n\t<button class=\"btn\">OK</button>\n}\n")
	testutils.WriteFile(t, dir, "stories/secondary.html", `<button class="btn btn-secondary">Cancel</button>`)
	testutils.WriteFile(t, dir, "buttons.md", "# Usage\n\n| size | class |\n|---|---|\n| sm | btn-sm |\n")
	return testutils.WriteFile(t, dir, "docblocks.yml", sampleManifest)
}

func TestLoadManifest(t *testing.T) {
	path := writeProject(t)

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, path, m.Path())
	assert.Equal(t, filepath.Dir(path), m.Dir())
	assert.Len(t, m.Entries, 3)
	assert.Len(t, m.Pages, 2)

	page, ok := m.Page("buttons")
	require.True(t, ok)
	assert.Len(t, page.Blocks, 4)
	assert.Equal(t, 2, page.Blocks[1].Columns)

	_, ok = m.Page("nope")
	assert.False(t, ok)
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "none.yml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func TestParseManifestValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		message string
	}{
		{"bad yaml", "stories: [", "failed to parse manifest"},
		{"missing story id", "stories:\n  - html: x\n", "story 0 has no id"},
		{"duplicate story", "stories:\n  - id: a\n  - id: a\n", `duplicate story id "a"`},
		{"html and file", "stories:\n  - id: a\n    html: x\n    html_file: y\n", "sets both html and html_file"},
		{"missing page id", "pages:\n  - title: x\n", "page 0 has no id"},
		{"duplicate page", "pages:\n  - id: p\n  - id: p\n", `duplicate page id "p"`},
		{"unknown story", "pages:\n  - id: p\n    blocks:\n      - stories: [ghost]\n", `unknown story "ghost"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tc.content))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestManifestStories(t *testing.T) {
	path := writeProject(t)
	m, err := LoadManifest(path)
	require.NoError(t, err)

	stories, err := m.Stories()
	require.NoError(t, err)
	require.Len(t, stories, 3)

	primary := stories[0]
	assert.Equal(t, "Primary", primary.DisplayTitle())
	require.NotNil(t, primary.Source)
	assert.Empty(t, primary.Source.Error)
	assert.Equal(t, "templ", primary.Source.Language)
	assert.Contains(t, testutils.Render(t, nil, primary.Component), `<button class="btn">OK</button>`)

	secondary := stories[1]
	assert.Nil(t, secondary.Source)
	assert.Equal(t, filepath.Join(m.Dir(), "stories/secondary.html"), secondary.FilePath)
	assert.Contains(t, testutils.Render(t, nil, secondary.Component), "btn-secondary")

	broken := stories[2]
	require.NotNil(t, broken.Source)
	assert.NotEmpty(t, broken.Source.Error)
}

func TestManifestStoriesMissingHTMLFile(t *testing.T) {
	m, err := ParseManifest([]byte("stories:\n  - id: a\n    html_file: " + filepath.Join(t.TempDir(), "gone.html") + "\n"))
	require.NoError(t, err)

	_, err = m.Stories()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func TestManifestFiles(t *testing.T) {
	path := writeProject(t)
	m, err := LoadManifest(path)
	require.NoError(t, err)

	files := m.Files()
	require.NotEmpty(t, files)
	assert.Equal(t, path, files[0])
	assert.Contains(t, files, filepath.Join(m.Dir(), "button.templ"))
	assert.Contains(t, files, filepath.Join(m.Dir(), "stories/secondary.html"))
	assert.Contains(t, files, filepath.Join(m.Dir(), "buttons.md"))
}

func TestLoadRegistersStories(t *testing.T) {
	path := writeProject(t)
	reg := registry.NewStoryRegistry()
	reg.Register(&registry.Story{ID: "stale"})

	_, err := Load(path, reg)
	require.NoError(t, err)

	assert.Equal(t, 3, reg.Count())
	_, ok := reg.Get("stale")
	assert.False(t, ok)
}

func TestMarkdown(t *testing.T) {
	c, err := Markdown("# Title\n\n~~old~~ text\n")
	require.NoError(t, err)

	out := testutils.Render(t, nil, c)
	assert.True(t, strings.HasPrefix(out, `<div class="docblock-description">`))
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<del>old</del>")

	empty, err := Markdown("")
	require.NoError(t, err)
	assert.Empty(t, testutils.Render(t, nil, empty))
}

func newBuilder(t *testing.T, logger logging.Logger) *Builder {
	t.Helper()
	reg := registry.NewStoryRegistry()
	m, err := Load(writeProject(t), reg)
	require.NoError(t, err)
	return NewBuilder(m, reg, nil, logger)
}

func TestBuilderPages(t *testing.T) {
	b := newBuilder(t, nil)

	pages := b.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, PageSummary{ID: "buttons", Title: "Buttons", Blocks: 4}, pages[0])
	assert.Equal(t, "Inline Source", pages[1].Title)

	assert.Nil(t, NewBuilder(nil, registry.NewStoryRegistry(), nil, nil).Pages())
}

func TestBuilderPage(t *testing.T) {
	rec := logging.NewRecorder()
	b := newBuilder(t, rec)
	ctx := context.Background()

	page, err := b.Page(ctx, "buttons")
	require.NoError(t, err)
	require.Len(t, page.Previews, 4)
	assert.Equal(t, "Buttons", page.Title)

	single := page.Previews[0].Config()
	assert.Equal(t, preview.Single, single.Children.Kind())
	require.NotNil(t, single.WithSource)
	assert.Contains(t, single.WithSource.Code, "templ Button()")

	many := page.Previews[1].Config()
	assert.Equal(t, preview.Many, many.Children.Kind())
	assert.Nil(t, many.WithSource)

	noSource := page.Previews[2].Config()
	require.NotNil(t, noSource.WithSource)
	assert.Contains(t, noSource.WithSource.Error, "has no source")

	broken := page.Previews[3]
	require.NotNil(t, broken.Config().WithSource)
	assert.NotEmpty(t, broken.Config().WithSource.Error)
	assert.False(t, broken.Expanded())

	assert.Equal(t, 2, rec.Count(logging.LevelWarn), "each block with unavailable source warns once")
}

func TestBuilderPageExplicitSource(t *testing.T) {
	b := newBuilder(t, nil)

	page, err := b.Page(context.Background(), "inline-source")
	require.NoError(t, err)
	require.Len(t, page.Previews, 1)

	src := page.Previews[0].Config().WithSource
	require.NotNil(t, src)
	assert.Equal(t, "<Secondary/>", src.Code)
	assert.Equal(t, "templ", src.Language)

	out := testutils.Render(t, nil, page.Component())
	assert.Contains(t, out, "<em>inline</em>")
}

func TestBuilderPageNotFound(t *testing.T) {
	b := newBuilder(t, nil)

	_, err := b.Page(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))

	_, err = NewBuilder(nil, registry.NewStoryRegistry(), nil, nil).Page(context.Background(), "buttons")
	assert.True(t, errors.IsNotFound(err))
}

func TestBuilderPageStoryRemoved(t *testing.T) {
	reg := registry.NewStoryRegistry()
	m, err := Load(writeProject(t), reg)
	require.NoError(t, err)
	reg.Remove("button--secondary")

	_, err = NewBuilder(m, reg, nil, nil).Page(context.Background(), "inline-source")
	assert.True(t, errors.IsNotFound(err))
}

func TestBuilderUsesFactory(t *testing.T) {
	reg := registry.NewStoryRegistry()
	m, err := Load(writeProject(t), reg)
	require.NoError(t, err)

	var built int
	b := NewBuilder(m, reg, func(cfg preview.Config) *preview.Preview {
		built++
		return preview.New(cfg, preview.WithID("fixed"))
	}, nil)

	page, err := b.Page(context.Background(), "buttons")
	require.NoError(t, err)
	assert.Equal(t, 4, built)
	assert.Equal(t, "fixed", page.Previews[0].ID())
}

func TestBuilderPageFailureCreatesNoPreviews(t *testing.T) {
	reg := registry.NewStoryRegistry()
	m, err := Load(writeProject(t), reg)
	require.NoError(t, err)
	// The last block of "buttons" now references an unregistered story.
	reg.Remove("button--broken")

	store := session.NewStore()
	b := NewBuilder(m, reg, store.Create, nil)

	_, err = b.Page(context.Background(), "buttons")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 0, store.Count())

	page, err := b.Page(context.Background(), "inline-source")
	require.NoError(t, err)
	assert.Equal(t, len(page.Previews), store.Count())
}

func TestPageComponent(t *testing.T) {
	b := newBuilder(t, nil)
	page, err := b.Page(context.Background(), "buttons")
	require.NoError(t, err)

	doc := testutils.Parse(t, testutils.Render(t, nil, page.Component()))

	articles := testutils.ByClass(doc, "docblock-page")
	require.Len(t, articles, 1)
	id, _ := testutils.Attr(articles[0], "data-page")
	assert.Equal(t, "buttons", id)

	assert.Len(t, testutils.ByClass(doc, "docblock-preview"), 4)
	assert.Len(t, testutils.ByClass(doc, "docblock-description"), 1)
	assert.Len(t, testutils.FindAll(doc, func(n *html.Node) bool { return n.Data == "table" }), 1)
}
