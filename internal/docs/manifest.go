// Package docs loads the docs manifest and assembles documentation pages
// out of registered stories and preview blocks.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/preview"
	"github.com/conneroisu/docblocks/internal/registry"
)

// Manifest is the YAML document describing stories and the pages that show
// them.
type Manifest struct {
	Entries []StoryEntry `yaml:"stories"`
	Pages   []PageEntry  `yaml:"pages"`

	// path is the file the manifest was read from.
	path string
}

// StoryEntry declares one story. Exactly one of HTML and HTMLFile is set.
type StoryEntry struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title,omitempty"`
	HTML        string       `yaml:"html,omitempty"`
	HTMLFile    string       `yaml:"html_file,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Source      *SourceEntry `yaml:"source,omitempty"`
}

// SourceEntry points at the code shown for a story or block. File is
// resolved relative to the manifest.
type SourceEntry struct {
	File     string `yaml:"file,omitempty"`
	Code     string `yaml:"code,omitempty"`
	Language string `yaml:"language,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// PageEntry declares one docs page.
type PageEntry struct {
	ID              string       `yaml:"id"`
	Title           string       `yaml:"title,omitempty"`
	Description     string       `yaml:"description,omitempty"`
	DescriptionFile string       `yaml:"description_file,omitempty"`
	Blocks          []BlockEntry `yaml:"blocks"`
}

// BlockEntry declares one preview block on a page.
type BlockEntry struct {
	Stories     []string `yaml:"stories"`
	IsColumn    bool     `yaml:"is_column,omitempty"`
	Columns     int      `yaml:"columns,omitempty"`
	WithToolbar bool     `yaml:"with_toolbar,omitempty"`
	IsExpanded  bool     `yaml:"is_expanded,omitempty"`
	ClassName   string   `yaml:"class_name,omitempty"`
	// ShowSource attaches the source of the block's only story.
	ShowSource bool `yaml:"show_source,omitempty"`
	// Source attaches explicit source and takes precedence over ShowSource.
	Source *SourceEntry `yaml:"source,omitempty"`
}

// LoadManifest reads and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "manifest not found", err).
				WithContext("path", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeInternalError, "failed to read manifest", err).
			WithContext("path", path)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.path = path

	return m, nil
}

// ParseManifest decodes and validates a manifest held in memory. Relative
// paths in it resolve against the working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, errors.ErrCodeManifestInvalid, "failed to parse manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Path returns the file the manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// Dir returns the directory relative paths resolve against.
func (m *Manifest) Dir() string {
	if m.path == "" {
		return "."
	}
	return filepath.Dir(m.path)
}

// Validate checks ids are present and unique and that every block refers to
// declared stories.
func (m *Manifest) Validate() error {
	stories := make(map[string]bool, len(m.Entries))
	for i, s := range m.Entries {
		if strings.TrimSpace(s.ID) == "" {
			return invalid("story %d has no id", i)
		}
		if stories[s.ID] {
			return invalid("duplicate story id %q", s.ID)
		}
		if s.HTML != "" && s.HTMLFile != "" {
			return invalid("story %q sets both html and html_file", s.ID)
		}
		stories[s.ID] = true
	}

	pages := make(map[string]bool, len(m.Pages))
	for i, p := range m.Pages {
		if strings.TrimSpace(p.ID) == "" {
			return invalid("page %d has no id", i)
		}
		if pages[p.ID] {
			return invalid("duplicate page id %q", p.ID)
		}
		pages[p.ID] = true

		for j, b := range p.Blocks {
			for _, id := range b.Stories {
				if !stories[id] {
					return invalid("page %q block %d refers to unknown story %q", p.ID, j, id)
				}
			}
		}
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.NewValidationError(errors.ErrCodeManifestInvalid, fmt.Sprintf(format, args...))
}

// Page returns the page entry with id.
func (m *Manifest) Page(id string) (PageEntry, bool) {
	for _, p := range m.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return PageEntry{}, false
}

// Files lists every file the manifest reads, the manifest itself first.
// The watcher uses it to decide which changes trigger a reload.
func (m *Manifest) Files() []string {
	var files []string
	if m.path != "" {
		files = append(files, m.path)
	}

	add := func(rel string) {
		if rel != "" {
			files = append(files, m.resolve(rel))
		}
	}
	for _, s := range m.Entries {
		add(s.HTMLFile)
		if s.Source != nil {
			add(s.Source.File)
		}
	}
	for _, p := range m.Pages {
		add(p.DescriptionFile)
		for _, b := range p.Blocks {
			if b.Source != nil {
				add(b.Source.File)
			}
		}
	}

	return files
}

func (m *Manifest) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Dir(), rel)
}

// Stories builds a registry story for every entry. A missing HTML file is
// an error; missing source files are not, they surface as the preview's
// "No code available" state.
func (m *Manifest) Stories() ([]*registry.Story, error) {
	out := make([]*registry.Story, 0, len(m.Entries))

	for _, entry := range m.Entries {
		story := &registry.Story{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			Source:      m.source(entry.Source),
			FilePath:    m.path,
		}

		markup := entry.HTML
		if entry.HTMLFile != "" {
			path := m.resolve(entry.HTMLFile)
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "failed to read story html", err).
					WithContext("story", entry.ID).
					WithContext("path", path)
			}
			markup = string(data)
			story.FilePath = path
		}
		story.Component = templ.Raw(markup)

		if info, err := os.Stat(story.FilePath); err == nil {
			story.LastMod = info.ModTime()
		} else {
			story.LastMod = time.Now()
		}

		out = append(out, story)
	}

	return out, nil
}

// Description returns the page's markdown, reading DescriptionFile when set.
func (m *Manifest) Description(p PageEntry) (string, error) {
	if p.DescriptionFile == "" {
		return p.Description, nil
	}

	path := m.resolve(p.DescriptionFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotFound, "failed to read page description", err).
			WithContext("page", p.ID).
			WithContext("path", path)
	}
	return string(data), nil
}

func (m *Manifest) source(entry *SourceEntry) *preview.SourceSpec {
	switch {
	case entry == nil:
		return nil
	case entry.Error != "":
		return &preview.SourceSpec{Error: entry.Error, Language: entry.Language}
	case entry.File != "":
		return registry.LoadSource(m.resolve(entry.File), entry.Language)
	default:
		return &preview.SourceSpec{Code: entry.Code, Language: entry.Language}
	}
}

// Load reads the manifest at path and replaces the registry's stories with
// the ones it declares.
func Load(path string, reg *registry.StoryRegistry) (*Manifest, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}

	stories, err := m.Stories()
	if err != nil {
		return nil, err
	}
	reg.Replace(stories)

	return m, nil
}
