package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/docblocks/internal/preview"
)

// languageByExt maps file extensions to the language class used by the
// source view.
var languageByExt = map[string]string{
	".templ": "templ",
	".go":    "go",
	".html":  "html",
	".htm":   "html",
	".css":   "css",
	".js":    "javascript",
	".ts":    "typescript",
	".tsx":   "tsx",
	".jsx":   "jsx",
	".md":    "markdown",
}

// LanguageFor guesses the source language from a file name.
func LanguageFor(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}

// LoadSource reads path into a SourceSpec. A read failure does not fail the
// story: the returned spec carries the error text so the preview can show
// its "No code available" state instead.
func LoadSource(path, language string) *preview.SourceSpec {
	if language == "" {
		language = LanguageFor(path)
	}

	spec := &preview.SourceSpec{Language: language, Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		spec.Error = err.Error()
		return spec
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		spec.Error = "source file is empty"
		return spec
	}

	spec.Code = string(content)
	return spec
}
