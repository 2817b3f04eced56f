package docs

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Markdown converts src to HTML once and returns a component writing the
// result. Raw HTML in src is not passed through.
func Markdown(src string) (templ.Component, error) {
	if src == "" {
		return templ.NopComponent, nil
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return nil, err
	}

	rendered := buf.String()
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="docblock-description">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	}), nil
}
