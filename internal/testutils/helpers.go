// Package testutils holds helpers shared by package tests: temporary docs
// projects and HTML inspection of rendered components.
package testutils

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// CreateTempProject creates a temporary docs project with a stories
// directory and returns its root.
func CreateTempProject(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	err := os.MkdirAll(filepath.Join(tempDir, "stories"), 0o755)
	require.NoError(t, err)

	return tempDir
}

// WriteFile writes content below dir, creating parents, and returns the
// full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Render renders c with ctx (background when nil) and returns the markup.
func Render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	if ctx == nil {
		ctx = context.Background()
	}
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

// Parse parses an HTML fragment into a document tree.
func Parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether n carries class in its class attribute.
func HasClass(n *html.Node, class string) bool {
	v, ok := Attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// FindAll returns every element below n, in document order, for which
// match returns true.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ByClass returns every element below n carrying class.
func ByClass(n *html.Node, class string) []*html.Node {
	return FindAll(n, func(node *html.Node) bool { return HasClass(node, class) })
}

// ByAttr returns every element below n whose attribute key equals val.
func ByAttr(n *html.Node, key, val string) []*html.Node {
	return FindAll(n, func(node *html.Node) bool {
		v, ok := Attr(node, key)
		return ok && v == val
	})
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
