package preview

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
)

// storyNode is a minimal story: it renders its label and names itself.
type storyNode struct {
	id    string
	label string
}

func (s storyNode) Render(ctx context.Context, w io.Writer) error {
	_, err := fmt.Fprintf(w, `<span class="story">%s</span>`, templ.EscapeString(s.label))
	return err
}

func (s storyNode) StoryID() string { return s.id }

func plainNode(label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, label)
		return err
	})
}

func TestNewChildren(t *testing.T) {
	testCases := []struct {
		name  string
		nodes []templ.Component
		kind  Kind
		len   int
	}{
		{"none", nil, Empty, 0},
		{"only nils", []templ.Component{nil, nil}, Empty, 0},
		{"one", []templ.Component{plainNode("a")}, Single, 1},
		{"one after nil filtering", []templ.Component{nil, plainNode("a")}, Single, 1},
		{"two", []templ.Component{plainNode("a"), plainNode("b")}, Many, 2},
		{"three", []templ.Component{plainNode("a"), plainNode("b"), plainNode("c")}, Many, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChildren(tc.nodes...)
			assert.Equal(t, tc.kind, c.Kind())
			assert.Equal(t, tc.len, c.Len())
			assert.Len(t, c.Nodes(), tc.len)
		})
	}
}

func TestChildrenNodesIsCopy(t *testing.T) {
	a, b := plainNode("a"), plainNode("b")
	c := NewChildren(a, b)

	nodes := c.Nodes()
	nodes[0] = nil

	assert.NotNil(t, c.Nodes()[0])
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "single", Single.String())
	assert.Equal(t, "many", Many.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestStoryID(t *testing.T) {
	t.Run("single identified child", func(t *testing.T) {
		id, ok := StoryID(NewChildren(storyNode{id: "button--primary"}))
		assert.True(t, ok)
		assert.Equal(t, "button--primary", id)
	})

	t.Run("single child without id", func(t *testing.T) {
		id, ok := StoryID(NewChildren(plainNode("a")))
		assert.False(t, ok)
		assert.Empty(t, id)
	})

	t.Run("single child with empty id", func(t *testing.T) {
		_, ok := StoryID(NewChildren(storyNode{id: ""}))
		assert.False(t, ok)
	})

	t.Run("zero children", func(t *testing.T) {
		_, ok := StoryID(NewChildren())
		assert.False(t, ok)
	})

	t.Run("two children", func(t *testing.T) {
		_, ok := StoryID(NewChildren(storyNode{id: "a"}, storyNode{id: "b"}))
		assert.False(t, ok)
	})
}
