package preview

import "github.com/a-h/templ"

// Kind is the cardinality of a preview's children.
type Kind int

const (
	Empty Kind = iota
	Single
	Many
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Single:
		return "single"
	case Many:
		return "many"
	default:
		return "unknown"
	}
}

// Identified is implemented by nodes that name the story they render.
type Identified interface {
	StoryID() string
}

// Children is the content of a preview, classified once at construction so
// nothing downstream has to inspect arity again.
type Children struct {
	kind  Kind
	nodes []templ.Component
}

// NewChildren classifies nodes. Nil entries are dropped; two or more
// remaining nodes form a Many set, kept in input order.
func NewChildren(nodes ...templ.Component) Children {
	kept := make([]templ.Component, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			kept = append(kept, n)
		}
	}

	switch len(kept) {
	case 0:
		return Children{kind: Empty}
	case 1:
		return Children{kind: Single, nodes: kept}
	default:
		return Children{kind: Many, nodes: kept}
	}
}

// Kind reports the cardinality.
func (c Children) Kind() Kind { return c.kind }

// Len returns the number of nodes.
func (c Children) Len() int { return len(c.nodes) }

// Nodes returns a copy of the nodes in input order.
func (c Children) Nodes() []templ.Component {
	out := make([]templ.Component, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// StoryID returns the identifier of the sole child. It reports false for
// empty or multi-child sets and for a child that does not carry an id.
func StoryID(children Children) (string, bool) {
	if children.kind != Single {
		return "", false
	}

	ident, ok := children.nodes[0].(Identified)
	if !ok {
		return "", false
	}

	id := ident.StoryID()
	if id == "" {
		return "", false
	}

	return id, true
}
