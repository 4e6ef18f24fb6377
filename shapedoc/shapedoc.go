// Runs the shape style initializer on HTML documents.
// Documents are parsed into a golang.org/x/net/html tree; the shape
// elements are selected with a CSS selector, their styles are computed
// by package shape (see Resolve) and finally written back into their
// inline style attribute (see Apply).
package shapedoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/benoitkugler/marbles/shape"
	"github.com/ericchiang/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// DefaultSelector matches the shape elements.
const DefaultSelector = ".shape"

// ErrNoDocument is returned when parsing an empty input.
var ErrNoDocument = errors.New("empty html document")

type (
	// Document is a parsed HTML document.
	Document struct {
		Root *html.Node
	}

	// Options controls Resolve and Initialize.
	Options struct {
		Selector string // DefaultSelector if empty
		shape.Options
	}

	// Entry binds a resolved style to its node.
	Entry struct {
		shape.Entry
		Node *html.Node
	}

	// Plan is the list of styles to write, in document order.
	Plan []Entry
)

// Parse reads an HTML document, converting it to UTF-8 first if its
// encoding (found from a BOM or a meta element) requires it.
func Parse(r io.Reader) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrNoDocument
	}
	utf8, err := charset.NewReader(bytes.NewReader(b), "")
	if err != nil {
		return nil, err
	}
	root, err := html.Parse(utf8)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// ReadFile parses the named HTML file.
func ReadFile(name string) (*Document, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// Render writes the document back as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// Shapes returns the elements matching `selector`, in document order.
func (d *Document) Shapes(selector string) ([]*html.Node, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	sel, err := css.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return sel.Select(d.Root), nil
}

// nodeAttrs exposes the attributes of an element node
type nodeAttrs struct{ n *html.Node }

func (a nodeAttrs) Attr(name string) (string, bool) {
	for _, attr := range a.n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// Resolve computes the styles of the shape elements without touching the
// document. With shape.StrictErrorMode, an element without size makes
// Resolve fail; otherwise such elements are left out of the plan.
func Resolve(doc *Document, opts Options) (Plan, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrNoDocument
	}
	nodes, err := doc.Shapes(opts.Selector)
	if err != nil {
		return nil, err
	}
	elements := make([]shape.Element, len(nodes))
	for i, n := range nodes {
		id, _ := nodeAttrs{n}.Attr("id")
		elements[i] = shape.Element{ID: shape.ElementID(id, i), Attrs: nodeAttrs{n}}
	}
	entries, err := shape.ResolveAll(elements, opts.Options)
	if err != nil {
		return nil, err
	}
	plan := make(Plan, len(entries))
	for i, e := range entries {
		plan[i] = Entry{Entry: e, Node: nodes[e.Index]}
	}
	return plan, nil
}

// Entries returns the node independent part of the plan.
func (p Plan) Entries() []shape.Entry {
	out := make([]shape.Entry, len(p))
	for i, e := range p {
		out[i] = e.Entry
	}
	return out
}

// Initialize computes the plan of the document and applies it.
func Initialize(doc *Document, opts Options) (Plan, error) {
	plan, err := Resolve(doc, opts)
	if err != nil {
		return nil, err
	}
	if err = Apply(plan, opts.Options); err != nil {
		return nil, err
	}
	return plan, nil
}
