// Package dom is a small server-side DOM over golang.org/x/net/html: id
// lookup with a memoized cache, class and attribute helpers, fragment
// insertion and serialization.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var ErrNoBody = errors.New("document has no body element")

// Document owns a parsed node tree and its id lookup cache. It is not safe
// for concurrent use; callers serialize access.
type Document struct {
	root  *html.Node
	body  *html.Node
	cache map[string]*html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	d := &Document{root: root, cache: make(map[string]*html.Node)}
	d.body = findFirst(root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if d.body == nil {
		return nil, ErrNoBody
	}
	return d, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *Document) Root() *html.Node { return d.root }
func (d *Document) Body() *html.Node { return d.body }

// ByID returns the element with the given id, or nil. Hits are cached; a
// cached node that was since detached or re-identified is looked up again.
func (d *Document) ByID(id string) *html.Node {
	if n, ok := d.cache[id]; ok {
		if v, _ := Attr(n, "id"); v == id && d.Contains(n) {
			return n
		}
		delete(d.cache, id)
	}
	n := ByIDWithin(d.root, id)
	if n != nil {
		d.cache[id] = n
	}
	return n
}

// CacheSize reports how many ids are memoized.
func (d *Document) CacheSize() int { return len(d.cache) }

// ByClass returns every element carrying class, in document order. Results
// are never cached.
func (d *Document) ByClass(class string) []*html.Node {
	return FindAll(d.root, func(n *html.Node) bool { return HasClass(n, class) })
}

// Contains reports whether n is attached under the document root.
func (d *Document) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// Render serializes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// ByIDWithin searches the subtree under root.
func ByIDWithin(root *html.Node, id string) *html.Node {
	return findFirst(root, func(n *html.Node) bool {
		v, ok := Attr(n, "id")
		return ok && v == id
	})
}

// FindAll returns matching element nodes under root in document order.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}
