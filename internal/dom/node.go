package dom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/complyhub/complyhub/internal/markup"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates a detached element. attrs are key/value pairs.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// TextNode creates a text node. Its content is escaped on render.
func TextNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func Append(parent, child *html.Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
}

// InsertAfter places n right after ref.
func InsertAfter(ref, n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Remove detaches n from its parent. Detached nodes are ignored.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Clear removes all children of n.
func Clear(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// SetText replaces n's children with a single text node.
func SetText(n *html.Node, s string) {
	Clear(n)
	n.AppendChild(TextNode(s))
}

// SetInner replaces n's children with the parsed fragment. Only trusted
// markup is accepted; plain text goes through SetText.
func SetInner(n *html.Node, frag markup.HTML) error {
	nodes, err := html.ParseFragment(strings.NewReader(string(frag)), n)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	Clear(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// Outer serializes n.
func Outer(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// ── attributes ───────────────────────────────────────────────

func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// ── classes ──────────────────────────────────────────────────

func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(strings.Join(append(Classes(n), class), " ")))
}

func RemoveClass(n *html.Node, class string) {
	if !HasClass(n, class) {
		return
	}
	var keep []string
	for _, c := range Classes(n) {
		if c != class {
			keep = append(keep, c)
		}
	}
	SetAttr(n, "class", strings.Join(keep, " "))
}

// ToggleClass adds class when on is true and removes it otherwise.
func ToggleClass(n *html.Node, class string, on bool) {
	if on {
		AddClass(n, class)
	} else {
		RemoveClass(n, class)
	}
}

// ── traversal ────────────────────────────────────────────────

// Closest returns the nearest ancestor of n (n included) that matches.
func Closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && match(p) {
			return p
		}
	}
	return nil
}

// ClosestClass returns the nearest ancestor carrying any of classes.
func ClosestClass(n *html.Node, classes ...string) *html.Node {
	return Closest(n, func(p *html.Node) bool {
		for _, c := range classes {
			if HasClass(p, c) {
				return true
			}
		}
		return false
	})
}

// Focusables returns the keyboard-focusable descendants of n in document
// order: buttons, links with href, form fields and elements with a
// non-negative tabindex.
func Focusables(n *html.Node) []*html.Node {
	return FindAll(n, func(c *html.Node) bool {
		if c == n {
			return false
		}
		switch c.DataAtom {
		case atom.Button, atom.Input, atom.Select, atom.Textarea:
			return true
		case atom.A:
			if _, ok := Attr(c, "href"); ok {
				return true
			}
		}
		if v, ok := Attr(c, "tabindex"); ok && v != "-1" {
			return true
		}
		return false
	})
}
