package editor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags are the elements that stand on their own at the top level of a
// lesson body. Anything else found there is gathered into a paragraph.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Pre:        true,
	atom.Blockquote: true,
	atom.Table:      true,
	atom.Hr:         true,
	atom.Figure:     true,
}

// retaggable blocks may change element name under a heading command.
var retaggable = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Blockquote: true,
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

func isList(n *html.Node) bool {
	return isElement(n, atom.Ul) || isElement(n, atom.Ol)
}

func isBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockTags[n.DataAtom]
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

func retag(n *html.Node, a atom.Atom) {
	n.DataAtom = a
	n.Data = a.String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// moveChildren appends every child of src to dst, in order.
func moveChildren(src, dst *html.Node) {
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// significant returns the children of n that are not whitespace-only text.
func significant(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isBlank(c) {
			out = append(out, c)
		}
	}
	return out
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func prevElement(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func insertAfter(parent, ref, n *html.Node) {
	parent.InsertBefore(n, ref.NextSibling)
}

// sameInline treats the presentational twins of strong and em as equal.
func sameInline(n *html.Node, a atom.Atom) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch a {
	case atom.Strong:
		return n.DataAtom == atom.Strong || n.DataAtom == atom.B
	case atom.Em:
		return n.DataAtom == atom.Em || n.DataAtom == atom.I
	}
	return n.DataAtom == a
}

// toggleWrap wraps the contents of block in an a element, or unwraps them
// when the block already holds exactly one such element.
func toggleWrap(block *html.Node, a atom.Atom) {
	kids := significant(block)
	if len(kids) == 1 && sameInline(kids[0], a) {
		w := kids[0]
		for c := w.FirstChild; c != nil; {
			next := c.NextSibling
			w.RemoveChild(c)
			block.InsertBefore(c, w)
			c = next
		}
		block.RemoveChild(w)
		return
	}
	w := newElement(a)
	moveChildren(block, w)
	block.AppendChild(w)
}

// setTextAlign replaces any text-align declaration in the style attribute.
func setTextAlign(n *html.Node, value string) {
	var decls []string
	for _, d := range strings.Split(getAttr(n, "style"), ";") {
		d = strings.TrimSpace(d)
		if d == "" || strings.HasPrefix(strings.ToLower(d), "text-align") {
			continue
		}
		decls = append(decls, d)
	}
	decls = append(decls, "text-align: "+value)
	setAttr(n, "style", strings.Join(decls, "; ")+";")
}
