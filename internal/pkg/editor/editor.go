// Package editor is the lesson content editor. It holds a lesson body as a
// parsed HTML fragment, applies formatting commands and insertions to the
// selected block, and serializes the result back to a single HTML string.
package editor

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxHistory bounds the undo stack.
const maxHistory = 100

// Editor is not safe for concurrent use.
type Editor struct {
	root     *html.Node
	selected int
	undo     []string
	redo     []string
	onChange func(string)
}

// New creates an editor whose content is set from initial exactly once.
// onChange, if non-nil, receives the serialized HTML after every command.
func New(initial string, onChange func(string)) *Editor {
	return &Editor{
		root:     parseFragment(initial),
		onChange: onChange,
	}
}

// Load replaces the content with src. History and selection are reset and
// onChange is not called.
func (e *Editor) Load(src string) {
	e.root = parseFragment(src)
	e.selected = 0
	e.undo = nil
	e.redo = nil
}

// HTML serializes the current content.
func (e *Editor) HTML() string {
	return render(e.root)
}

// Blocks returns the number of selectable blocks.
func (e *Editor) Blocks() int {
	return len(e.blocks())
}

// Selected returns the index of the selected block.
func (e *Editor) Selected() int {
	e.clampSelection()
	return e.selected
}

// Select moves the selection to block i, clamped to the valid range, and
// returns the resulting index.
func (e *Editor) Select(i int) int {
	e.selected = i
	e.clampSelection()
	return e.selected
}

// CanUndo reports whether Undo would change anything.
func (e *Editor) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether Redo would change anything.
func (e *Editor) CanRedo() bool { return len(e.redo) > 0 }

// Undo restores the content as it was before the last command.
func (e *Editor) Undo() bool {
	if len(e.undo) == 0 {
		return false
	}
	prev := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, e.HTML())
	e.root = parseFragment(prev)
	e.clampSelection()
	e.notify()
	return true
}

// Redo reapplies the last undone command.
func (e *Editor) Redo() bool {
	if len(e.redo) == 0 {
		return false
	}
	next := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.pushUndo(e.HTML())
	e.root = parseFragment(next)
	e.clampSelection()
	e.notify()
	return true
}

// History is the undo and redo stacks of an editor, oldest entry first.
// It lets a caller carry the stacks across requests.
type History struct {
	Undo []string `json:"undo,omitempty"`
	Redo []string `json:"redo,omitempty"`
}

// History returns a copy of the undo and redo stacks.
func (e *Editor) History() History {
	return History{
		Undo: append([]string(nil), e.undo...),
		Redo: append([]string(nil), e.redo...),
	}
}

// Restore replaces the undo and redo stacks. The content is left as is.
func (e *Editor) Restore(h History) {
	e.undo = append([]string(nil), h.Undo...)
	if len(e.undo) > maxHistory {
		e.undo = e.undo[len(e.undo)-maxHistory:]
	}
	e.redo = append([]string(nil), h.Redo...)
	if len(e.redo) > maxHistory {
		e.redo = e.redo[len(e.redo)-maxHistory:]
	}
}

// mutate runs fn against the tree. On error the tree is restored. A change
// is recorded in the undo history and clears the redo stack.
func (e *Editor) mutate(fn func() error) error {
	before := e.HTML()
	if err := fn(); err != nil {
		e.root = parseFragment(before)
		e.clampSelection()
		return err
	}
	if e.HTML() != before {
		e.pushUndo(before)
		e.redo = nil
	}
	e.clampSelection()
	e.notify()
	return nil
}

func (e *Editor) pushUndo(s string) {
	e.undo = append(e.undo, s)
	if len(e.undo) > maxHistory {
		e.undo = e.undo[len(e.undo)-maxHistory:]
	}
}

func (e *Editor) notify() {
	if e.onChange != nil {
		e.onChange(e.HTML())
	}
}

func (e *Editor) clampSelection() {
	n := len(e.blocks())
	switch {
	case n == 0 || e.selected < 0:
		e.selected = 0
	case e.selected >= n:
		e.selected = n - 1
	}
}

// blocks lists the selectable blocks: top-level elements, with lists
// contributing their items instead of themselves.
func (e *Editor) blocks() []*html.Node {
	var out []*html.Node
	for c := e.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if isList(c) {
			for li := c.FirstChild; li != nil; li = li.NextSibling {
				if isElement(li, atom.Li) {
					out = append(out, li)
				}
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func (e *Editor) selectNode(n *html.Node) {
	for i, b := range e.blocks() {
		if b == n {
			e.selected = i
			return
		}
	}
}

// current returns the selected block, creating an empty paragraph when the
// editor holds nothing selectable.
func (e *Editor) current() *html.Node {
	e.normalize()
	bs := e.blocks()
	if len(bs) == 0 {
		p := newElement(atom.P)
		e.root.AppendChild(p)
		e.selected = 0
		return p
	}
	e.clampSelection()
	return bs[e.selected]
}

// normalize gathers stray top-level inline content into paragraphs and drops
// whitespace between blocks.
func (e *Editor) normalize() {
	var run []*html.Node
	flush := func(before *html.Node) {
		if len(run) == 0 {
			return
		}
		blank := true
		for _, n := range run {
			if !isBlank(n) {
				blank = false
				break
			}
		}
		if blank {
			for _, n := range run {
				e.root.RemoveChild(n)
			}
		} else {
			p := newElement(atom.P)
			e.root.InsertBefore(p, before)
			for _, n := range run {
				e.root.RemoveChild(n)
				p.AppendChild(n)
			}
		}
		run = nil
	}
	for c := e.root.FirstChild; c != nil; {
		next := c.NextSibling
		if isBlock(c) {
			flush(c)
		} else {
			run = append(run, c)
		}
		c = next
	}
	flush(nil)
}

func parseFragment(src string) *html.Node {
	root := newElement(atom.Div)
	nodes, err := html.ParseFragment(strings.NewReader(src), newElement(atom.Div))
	if err != nil {
		return root
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root
}

func render(root *html.Node) string {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}
