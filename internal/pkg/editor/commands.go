package editor

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Command is a formatting command from the editor toolbar.
type Command string

const (
	CmdBold         Command = "bold"
	CmdItalic       Command = "italic"
	CmdHeading1     Command = "h1"
	CmdHeading2     Command = "h2"
	CmdBulletList   Command = "bulletList"
	CmdNumberedList Command = "numberedList"
	CmdAlignLeft    Command = "alignLeft"
	CmdAlignCenter  Command = "alignCenter"
	CmdAlignRight   Command = "alignRight"
	CmdUndo         Command = "undo"
	CmdRedo         Command = "redo"
)

// Commands lists the toolbar in display order.
var Commands = []Command{
	CmdBold, CmdItalic, CmdHeading1, CmdHeading2,
	CmdBulletList, CmdNumberedList,
	CmdAlignLeft, CmdAlignCenter, CmdAlignRight,
	CmdUndo, CmdRedo,
}

// ErrUnknownCommand is returned for a command name outside Commands.
var ErrUnknownCommand = errors.New("unknown editor command")

// ParseCommand validates a command name.
func ParseCommand(s string) (Command, error) {
	for _, c := range Commands {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// ListKind selects the list element used by ToggleList.
type ListKind string

const (
	BulletList   ListKind = "ul"
	NumberedList ListKind = "ol"
)

func (k ListKind) atom() atom.Atom {
	if k == NumberedList {
		return atom.Ol
	}
	return atom.Ul
}

// Exec applies cmd to the selected block.
func (e *Editor) Exec(cmd Command) error {
	switch cmd {
	case CmdBold:
		return e.mutate(func() error { toggleWrap(e.current(), atom.Strong); return nil })
	case CmdItalic:
		return e.mutate(func() error { toggleWrap(e.current(), atom.Em); return nil })
	case CmdHeading1:
		return e.mutate(func() error { e.heading(atom.H1); return nil })
	case CmdHeading2:
		return e.mutate(func() error { e.heading(atom.H2); return nil })
	case CmdBulletList:
		return e.ToggleList(BulletList)
	case CmdNumberedList:
		return e.ToggleList(NumberedList)
	case CmdAlignLeft:
		return e.align("left")
	case CmdAlignCenter:
		return e.align("center")
	case CmdAlignRight:
		return e.align("right")
	case CmdUndo:
		e.Undo()
		return nil
	case CmdRedo:
		e.Redo()
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

// ToggleList removes list formatting when the selected block is a list item
// and wraps it in a kind list otherwise. Repeated toggles never nest lists.
func (e *Editor) ToggleList(kind ListKind) error {
	return e.mutate(func() error {
		b := e.current()
		if isElement(b, atom.Li) && isList(b.Parent) {
			e.outdent(b)
			return nil
		}
		e.wrapInList(b, kind.atom())
		return nil
	})
}

func (e *Editor) heading(level atom.Atom) {
	b := e.current()
	if isElement(b, atom.Li) {
		toggleWrap(b, level)
		return
	}
	if !retaggable[b.DataAtom] {
		return
	}
	if b.DataAtom == level {
		retag(b, atom.P)
		return
	}
	retag(b, level)
}

func (e *Editor) align(value string) error {
	return e.mutate(func() error {
		setTextAlign(e.current(), value)
		return nil
	})
}

// outdent lifts li out of its list. Items after li move to a new list of the
// same kind so document order is kept.
func (e *Editor) outdent(li *html.Node) {
	list := li.Parent

	var lifted *html.Node
	if kids := significant(li); len(kids) == 1 && isBlock(kids[0]) {
		lifted = kids[0]
		li.RemoveChild(lifted)
	} else {
		lifted = newElement(atom.P)
		moveChildren(li, lifted)
		if s := getAttr(li, "style"); s != "" {
			setAttr(lifted, "style", s)
		}
	}

	var tail *html.Node
	for n := li.NextSibling; n != nil; {
		next := n.NextSibling
		if tail == nil {
			tail = newElement(list.DataAtom)
		}
		list.RemoveChild(n)
		tail.AppendChild(n)
		n = next
	}
	list.RemoveChild(li)

	insertAfter(e.root, list, lifted)
	if tail != nil && hasElementChild(tail) {
		insertAfter(e.root, lifted, tail)
	}
	if !hasElementChild(list) {
		e.root.RemoveChild(list)
	}
	e.selectNode(lifted)
}

// wrapInList turns block b into an item of a list, joining a neighbouring
// list of the same kind.
func (e *Editor) wrapInList(b *html.Node, listAtom atom.Atom) {
	next := b.NextSibling
	prev := prevElement(b)
	e.root.RemoveChild(b)

	li := newElement(atom.Li)
	if isElement(b, atom.P) || isElement(b, atom.Div) {
		moveChildren(b, li)
		if s := getAttr(b, "style"); s != "" {
			setAttr(li, "style", s)
		}
	} else {
		li.AppendChild(b)
	}

	var list *html.Node
	if isElement(prev, listAtom) {
		list = prev
		list.AppendChild(li)
	} else {
		list = newElement(listAtom)
		list.AppendChild(li)
		e.root.InsertBefore(list, next)
	}
	if following := nextElement(list); isElement(following, listAtom) {
		moveChildren(following, list)
		e.root.RemoveChild(following)
	}
	e.selectNode(li)
}
