package editor

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultImageAlt is used when an image is inserted without alt text.
const DefaultImageAlt = "Lesson image"

var (
	ErrEmptyURL         = errors.New("url is required")
	ErrEmptyLinkText    = errors.New("link text is required")
	ErrEmptyCode        = errors.New("code is required")
	ErrUnknownLanguage  = errors.New("unsupported code language")
	errMalformedSnippet = errors.New("malformed snippet")
)

// Language is a code block language.
type Language string

const (
	LangSQL        Language = "SQL"
	LangPython     Language = "Python"
	LangJavaScript Language = "JavaScript"
	LangHTML       Language = "HTML"
	LangCSS        Language = "CSS"
	LangBash       Language = "Bash"
	LangJSON       Language = "JSON"
)

// Languages is the fixed set offered by the code block dialog.
var Languages = []Language{LangSQL, LangPython, LangJavaScript, LangHTML, LangCSS, LangBash, LangJSON}

// ParseLanguage matches s against Languages ignoring case.
func ParseLanguage(s string) (Language, error) {
	for _, l := range Languages {
		if strings.EqualFold(string(l), strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// Class is the CSS class put on the code element.
func (l Language) Class() string {
	return "language-" + strings.ToLower(string(l))
}

var codeEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeCode escapes the characters that would otherwise be read as markup.
func EscapeCode(code string) string {
	return codeEscaper.Replace(code)
}

// CodeBlockHTML renders code as a fenced block annotated with lang.
func CodeBlockHTML(code string, lang Language) string {
	return `<pre><code class="` + lang.Class() + `">` + EscapeCode(code) + `</code></pre>`
}

// InsertImage appends an image to the selected block.
func (e *Editor) InsertImage(url, alt string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyURL
	}
	if strings.TrimSpace(alt) == "" {
		alt = DefaultImageAlt
	}
	img := newElement(atom.Img)
	img.Attr = []html.Attribute{{Key: "src", Val: url}, {Key: "alt", Val: alt}}
	return e.mutate(func() error {
		e.inline(img)
		return nil
	})
}

// InsertLink appends an anchor that opens in a new tab.
func (e *Editor) InsertLink(text, url string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyLinkText
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyURL
	}
	a := newElement(atom.A)
	a.Attr = []html.Attribute{
		{Key: "href", Val: url},
		{Key: "target", Val: "_blank"},
		{Key: "rel", Val: "noopener noreferrer"},
	}
	a.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return e.mutate(func() error {
		e.inline(a)
		return nil
	})
}

// InsertCodeBlock inserts a code block after the selected block and selects it.
func (e *Editor) InsertCodeBlock(code string, lang Language) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	if _, err := ParseLanguage(string(lang)); err != nil {
		return err
	}
	return e.mutate(func() error {
		nodes, err := html.ParseFragment(strings.NewReader(CodeBlockHTML(code, lang)), newElement(atom.Div))
		if err != nil {
			return err
		}
		if len(nodes) != 1 || !isElement(nodes[0], atom.Pre) {
			return errMalformedSnippet
		}
		e.insertBlock(nodes[0])
		return nil
	})
}

// inline appends n to the end of the selected block. Blocks that cannot hold
// phrasing content get a new paragraph after them.
func (e *Editor) inline(n *html.Node) {
	b := e.current()
	if isElement(b, atom.Hr) || isElement(b, atom.Table) {
		p := newElement(atom.P)
		insertAfter(e.root, b, p)
		p.AppendChild(n)
		e.selectNode(p)
		return
	}
	b.AppendChild(n)
}

func (e *Editor) insertBlock(n *html.Node) {
	e.normalize()
	bs := e.blocks()
	if len(bs) == 0 {
		e.root.AppendChild(n)
		e.selectNode(n)
		return
	}
	e.clampSelection()
	anchor := bs[e.selected]
	if isElement(anchor, atom.Li) {
		anchor = anchor.Parent
	}
	insertAfter(e.root, anchor, n)
	e.selectNode(n)
}
