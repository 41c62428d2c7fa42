// Package views holds the server-rendered pages of the public site and the
// admin console.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yigit/academy/internal/pkg/editor"
)

//go:embed templates/*.html static
var files embed.FS

// Funcs is the function map shared by every page.
var Funcs = template.FuncMap{
	"date":         formatDate,
	"price":        formatPrice,
	"join":         strings.Join,
	"rawHTML":      rawHTML,
	"add":          func(a, b int) int { return a + b },
	"seq":          seq,
	"commandLabel": commandLabel,
}

// Templates parses every embedded page into one set. Pages are looked up by
// file name, e.g. "admin_courses.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html")
}

// Static serves the embedded stylesheets under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(fmt.Sprintf("views: static files: %v", err))
	}
	return http.FS(sub)
}

// MustTemplates is Templates for router setup.
func MustTemplates() *template.Template {
	t, err := Templates()
	if err != nil {
		panic(fmt.Sprintf("views: parse templates: %v", err))
	}
	return t
}

// seq returns 0..n-1 for ranging in templates.
func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatPrice(p *float64) string {
	if p == nil || *p == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", *p)
}

// rawHTML marks lesson content as safe. Content is written by signed-in
// admins only.
func rawHTML(s string) template.HTML {
	return template.HTML(s) // #nosec G203
}

var commandLabels = map[editor.Command]string{
	editor.CmdBold:         "B",
	editor.CmdItalic:       "I",
	editor.CmdHeading1:     "H1",
	editor.CmdHeading2:     "H2",
	editor.CmdBulletList:   "• List",
	editor.CmdNumberedList: "1. List",
	editor.CmdAlignLeft:    "Left",
	editor.CmdAlignCenter:  "Center",
	editor.CmdAlignRight:   "Right",
	editor.CmdUndo:         "Undo",
	editor.CmdRedo:         "Redo",
}

func commandLabel(c editor.Command) string {
	if l, ok := commandLabels[c]; ok {
		return l
	}
	return string(c)
}
