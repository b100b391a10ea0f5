// Package views renders the pages of the web host as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

// writer accumulates the first write error so components can emit markup
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) open(tag, class string) {
	if class == "" {
		w.raw("<" + tag + ">")
		return
	}
	w.raw("<" + tag + ` class="` + templ.EscapeString(class) + `">`)
}

func (w *writer) close(tag string) {
	w.raw("</" + tag + ">")
}

func (w *writer) link(href, class, label string) {
	w.raw(`<a href="` + templ.EscapeString(string(templ.URL(href))) + `"`)
	if class != "" {
		w.raw(` class="` + templ.EscapeString(class) + `"`)
	}
	w.raw(">")
	w.text(label)
	w.raw("</a>")
}

func (w *writer) render(ctx context.Context, c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

// component adapts a markup function to templ.Component.
func component(fn func(ctx context.Context, w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		fn(ctx, w)
		return w.err
	})
}

// classes merges Tailwind class lists, later classes winning over conflicting earlier ones.
func classes(base string, extra ...string) string {
	return twmerge.Merge(append([]string{base}, extra...)...)
}

const (
	headingClass = "text-xl font-semibold text-stone-900 mb-4"
	tableClass   = "w-full text-left text-sm border-collapse"
	cellClass    = "px-3 py-2 border-b border-stone-200 align-top"
	headerClass  = "px-3 py-2 border-b-2 border-stone-300 font-medium text-stone-600"
	mutedClass   = "text-stone-500 text-sm"
)

// table renders headers and rows. Cells are escaped.
func table(w *writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		w.open("p", mutedClass)
		w.text("No records.")
		w.close("p")
		return
	}

	w.open("table", tableClass)
	w.open("thead", "")
	w.open("tr", "")
	for _, h := range headers {
		w.open("th", headerClass)
		w.text(h)
		w.close("th")
	}
	w.close("tr")
	w.close("thead")
	w.open("tbody", "")
	for _, row := range rows {
		w.open("tr", "")
		for _, cell := range row {
			w.open("td", cellClass)
			w.text(cell)
			w.close("td")
		}
		w.close("tr")
	}
	w.close("tbody")
	w.close("table")
}

func heading(w *writer, title string) {
	w.open("h1", headingClass)
	w.text(title)
	w.close("h1")
}

func count(w *writer, n int, noun string) {
	w.open("p", classes(mutedClass, "mb-2"))
	w.text(fmt.Sprintf("%d %s", n, noun))
	w.close("p")
}

func formatAttributes(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for k, v := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
