package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/alkmst-xyz/sweetcorn-web/web/api"
)

// NavItem is one entry of the page navigation.
type NavItem struct {
	Href  string
	Label string
}

// Nav lists the pages in navigation order.
var Nav = []NavItem{
	{Href: "/", Label: "Home"},
	{Href: "/logs", Label: "Logs"},
	{Href: "/metrics", Label: "Metrics"},
	{Href: "/traces", Label: "Traces"},
	{Href: "/dependencies", Label: "Dependencies"},
	{Href: "/about", Label: "About"},
}

const (
	navLinkClass   = "px-3 py-1 rounded text-stone-700 hover:bg-stone-200"
	activeNavClass = "bg-stone-900 text-white hover:bg-stone-900"
	badgeClass     = "ml-auto px-2 py-0.5 rounded text-xs font-medium bg-red-100 text-red-800"
	badgeOKClass   = "bg-green-100 text-green-800"
)

// Layout wraps content in the page chrome. status is the backend health shown
// in the header; nil renders as unknown.
func Layout(title, active string, status *api.StatusResponse, content templ.Component) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw("<title>")
		w.text(title + " | sweetcorn")
		w.raw("</title>")
		w.raw(`<link rel="stylesheet" href="/assets/app.css"></head>`)

		w.open("body", "bg-stone-50 text-stone-900 font-sans")
		w.open("header", "flex items-center gap-2 px-6 py-3 border-b border-stone-200 bg-white")
		w.open("span", "font-bold mr-4")
		w.text("sweetcorn")
		w.close("span")
		for _, item := range Nav {
			class := navLinkClass
			if item.Href == active {
				class = classes(navLinkClass, activeNavClass)
			}
			w.link(item.Href, class, item.Label)
		}
		statusBadge(w, status)
		w.close("header")

		w.open("main", "px-6 py-6")
		w.render(ctx, content)
		w.close("main")
		w.close("body")
		w.raw("</html>")
	})
}

func statusBadge(w *writer, status *api.StatusResponse) {
	label := "backend: unknown"
	class := badgeClass
	if status != nil && status.Status != "" {
		label = "backend: " + status.Status
		class = classes(badgeClass, badgeOKClass)
	}
	w.open("span", class)
	w.text(label)
	w.close("span")
}
