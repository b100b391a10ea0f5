package main

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/alkmst-xyz/sweetcorn-web/internal/httperr"
	mw "github.com/alkmst-xyz/sweetcorn-web/internal/middleware"
	"github.com/alkmst-xyz/sweetcorn-web/internal/telemetry"
	"github.com/alkmst-xyz/sweetcorn-web/pkg/logger"
	"github.com/alkmst-xyz/sweetcorn-web/ui"
	"github.com/alkmst-xyz/sweetcorn-web/web/api"
	"github.com/alkmst-xyz/sweetcorn-web/web/health"
	"github.com/alkmst-xyz/sweetcorn-web/web/loaders"
	"github.com/alkmst-xyz/sweetcorn-web/web/views"
)

// dataSuffix is appended to a page path to get its loader output as JSON.
const dataSuffix = "/__data.json"

// page describes one routed page. load may be nil for pages without data.
type page struct {
	pattern string
	title   string
	nav     string
	load    loaders.Loader
	view    func(r *http.Request, data any) templ.Component
}

// pageData is the JSON body of a data route.
type pageData struct {
	Layout *loaders.LayoutData `json:"layout"`
	Page   any                 `json:"page"`
}

type server struct {
	client *api.Client
	health *health.Checker
	log    *logger.Logger
}

// typed adapts a view over its concrete loader output.
func typed[T any](fn func(*http.Request, T) templ.Component) func(*http.Request, any) templ.Component {
	return func(r *http.Request, data any) templ.Component {
		return fn(r, data.(T))
	}
}

func pages() ([]page, error) {
	about, err := prerender(views.AboutPage())
	if err != nil {
		return nil, err
	}

	return []page{
		{
			pattern: "/",
			title:   "Home",
			nav:     "/",
			view:    func(*http.Request, any) templ.Component { return views.Home() },
		},
		{
			pattern: "/logs",
			title:   "Logs",
			nav:     "/logs",
			load:    loaders.Adapt(loaders.Logs),
			view: typed(func(_ *http.Request, d *loaders.LogsData) templ.Component {
				return views.LogsPage(d)
			}),
		},
		{
			pattern: "/metrics",
			title:   "Metrics",
			nav:     "/metrics",
			load:    loaders.Adapt(loaders.Metrics),
			view: typed(func(_ *http.Request, d *loaders.MetricsData) templ.Component {
				return views.MetricsPage(d)
			}),
		},
		{
			pattern: "/traces",
			title:   "Traces",
			nav:     "/traces",
			load:    loaders.Adapt(loaders.Traces),
			view: typed(func(r *http.Request, d *loaders.TracesData) templ.Component {
				return views.TracesPage(d, r.URL.Query().Get("service"))
			}),
		},
		{
			pattern: "/traces/{traceID}",
			title:   "Trace",
			nav:     "/traces",
			load:    loaders.Adapt(loaders.Trace),
			view: typed(func(_ *http.Request, d *loaders.TraceData) templ.Component {
				return views.TracePage(d)
			}),
		},
		{
			pattern: "/dependencies",
			title:   "Dependencies",
			nav:     "/dependencies",
			load:    loaders.Adapt(loaders.Dependencies),
			view: typed(func(_ *http.Request, d *loaders.DependenciesData) templ.Component {
				return views.DependenciesPage(d)
			}),
		},
		{
			pattern: "/about",
			title:   "About",
			nav:     "/about",
			load:    loaders.Adapt(loaders.About),
			view:    func(*http.Request, any) templ.Component { return about },
		},
	}, nil
}

// prerender renders a static component once and replays the bytes.
func prerender(c templ.Component) (templ.Component, error) {
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		return nil, err
	}
	html := buf.Bytes()
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := w.Write(html)
		return err
	}), nil
}

// newRouter builds the page host.
func newRouter(s *server) (http.Handler, error) {
	routes, err := pages()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(s.log))
	r.Use(mw.Recovery(s.log))
	r.Use(telemetry.NameSpans)

	r.Handle(ui.Prefix+"*", ui.Handler())
	r.Get("/health", s.health.Handler())

	for _, p := range routes {
		r.Get(p.pattern, s.servePage(p))
		r.Get(dataPath(p.pattern), s.serveData(p))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, httperr.NewNotFoundError("page not found"), false)
	})

	return r, nil
}

func dataPath(pattern string) string {
	if pattern == "/" {
		return dataSuffix
	}
	return pattern + dataSuffix
}

// load runs the layout and page loaders concurrently.
func (s *server) load(r *http.Request, p page) (*loaders.LayoutData, any, error) {
	ev := loaders.Event{
		Client: s.client,
		Params: routeParams(r),
		Query:  r.URL.Query(),
	}

	var (
		layout *loaders.LayoutData
		data   any
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		layout, err = loaders.Layout(ctx, ev)
		return err
	})
	if p.load != nil {
		g.Go(func() error {
			var err error
			data, err = p.load(ctx, ev)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return layout, data, nil
}

func (s *server) servePage(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		layout, data, err := s.load(r, p)
		if err != nil {
			s.fail(w, r, err, false)
			return
		}
		render(w, r, http.StatusOK, views.Layout(p.title, p.nav, layout.Status, p.view(r, data)))
	}
}

func (s *server) serveData(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		layout, data, err := s.load(r, p)
		if err != nil {
			s.fail(w, r, err, true)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, pageData{Layout: layout, Page: data})
	}
}

// fail maps err to a status and writes an error page, or a JSON error body for
// data routes. A request canceled by the client gets no body.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error, asJSON bool) {
	e := httperr.FromError(err).WithRequestID(middleware.GetReqID(r.Context()))
	log := s.log.WithContext(r.Context())

	if e.Code == httperr.CodeClientClosed {
		log.Info("client closed request", "path", r.URL.Path)
		w.WriteHeader(e.HTTPStatusCode())
		return
	}

	if e.HTTPStatusCode() >= http.StatusInternalServerError {
		log.Error("page load failed", "path", r.URL.Path, "code", e.Code, "error", err)
	} else {
		log.Warn("page load rejected", "path", r.URL.Path, "code", e.Code, "error", err)
	}

	if asJSON {
		httperr.WriteError(w, e)
		return
	}
	render(w, r, e.HTTPStatusCode(), views.Layout("Error", "", nil, views.ErrorPage(e)))
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status)).ServeHTTP(w, r)
}

func routeParams(r *http.Request) map[string]string {
	params := map[string]string{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
