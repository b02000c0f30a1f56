package core

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Route binds a request path to the page template rendered for it.
// LiveReload marks pages that get the reload client in dev when the
// liveReload config key is on.
type Route struct {
	Path       string
	Template   string
	LiveReload bool
}

var Routes = []Route{
	{Path: "/", Template: "index.html", LiveReload: true},
	{Path: "/healthz", Template: "health.html"},
}

// TemplateNames lists the templates the route table needs.
func TemplateNames() []string {
	names := make([]string, 0, len(Routes))
	for _, route := range Routes {
		names = append(names, route.Template)
	}
	return names
}

// LookupRoute returns the route registered for path.
func LookupRoute(path string) (Route, error) {
	for _, route := range Routes {
		if route.Path == path {
			return route, nil
		}
	}
	return Route{}, fmt.Errorf("%q: %w", path, ErrUnknownRoute)
}

type RuntimeContext struct {
	Env    string
	Logger logrus.FieldLogger
}

type Router struct {
	config    Config
	env       string
	templates *Templates
	logger    logrus.FieldLogger
	mux       *mux.Router
}

func NewRouter(config Config, templates *Templates, ctx RuntimeContext) *Router {
	logger := ctx.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := &Router{
		config:    config,
		env:       ctx.Env,
		templates: templates,
		logger:    logger,
		mux:       mux.NewRouter(),
	}

	for _, route := range Routes {
		r.mux.HandleFunc(route.Path, r.pageHandler(route)).Methods(http.MethodGet, http.MethodHead)
	}

	return r
}

// Mux exposes the underlying router so the server can mount static files
// and the reload socket next to the pages.
func (r *Router) Mux() *mux.Router {
	return r.mux
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) pageHandler(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, gz, err := r.renderPage(route)
		if err != nil {
			r.logger.WithError(err).WithField("template", route.Template).Error("render failed")
			http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		header := w.Header()
		etag := generateETag(body)
		if gz != nil {
			header.Set("Vary", "Accept-Encoding")
			if AcceptsGzip(req) {
				header.Set("Content-Encoding", "gzip")
				body = gz
				etag = gzipETag(etag)
			}
		}

		header.Set("Content-Type", "text/html; charset=utf-8")
		header.Set("ETag", etag)
		if r.config.DebugHeaders {
			header.Set("X-Hello-Route", route.Template)
		}
		if r.env == "dev" {
			header.Set("Cache-Control", "no-store")
		}

		if match := req.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		header.Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if req.Method != http.MethodHead {
			w.Write(body)
		}
	}
}

// renderPage returns the page body and, when the page cache is on, its gzip
// encoding.
func (r *Router) renderPage(route Route) ([]byte, []byte, error) {
	if r.env == "dev" {
		body, err := r.templates.Render(route.Template)
		if err != nil {
			return nil, nil, err
		}
		if r.config.LiveReload && route.LiveReload {
			body = injectReloadScript(body)
		}
		return body, nil, nil
	}

	if !r.config.CacheEnabled {
		body, err := r.templates.Render(route.Template)
		return body, nil, err
	}

	key := CacheKey(route.Path)
	if body, ok := GetCachedHTML(r.config, key); ok {
		if gz, ok := GetCachedGzip(r.config, key); ok {
			return body, gz, nil
		}
	}

	body, err := r.templates.Render(route.Template)
	if err != nil {
		return nil, nil, err
	}

	if err := SaveCachedHTML(r.config, key, body); err != nil {
		r.logger.WithError(err).WithField("route", route.Path).Warn("cache write failed")
	}

	gz, err := gzipBytes(body)
	if err != nil {
		return body, nil, nil
	}
	return body, gz, nil
}

func generateETag(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// gzipETag derives the validator of the gzip encoding from the plain one.
func gzipETag(etag string) string {
	return strings.TrimSuffix(etag, `"`) + `-gzip"`
}

func AcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
