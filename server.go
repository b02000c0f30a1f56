package hello

import (
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-barry/hello/core"
	"github.com/sirupsen/logrus"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 5000

	immutableCache = "public, max-age=31536000, immutable"
)

// CacheMode overrides the config file's cache setting from the command line.
type CacheMode int

const (
	CacheFromConfig CacheMode = iota
	CacheOn
	CacheOff
)

type RuntimeConfig struct {
	Env        string
	Cache      CacheMode
	Host       string
	Port       int
	ConfigPath string
}

// App is a fully wired site: templates loaded, routes registered and, in
// dev, the template watcher running. The live reload socket is only mounted
// when the config turns liveReload on.
type App struct {
	Config  core.Config
	Logger  *logrus.Logger
	Handler http.Handler

	watcher *core.TemplateWatcher
}

// New loads config and templates and builds the handler tree. A missing
// page template is returned as an error wrapping core.ErrTemplateNotFound.
func New(cfg RuntimeConfig) (*App, error) {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = core.DefaultConfigPath
	}

	config := core.LoadConfig(configPath)
	switch cfg.Cache {
	case CacheOn:
		config.CacheEnabled = true
	case CacheOff:
		config.CacheEnabled = false
	}
	if cfg.Env == "dev" {
		config.CacheEnabled = false
	}

	logger := core.NewLogger(cfg.Env, config)

	funcs := core.TemplateFuncs(core.AssetContext{
		Env:       cfg.Env,
		StaticDir: config.StaticDir,
		CacheDir:  config.OutputDir,
	})
	templates, err := core.LoadTemplates(config.TemplatesDir, core.TemplateNames(), funcs)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	if config.CacheEnabled {
		if err := core.PurgeCache(config, ""); err != nil {
			if errors.Is(err, core.ErrUnsafePurge) {
				return nil, fmt.Errorf("outputDir %s: %w", config.OutputDir, err)
			}
			logger.WithError(err).Warn("could not clear page cache")
		}
	}

	router := core.NewRouter(config, templates, core.RuntimeContext{
		Env:    cfg.Env,
		Logger: logger,
	})
	m := router.Mux()
	m.PathPrefix("/static/").Handler(staticHandler(cfg.Env, config))

	app := &App{Config: config, Logger: logger}

	if cfg.Env == "dev" {
		var onReload func()
		if config.LiveReload {
			reloader := core.NewLiveReloader()
			m.HandleFunc(core.ReloadPath, reloader.Handler)
			onReload = reloader.BroadcastReload
		}

		watcher, err := core.NewTemplateWatcher(templates, onReload, logger)
		if err != nil {
			logger.WithError(err).Warn("template watching disabled")
		} else {
			app.watcher = watcher
		}
	}

	app.Handler = core.LogHandler(router, logger.WithField("entity", "http"))
	return app, nil
}

func (a *App) Close() error {
	if a.watcher != nil {
		return a.watcher.Close()
	}
	return nil
}

var ListenAndServe = func(server *http.Server) error {
	return server.ListenAndServe()
}

var Start = func(cfg RuntimeConfig) error {
	app, err := New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	server := &http.Server{
		Addr:              addr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app.Logger.WithFields(logrus.Fields{
		"env":       cfg.Env,
		"templates": app.Config.TemplatesDir,
		"cache":     app.Config.CacheEnabled,
	}).Infof("hello running at http://%s", addr)

	return ListenAndServe(server)
}

// staticHandler serves /static/ from the static dir. In prod, minified and
// pre-gzipped copies under outputDir/static win over the originals.
func staticHandler(env string, config core.Config) http.HandlerFunc {
	cacheStaticDir := filepath.Join(config.OutputDir, "static")

	return func(w http.ResponseWriter, r *http.Request) {
		rel := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, "/static/")), "/")
		if rel == "" {
			http.NotFound(w, r)
			return
		}
		rel = filepath.FromSlash(rel)

		if env == "dev" {
			publicFile := filepath.Join(config.StaticDir, rel)
			if !isFile(publicFile) {
				http.NotFound(w, r)
				return
			}
			serveFileWithHeaders(w, r, publicFile, "no-store")
			return
		}

		cachedFile := filepath.Join(cacheStaticDir, rel)
		if core.AcceptsGzip(r) && isFile(cachedFile+".gz") {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")
			w.Header().Set("Content-Type", detectMimeType(cachedFile))
			w.Header().Set("Cache-Control", immutableCache)
			http.ServeFile(w, r, cachedFile+".gz")
			return
		}

		for _, file := range []string{cachedFile, filepath.Join(config.StaticDir, rel)} {
			if isFile(file) {
				serveFileWithHeaders(w, r, file, immutableCache)
				return
			}
		}

		http.NotFound(w, r)
	}
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, file, cacheControl string) {
	w.Header().Set("Content-Type", detectMimeType(file))
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, file)
}

func detectMimeType(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	switch ext {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
