package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-barry/hello/core"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
)

type routeInfo struct {
	Path     string `json:"path"`
	Template string `json:"template"`
	Present  bool   `json:"present"`
}

type siteInfo struct {
	TemplatesDir string      `json:"templatesDir"`
	StaticDir    string      `json:"staticDir"`
	OutputDir    string      `json:"outputDir"`
	CacheEnabled bool        `json:"cache"`
	LiveReload   bool        `json:"liveReload"`
	DebugHeaders bool        `json:"debugHeaders"`
	DebugLogs    bool        `json:"debugLogs"`
	Routes       []routeInfo `json:"routes"`
	Components   int         `json:"components"`
	CachedPages  int         `json:"cachedPages"`
}

func collectInfo(config core.Config) siteInfo {
	info := siteInfo{
		TemplatesDir: config.TemplatesDir,
		StaticDir:    config.StaticDir,
		OutputDir:    config.OutputDir,
		CacheEnabled: config.CacheEnabled,
		LiveReload:   config.LiveReload,
		DebugHeaders: config.DebugHeaders,
		DebugLogs:    config.DebugLogs,
	}

	for _, route := range core.Routes {
		_, err := os.Stat(filepath.Join(config.TemplatesDir, route.Template))
		info.Routes = append(info.Routes, routeInfo{
			Path:     route.Path,
			Template: route.Template,
			Present:  err == nil,
		})
	}

	components, _ := filepath.Glob(filepath.Join(config.TemplatesDir, "components", "*.html"))
	info.Components = len(components)

	filepath.Walk(config.OutputDir, func(path string, fi os.FileInfo, err error) error {
		if err == nil && !fi.IsDir() && strings.HasSuffix(path, ".html") {
			info.CachedPages++
		}
		return nil
	})

	return info
}

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print config, route table and cache summary",
	Flags: []cli.Flag{
		configFlag,
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the summary as JSON",
		},
	},
	Action: func(c *cli.Context) error {
		info := collectInfo(core.LoadConfig(c.String("config")))
		out := c.App.Writer

		if c.Bool("json") {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Fprintln(out, "📁 Templates Directory:", info.TemplatesDir)
		fmt.Fprintln(out, "📁 Static Directory:", info.StaticDir)
		fmt.Fprintln(out, "📁 Output Directory:", info.OutputDir)
		fmt.Fprintln(out, "🔁 Cache Enabled:", info.CacheEnabled)
		fmt.Fprintln(out, "🔁 Live Reload Enabled:", info.LiveReload)
		fmt.Fprintln(out, "🔁 Debug Headers Enabled:", info.DebugHeaders)
		fmt.Fprintln(out, "🔁 Debug Logs Enabled:", info.DebugLogs)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "🗂️  Routes:")
		for _, route := range info.Routes {
			mark := "✅"
			if !route.Present {
				mark = "❌"
			}
			fmt.Fprintf(out, "  %s %-10s → %s\n", mark, route.Path, route.Template)
		}
		fmt.Fprintln(out, "📦 Components Found:", info.Components)
		fmt.Fprintln(out, "💾 Cached Pages:", info.CachedPages)

		return nil
	},
}
