package core

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

// AssetContext tells the asset helpers where sources live and where
// generated files go.
type AssetContext struct {
	Env       string
	StaticDir string
	CacheDir  string
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)
	return m
}

// MinifyAsset returns the URL of a minified copy of a /static/ css or js
// file, writing it under CacheDir/static. Outside prod, or on any failure,
// the original path is returned.
func MinifyAsset(ctx AssetContext, path string) string {
	if ctx.Env != "prod" {
		return path
	}

	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)

	var mediaType string
	switch ext {
	case ".css":
		mediaType = "text/css"
	case ".js":
		mediaType = "application/javascript"
	default:
		return path
	}

	if strings.Contains(name, ".min") {
		return path
	}

	src := filepath.Join(ctx.StaticDir, strings.TrimPrefix(path, "/static/"))
	original, err := os.ReadFile(src)
	if err != nil {
		return path
	}

	var buf bytes.Buffer
	if err := newMinifier().Minify(mediaType, &buf, bytes.NewReader(original)); err != nil {
		return path
	}
	minified := buf.Bytes()

	min := filepath.Join(ctx.CacheDir, "static", fmt.Sprintf("%s.min%s", name, ext))
	if err := os.MkdirAll(filepath.Dir(min), os.ModePerm); err != nil {
		return path
	}
	if err := writeFileAtomic(min, minified); err != nil {
		return path
	}

	if gz, err := gzipBytes(minified); err == nil {
		_ = writeFileAtomic(min+".gz", gz)
	}

	return fmt.Sprintf("/static/%s.min%s?v=%s", name, ext, shortHash(minified))
}

func shortHash(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])[:6]
}

// TemplateFuncs is sprig's HTML func map plus the site helpers.
func TemplateFuncs(ctx AssetContext) template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	funcs["minify"] = func(path string) string {
		return MinifyAsset(ctx, path)
	}
	funcs["safeHTML"] = func(s interface{}) template.HTML {
		switch val := s.(type) {
		case template.HTML:
			return val
		case string:
			return template.HTML(val)
		default:
			return ""
		}
	}
	funcs["versioned"] = func(path string) string {
		if !strings.HasPrefix(path, "/static/") {
			return path
		}

		rel := strings.TrimPrefix(path, "/static/")
		locations := []string{
			filepath.Join(ctx.StaticDir, rel),
			filepath.Join(ctx.CacheDir, "static", rel),
		}

		for _, file := range locations {
			if content, err := os.ReadFile(file); err == nil {
				return fmt.Sprintf("/static/%s?v=%s", rel, shortHash(content))
			}
		}

		return path
	}

	return funcs
}
