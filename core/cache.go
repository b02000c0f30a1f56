package core

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CacheKey maps a request path to its directory under OutputDir.
func CacheKey(route string) string {
	key := strings.Trim(route, "/")
	if key == "" {
		return "index"
	}
	return filepath.FromSlash(key)
}

func GetCachedHTML(config Config, route string) ([]byte, bool) {
	return readCached(filepath.Join(config.OutputDir, route, "index.html"))
}

func GetCachedGzip(config Config, route string) ([]byte, bool) {
	return readCached(filepath.Join(config.OutputDir, route, "index.html.gz"))
}

func readCached(path string) ([]byte, bool) {
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return content, true
}

func SaveCachedHTML(config Config, routeKey string, html []byte) error {
	outDir := filepath.Join(config.OutputDir, routeKey)
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return err
	}

	htmlPath := filepath.Join(outDir, "index.html")
	if err := writeFileAtomic(htmlPath, html); err != nil {
		return err
	}

	gz, err := gzipBytes(html)
	if err != nil {
		return err
	}

	return writeFileAtomic(htmlPath+".gz", gz)
}

// writeFileAtomic writes data to a temp file next to name and renames it into
// place, so readers see either the old file or the complete new one.
func writeFileAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

// PurgeCache removes the cached pages of routeKey, or every cached page and
// asset when routeKey is empty. A missing directory is not an error. A target
// that is or contains the templates or static dir is refused with
// ErrUnsafePurge.
func PurgeCache(config Config, routeKey string) error {
	target := config.OutputDir
	if routeKey != "" {
		target = filepath.Join(config.OutputDir, routeKey)
	}

	if err := checkPurgeTarget(config, target); err != nil {
		return err
	}

	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("purge %s: %w", target, err)
	}
	return nil
}

func checkPurgeTarget(config Config, target string) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", target, err)
	}

	for _, dir := range []string{config.TemplatesDir, config.StaticDir} {
		if dir == "" {
			continue
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", dir, err)
		}
		if isWithin(absTarget, absDir) {
			return fmt.Errorf("%s holds %s: %w", target, dir, ErrUnsafePurge)
		}
	}
	return nil
}

// isWithin reports whether path is dir itself or below it.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
