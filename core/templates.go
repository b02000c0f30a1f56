package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const layoutEntry = "layout"

type page struct {
	tmpl  *template.Template
	entry string
}

// Templates holds the parsed page templates of a fixed set of names. It is
// safe for concurrent use; Reload swaps the whole set at once.
type Templates struct {
	dir   string
	names []string
	funcs template.FuncMap

	lock  sync.RWMutex
	pages map[string]*page
}

// LoadTemplates parses every name under dir. A missing page or layout file
// is reported with an error wrapping ErrTemplateNotFound.
func LoadTemplates(dir string, names []string, funcs template.FuncMap) (*Templates, error) {
	t := &Templates{
		dir:   dir,
		names: append([]string(nil), names...),
		funcs: funcs,
	}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Templates) Dir() string {
	return t.dir
}

func (t *Templates) Names() []string {
	names := append([]string(nil), t.names...)
	sort.Strings(names)
	return names
}

// Reload re-parses all pages. On error the current set is left untouched.
func (t *Templates) Reload() error {
	components, err := t.components()
	if err != nil {
		return err
	}

	pages := make(map[string]*page, len(t.names))
	for _, name := range t.names {
		p, err := t.parsePage(name, components)
		if err != nil {
			return err
		}
		pages[name] = p
	}

	t.lock.Lock()
	t.pages = pages
	t.lock.Unlock()
	return nil
}

// Render executes the named page with empty data.
func (t *Templates) Render(name string) ([]byte, error) {
	t.lock.RLock()
	p, ok := t.pages[name]
	t.lock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, p.entry, map[string]interface{}{}); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (t *Templates) parsePage(name string, components []string) (*page, error) {
	htmlPath := filepath.Join(t.dir, name)
	content, err := os.ReadFile(htmlPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", htmlPath, ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", htmlPath, err)
	}

	tmpl, err := template.New(name).Funcs(t.funcs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", htmlPath, err)
	}

	entry := name
	if layout := getLayoutPath(content); layout != "" {
		layoutPath := filepath.Join(t.dir, layout)
		if _, err := os.Stat(layoutPath); err != nil {
			return nil, fmt.Errorf("layout %s for %s: %w", layoutPath, name, ErrTemplateNotFound)
		}
		if tmpl, err = tmpl.ParseFiles(layoutPath); err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", layoutPath, err)
		}
		entry = layoutEntry
	}

	if len(components) > 0 {
		if tmpl, err = tmpl.ParseFiles(components...); err != nil {
			return nil, fmt.Errorf("parse components: %w", err)
		}
	}

	if tmpl.Lookup(entry) == nil {
		return nil, fmt.Errorf("%s: no %q template defined", htmlPath, entry)
	}

	return &page{tmpl: tmpl, entry: entry}, nil
}

func (t *Templates) components() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(t.dir, "components", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// getLayoutPath reads a `<!-- layout: file.html -->` directive from the first
// non-blank line of a page.
func getLayoutPath(content []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "<!-- layout:") && strings.HasSuffix(line, "-->") {
			return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "<!-- layout:"), "-->"))
		}
		return ""
	}
	return ""
}
