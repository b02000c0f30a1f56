package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// TemplateWatcher reloads a template set whenever an .html file under its
// directory changes, then calls onReload.
type TemplateWatcher struct {
	watcher   *fsnotify.Watcher
	templates *Templates
	onReload  func()
	logger    logrus.FieldLogger
	done      chan struct{}
}

func NewTemplateWatcher(templates *Templates, onReload func(), logger logrus.FieldLogger) (*TemplateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dirs := []string{templates.Dir()}
	components := filepath.Join(templates.Dir(), "components")
	if info, err := os.Stat(components); err == nil && info.IsDir() {
		dirs = append(dirs, components)
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	tw := &TemplateWatcher{
		watcher:   w,
		templates: templates,
		onReload:  onReload,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go tw.loop()
	return tw, nil
}

func (tw *TemplateWatcher) loop() {
	defer close(tw.done)

	for {
		select {
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".html") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			tw.reload(event.Name)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.logger.WithError(err).Warn("template watcher error")
		}
	}
}

func (tw *TemplateWatcher) reload(changed string) {
	if err := tw.templates.Reload(); err != nil {
		tw.logger.WithError(err).WithField("file", changed).Error("template reload failed, keeping previous templates")
		return
	}

	tw.logger.WithField("file", changed).Info("templates reloaded")
	if tw.onReload != nil {
		tw.onReload()
	}
}

func (tw *TemplateWatcher) Close() error {
	err := tw.watcher.Close()
	<-tw.done
	return err
}
