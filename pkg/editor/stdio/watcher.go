package stdio

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/papercomputeco/inlay/pkg/authorship"
	"github.com/papercomputeco/inlay/pkg/editor"
)

// Watch synthesizes document-saved events from filesystem writes under the
// given paths. Editors that do not forward save events can rely on this
// instead; an extension that does forward them should not also be watched,
// or saves will invalidate twice (harmless but wasteful).
//
// Watch returns once the watcher is registered; delivery runs until ctx is
// cancelled.
func (h *Host) Watch(ctx context.Context, paths ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				doc := FileDocumentID(ev.Name)
				h.logger.Debug("filesystem save observed", zap.String("document", doc.String()))

				select {
				case h.saves <- editor.DocumentEvent{Document: doc}:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				h.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}

// FileDocumentID derives the document identifier for a filesystem path,
// matching the file URI scheme editors use.
func FileDocumentID(path string) authorship.DocumentID {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return authorship.DocumentID("file://" + filepath.ToSlash(abs))
}
