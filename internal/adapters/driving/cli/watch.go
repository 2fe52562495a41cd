package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep a directory's documents ingested",
	Long: `Ingests every supported file under a directory, then watches it and
re-ingests files as they change. Removed files are deleted from docqa.

Document ids are the file paths relative to the directory, so
'docqa ask notes/paper.md "..."' works for a watched file.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchAction is what a file system event asks the watcher to do.
type watchAction int

const (
	watchIgnore watchAction = iota
	watchIngest
	watchDelete
)

// dirWatcher mirrors the supported files of a directory into documents.
type dirWatcher struct {
	root      string
	owner     string
	supported map[string]bool
	out       func(format string, args ...any)
}

func newDirWatcher(root, owner string, out func(string, ...any)) *dirWatcher {
	w := &dirWatcher{root: root, owner: owner, out: out}
	if normaliserRegistry != nil {
		w.supported = make(map[string]bool)
		for _, t := range normaliserRegistry.SupportedMIMETypes() {
			w.supported[t] = true
		}
	}
	return w
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil || documentService == nil {
		return notConfigured("ingest")
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	ctx := cmd.Context()
	w := newDirWatcher(root, currentOwner(), cmd.Printf)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	count, err := w.scan(ctx, watcher)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (%d documents). Press Ctrl+C to stop.\n", root, count)

	return w.run(ctx, watcher)
}

// scan ingests every supported file and registers each directory with the watcher.
func (w *dirWatcher) scan(ctx context.Context, watcher *fsnotify.Watcher) (int, error) {
	count := 0
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != w.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		if !w.isSupported(path) {
			return nil
		}
		if err := w.ingest(ctx, path); err != nil {
			w.out("  skipped %s: %v\n", w.documentID(path), err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("scan %s: %w", w.root, err)
	}
	return count, nil
}

func (w *dirWatcher) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.apply(ctx, watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

func (w *dirWatcher) apply(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
			if err := watcher.Add(event.Name); err != nil {
				logger.Warn("watch %s: %v", event.Name, err)
			}
			return
		}
	}

	id := w.documentID(event.Name)
	switch w.classify(event) {
	case watchIngest:
		if err := w.ingest(ctx, event.Name); err != nil {
			w.out("  failed %s: %v\n", id, err)
			return
		}
		w.out("  ingested %s\n", id)
	case watchDelete:
		err := documentService.Delete(ctx, w.owner, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			w.out("  failed to delete %s: %v\n", id, err)
			return
		}
		if err == nil {
			w.out("  deleted %s\n", id)
		}
	case watchIgnore:
	}
}

// classify maps an event to an action. Hidden files, directories and
// unsupported types are ignored, as are chmod-only events.
func (w *dirWatcher) classify(event fsnotify.Event) watchAction {
	if isHidden(filepath.Base(event.Name)) || !w.isSupported(event.Name) {
		return watchIgnore
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return watchDelete
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return watchIgnore
		}
		return watchIngest
	default:
		return watchIgnore
	}
}

func (w *dirWatcher) ingest(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	raw := &domain.RawDocument{URI: path, Content: content}
	title, text, err := extractText(ctx, raw)
	if err != nil {
		return err
	}
	_, err = ingestService.IngestDocument(ctx, w.owner, w.documentID(path), title, text)
	return err
}

// documentID is the slash-separated path relative to the watched root.
func (w *dirWatcher) documentID(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *dirWatcher) isSupported(path string) bool {
	if w.supported == nil {
		return strings.EqualFold(filepath.Ext(path), ".txt")
	}
	return w.supported[normalisers.TypeByExtension(path)]
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
