// Package filesystem loads documents from a local directory tree.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// Ensure Loader implements the interfaces.
var (
	_ driven.DocumentLoader  = (*Loader)(nil)
	_ driven.WatchableLoader = (*Loader)(nil)
)

// Default configuration values.
var (
	// DefaultInclude matches the text formats worth comparing.
	DefaultInclude = []string{"**/*.md", "**/*.txt", "**/*.markdown"}

	// DefaultExclude skips directories that never hold prose.
	DefaultExclude = []string{"**/node_modules/**", "**/vendor/**", "**/.git/**"}
)

// DefaultMaxFileSize caps file reads at 10 MiB.
const DefaultMaxFileSize = 10 << 20

// Config holds filesystem loader configuration.
type Config struct {
	// Root is the directory to walk (required).
	Root string

	// Include is a list of doublestar glob patterns, relative to Root.
	Include []string

	// Exclude is a list of doublestar glob patterns, relative to Root.
	// Exclusion wins over inclusion.
	Exclude []string

	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64
}

// Loader walks a directory tree and loads matching files as documents.
// Document IDs are slash-separated paths relative to the root.
type Loader struct {
	root        string
	include     []string
	exclude     []string
	maxFileSize int64
}

// NewLoader creates a filesystem loader rooted at cfg.Root.
func NewLoader(cfg Config) (*Loader, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("filesystem: root directory is required: %w", domain.ErrInvalidConfig)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filesystem: root %s is not a directory: %w", root, domain.ErrInvalidConfig)
	}

	include := cfg.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	exclude := cfg.Exclude
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("filesystem: invalid glob pattern %q: %w", pattern, domain.ErrInvalidConfig)
		}
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Loader{
		root:        root,
		include:     include,
		exclude:     exclude,
		maxFileSize: maxSize,
	}, nil
}

// Name identifies the loader.
func (l *Loader) Name() string {
	return "filesystem"
}

// Load walks the root and returns all matching files as documents.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && l.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !l.matches(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > l.maxFileSize {
			logger.Debug("Skipping %s: %d bytes exceeds limit", rel, info.Size())
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}

		docs = append(docs, domain.Document{
			ID:      rel,
			URI:     "file://" + path,
			Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Content: string(content),
			Metadata: map[string]string{
				"extension": filepath.Ext(path),
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, err)
	}

	logger.Debug("Loaded %d documents from %s", len(docs), l.root)
	return docs, nil
}

// Watch blocks until a matching file changes under the root.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch every non-excluded directory; fsnotify does not recurse.
	err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && l.excluded(rel+"/") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", l.root, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			rel, err := filepath.Rel(l.root, event.Name)
			if err != nil {
				continue
			}
			if l.matches(filepath.ToSlash(rel)) {
				logger.Debug("Change detected: %s %s", event.Op, rel)
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// matches reports whether a relative path is included and not excluded.
func (l *Loader) matches(rel string) bool {
	if l.excluded(rel) {
		return false
	}
	for _, pattern := range l.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// excluded reports whether a relative path hits an exclusion pattern.
func (l *Loader) excluded(rel string) bool {
	for _, pattern := range l.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		// A directory prefix match excludes everything beneath it.
		if strings.HasSuffix(rel, "/") {
			if ok, _ := doublestar.Match(pattern, rel+"x"); ok {
				return true
			}
		}
	}
	return false
}
