// Package store owns the on-disk memory layout: one directory per
// category under a single root, one markdown file per record, plus the
// generated index document.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/record"
)

// Common errors for store operations.
var (
	ErrNotFound        = errors.New("memory record not found")
	ErrMalformedRecord = errors.New("malformed memory record")
)

// IndexFile is the name of the generated index document at the store root.
const IndexFile = "memories.md"

// DefaultCategories are the recognized categories, created eagerly by
// EnsureLayout and listed first in the index, in this order.
var DefaultCategories = []string{
	"architecture",
	"preferences",
	"workflow",
	"tooling",
	"domain",
	"product",
}

// Store provides file read/write operations over a memory store root.
// It assumes a single invoking process; concurrent invocations against the
// same root are unsupported.
type Store struct {
	root       string
	categories []string
	logger     *zap.Logger
}

// New creates a store rooted at the given directory. categories may be nil
// to use DefaultCategories.
func New(root string, categories []string, logger *zap.Logger) *Store {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, categories: categories, logger: logger}
}

// Root returns the store root directory.
func (s *Store) Root() string { return s.root }

// Categories returns the recognized category list, in index order.
func (s *Store) Categories() []string { return s.categories }

// IndexPath returns the absolute path of the index document.
func (s *Store) IndexPath() string { return filepath.Join(s.root, IndexFile) }

// EnsureLayout creates the store root and one subdirectory per recognized
// category if absent. Idempotent.
func (s *Store) EnsureLayout() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create store root %s: %w", s.root, err)
	}
	for _, category := range s.categories {
		dir := filepath.Join(s.root, category)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create category directory %s: %w", dir, err)
		}
	}
	return nil
}

// Read loads and parses the record at the given absolute path.
func (s *Store) Read(path string) (record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return record.Record{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return record.Record{}, fmt.Errorf("read record %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return record.Record{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformedRecord, path)
	}
	return record.Parse(string(data)), nil
}

// Write renders and replaces the record file at the given absolute path,
// creating parent directories if needed. The content is written to a
// temporary file in the target directory and renamed into place so a
// failed write never leaves a truncated record.
func (s *Store) Write(path string, rec record.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".recall-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(record.Render(rec)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write record %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close record %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace record %s: %w", path, err)
	}

	s.logger.Debug("wrote record", zap.String("path", s.Rel(path)))
	return nil
}

// WriteRaw replaces an arbitrary file under the root with the given
// content using the same temp-and-rename discipline. Used for the index.
func (s *Store) WriteRaw(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".recall-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// UniquePath returns the first free record path for a slug within a
// category: slug.md if free, else slug-2.md, slug-3.md and so on.
func (s *Store) UniquePath(category, slug string) string {
	dir := filepath.Join(s.root, category)
	candidate := filepath.Join(dir, slug+".md")
	if !exists(candidate) {
		return candidate
	}
	for counter := 2; ; counter++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d.md", slug, counter))
		if !exists(candidate) {
			return candidate
		}
	}
}

// List returns the absolute paths of all record files under the store
// root, excluding the index file, in ascending path order.
func (s *Store) List() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		if path == s.IndexPath() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list records under %s: %w", s.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Rel returns the store-relative, slash-separated form of an absolute
// record path. Paths outside the root are returned unchanged.
func (s *Store) Rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Abs resolves a store-relative path to an absolute one. Absolute inputs
// pass through unchanged.
func (s *Store) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Category returns the category of a record path, which is its first
// store-relative path element.
func (s *Store) Category(path string) string {
	rel := s.Rel(path)
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
