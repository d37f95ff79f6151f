// Package index derives the human-readable category index document from
// the set of stored records. The index is never a source of truth: it is
// rebuilt wholesale from the record files and overwritten on every rebuild.
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/record"
	"github.com/fyrsmithlabs/recall/internal/store"
)

// dateFormat is the ISO date layout used throughout the store.
const dateFormat = "2006-01-02"

// Builder regenerates the index document for a store.
type Builder struct {
	store  *store.Store
	now    func() time.Time
	logger *zap.Logger
}

// NewBuilder creates an index builder. now may be nil to use time.Now;
// tests inject a fixed clock for deterministic output.
func NewBuilder(s *store.Store, now func() time.Time, logger *zap.Logger) *Builder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{store: s, now: now, logger: logger}
}

// entry is one index line: title, store-relative path, last-updated date.
type entry struct {
	title   string
	rel     string
	updated string
}

// Build produces the full index document from the current set of records.
// Categories appear in recognized order first, then any remaining
// categories alphabetically; entries sort case-insensitively by title.
func (b *Builder) Build() (string, error) {
	entries, err := b.collect()
	if err != nil {
		return "", err
	}

	lines := []string{"# Memories", "", "Last reviewed: " + b.now().Format(dateFormat), ""}
	for _, category := range b.orderedCategories(entries) {
		lines = append(lines, "## "+categoryTitle(category))
		items := entries[category]
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].title) < strings.ToLower(items[j].title)
		})
		if len(items) == 0 {
			lines = append(lines, "- (none)")
		}
		for _, e := range items {
			lines = append(lines, fmt.Sprintf("- [%s](%s) — updated %s", e.title, e.rel, e.updated))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n", nil
}

// Rebuild overwrites the index file with Build's output.
func (b *Builder) Rebuild() error {
	content, err := b.Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := b.store.WriteRaw(b.store.IndexPath(), content); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	b.logger.Debug("rebuilt index", zap.String("path", b.store.IndexPath()))
	return nil
}

// Ensure writes the index only if it does not exist yet.
func (b *Builder) Ensure() error {
	if _, err := os.Stat(b.store.IndexPath()); err == nil {
		return nil
	}
	return b.Rebuild()
}

// collect groups record entries by category.
func (b *Builder) collect() (map[string][]entry, error) {
	paths, err := b.store.List()
	if err != nil {
		return nil, err
	}
	entries := make(map[string][]entry)
	for _, path := range paths {
		rec, err := b.store.Read(path)
		if err != nil {
			return nil, err
		}
		title := rec.Title
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), ".md")
		}
		category := b.store.Category(path)
		entries[category] = append(entries[category], entry{
			title:   title,
			rel:     b.store.Rel(path),
			updated: rec.Meta.Updated,
		})
	}
	return entries, nil
}

// orderedCategories returns the categories that have entries: recognized
// categories first, in their fixed order, then any remaining categories
// alphabetically.
func (b *Builder) orderedCategories(entries map[string][]entry) []string {
	seen := make(map[string]bool)
	var ordered []string
	for _, category := range b.store.Categories() {
		if _, ok := entries[category]; ok {
			ordered = append(ordered, category)
			seen[category] = true
		}
	}
	var extra []string
	for category := range entries {
		if category != "" && !seen[category] {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)
	return append(ordered, extra...)
}

// categoryTitle renders a category directory name as a heading, with
// hyphens and underscores as word breaks.
func categoryTitle(category string) string {
	replaced := strings.NewReplacer("-", " ", "_", " ").Replace(category)
	return record.TitleCase(replaced)
}
