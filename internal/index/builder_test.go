package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/recall/internal/record"
	"github.com/fyrsmithlabs/recall/internal/store"
)

var fixedNow = func() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestBuilder(t *testing.T) (*store.Store, *Builder) {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "memories"), nil, nil)
	require.NoError(t, s.EnsureLayout())
	return s, NewBuilder(s, fixedNow, nil)
}

func writeRecord(t *testing.T, s *store.Store, category, title, updated string) string {
	t.Helper()
	rec := record.Record{
		Title: title,
		Meta: record.Metadata{
			Status:     record.StatusActive,
			Created:    updated,
			Updated:    updated,
			Source:     record.SourceAgent,
			Confidence: record.ConfidenceMedium,
			Tags:       []string{},
		},
	}
	rec.SetSection(record.SectionMemory, "Content for "+title)
	path := s.UniquePath(category, record.Slugify(title))
	require.NoError(t, s.Write(path, rec))
	return path
}

func TestBuild_Header(t *testing.T) {
	_, b := newTestBuilder(t)
	out, err := b.Build()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Memories\n"))
	assert.Contains(t, out, "Last reviewed: 2025-06-15")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
}

func TestBuild_EntriesSortedByTitle(t *testing.T) {
	s, b := newTestBuilder(t)
	writeRecord(t, s, "preferences", "zsh aliases", "2025-02-01")
	writeRecord(t, s, "preferences", "Use tabs", "2025-01-01")

	out, err := b.Build()
	require.NoError(t, err)
	useAt := strings.Index(out, "[Use tabs](preferences/use-tabs.md)")
	zshAt := strings.Index(out, "[zsh aliases](preferences/zsh-aliases.md)")
	require.GreaterOrEqual(t, useAt, 0)
	require.GreaterOrEqual(t, zshAt, 0)
	assert.Less(t, useAt, zshAt)
	assert.Contains(t, out, "— updated 2025-01-01")
}

func TestBuild_CategoryOrdering(t *testing.T) {
	s, b := newTestBuilder(t)
	// An unrecognized category sorts after the recognized ones.
	writeRecord(t, s, "zoo-notes", "Llamas", "2025-01-01")
	writeRecord(t, s, "workflow", "Deploys", "2025-01-01")
	writeRecord(t, s, "architecture", "Monolith", "2025-01-01")

	out, err := b.Build()
	require.NoError(t, err)
	archAt := strings.Index(out, "## Architecture")
	workflowAt := strings.Index(out, "## Workflow")
	zooAt := strings.Index(out, "## Zoo Notes")
	require.GreaterOrEqual(t, archAt, 0)
	assert.Less(t, archAt, workflowAt)
	assert.Less(t, workflowAt, zooAt)
	// Recognized categories with no records do not appear.
	assert.NotContains(t, out, "## Preferences")
}

func TestBuild_Completeness(t *testing.T) {
	s, b := newTestBuilder(t)
	writeRecord(t, s, "preferences", "Use tabs", "2025-01-01")
	writeRecord(t, s, "tooling", "Ripgrep", "2025-01-01")
	writeRecord(t, s, "domain", "Billing cycle", "2025-01-01")

	out, err := b.Build()
	require.NoError(t, err)
	paths, err := s.List()
	require.NoError(t, err)
	for _, p := range paths {
		assert.Equal(t, 1, strings.Count(out, "("+s.Rel(p)+")"), s.Rel(p))
	}
}

func TestBuild_UntitledRecordUsesStem(t *testing.T) {
	s, b := newTestBuilder(t)
	path := filepath.Join(s.Root(), "tooling", "bare-note.md")
	require.NoError(t, os.WriteFile(path, []byte("just some text\n"), 0o644))

	out, err := b.Build()
	require.NoError(t, err)
	assert.Contains(t, out, "[bare-note](tooling/bare-note.md)")
}

func TestRebuild_OverwritesWholesale(t *testing.T) {
	s, b := newTestBuilder(t)
	require.NoError(t, s.WriteRaw(s.IndexPath(), "stale hand-edited content\n"))
	writeRecord(t, s, "preferences", "Use tabs", "2025-01-01")

	require.NoError(t, b.Rebuild())
	data, err := os.ReadFile(s.IndexPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale hand-edited content")
	assert.Contains(t, string(data), "[Use tabs](preferences/use-tabs.md)")
}

func TestEnsure_OnlyWritesWhenAbsent(t *testing.T) {
	s, b := newTestBuilder(t)
	require.NoError(t, b.Ensure())
	require.NoError(t, s.WriteRaw(s.IndexPath(), "custom\n"))
	require.NoError(t, b.Ensure())

	data, err := os.ReadFile(s.IndexPath())
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}
