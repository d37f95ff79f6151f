package workflow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/recall/internal/index"
	"github.com/fyrsmithlabs/recall/internal/record"
	"github.com/fyrsmithlabs/recall/internal/similarity"
	"github.com/fyrsmithlabs/recall/internal/store"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

// scriptedDecider returns a fixed action and records what it saw.
type scriptedDecider struct {
	action Action
	seen   []similarity.Match
}

func (d *scriptedDecider) Decide(matches []similarity.Match) (Action, error) {
	d.seen = matches
	return d.action, nil
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "memories"), nil, nil)
	b := index.NewBuilder(s, testClock, nil)
	opts = append([]Option{WithClock(testClock)}, opts...)
	e, err := New(s, b, opts...)
	require.NoError(t, err)
	return e
}

func addTabs(t *testing.T, e *Engine) *AddResult {
	t.Helper()
	result, err := e.Add(AddRequest{
		Title:    "Use tabs",
		Category: "preferences",
		Memory:   "Team prefers tabs over spaces.",
		Policy:   PolicyCreate,
	})
	require.NoError(t, err)
	return result
}

func TestAdd_Create(t *testing.T) {
	e := newTestEngine(t)
	result := addTabs(t, e)

	assert.Equal(t, ActionCreate, result.Action)
	assert.Equal(t, "preferences/use-tabs.md", result.Path)

	rec, err := e.store.Read(e.store.Abs(result.Path))
	require.NoError(t, err)
	assert.Equal(t, "Use tabs", rec.Title)
	assert.Equal(t, record.StatusActive, rec.Meta.Status)
	assert.Equal(t, "2025-06-15", rec.Meta.Created)
	assert.Equal(t, "2025-06-15", rec.Meta.Updated)
	assert.Equal(t, record.SourceAgent, rec.Meta.Source)
	assert.Equal(t, record.ConfidenceMedium, rec.Meta.Confidence)
	assert.Equal(t, "- 2025-06-15: Initial capture.", rec.Section(record.SectionEvolution))
}

func TestAdd_CreateRebuildsIndex(t *testing.T) {
	e := newTestEngine(t)
	addTabs(t, e)

	data, err := os.ReadFile(e.store.IndexPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Use tabs](preferences/use-tabs.md)")
}

func TestAdd_SkipIndex(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Init())
	indexBefore, err := os.ReadFile(e.store.IndexPath())
	require.NoError(t, err)

	_, err = e.Add(AddRequest{
		Title:     "Use tabs",
		Category:  "preferences",
		Memory:    "Team prefers tabs over spaces.",
		Policy:    PolicyCreate,
		SkipIndex: true,
	})
	require.NoError(t, err)

	indexAfter, err := os.ReadFile(e.store.IndexPath())
	require.NoError(t, err)
	assert.Equal(t, string(indexBefore), string(indexAfter))
}

func TestAdd_EmptyMemoryRejected(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Add(AddRequest{Title: "T", Category: "preferences", Memory: "   "})
	assert.ErrorIs(t, err, ErrEmptyMemory)
}

func TestAdd_SameTitleGetsSuffixedFile(t *testing.T) {
	e := newTestEngine(t)
	first := addTabs(t, e)
	second := addTabs(t, e)

	assert.Equal(t, "preferences/use-tabs.md", first.Path)
	assert.Equal(t, "preferences/use-tabs-2.md", second.Path)
}

func TestAdd_ForceUpdateMutatesMatch(t *testing.T) {
	laterClock := func() time.Time {
		return time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	}
	e := newTestEngine(t)
	first := addTabs(t, e)

	e.now = laterClock
	result, err := e.Add(AddRequest{
		Title:      "Prefer tabs",
		Category:   "preferences",
		Memory:     "Team prefers tabs over spaces everywhere.",
		Tags:       []string{"style"},
		Confidence: record.ConfidenceHigh,
		Policy:     PolicyUpdate,
		Threshold:  0.6,
	})
	require.NoError(t, err)

	// Same file mutated, no new record created.
	assert.Equal(t, ActionUpdate, result.Action)
	assert.Equal(t, first.Path, result.Path)
	paths, err := e.store.List()
	require.NoError(t, err)
	assert.Len(t, paths, 1)

	rec, err := e.store.Read(e.store.Abs(result.Path))
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", rec.Meta.Updated)
	assert.Equal(t, "2025-06-15", rec.Meta.Created)
	assert.Equal(t, record.ConfidenceHigh, rec.Meta.Confidence)
	assert.Equal(t, []string{"style"}, rec.Meta.Tags)
	assert.Equal(t, "Team prefers tabs over spaces everywhere.", rec.Section(record.SectionMemory))

	lines := strings.Split(rec.Section(record.SectionEvolution), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "- 2025-07-01: Updated memory.", lines[1])
}

func TestAdd_UpdatePreservesContentWhenCandidateEmpty(t *testing.T) {
	e := newTestEngine(t)
	first, err := e.Add(AddRequest{
		Title:    "Use tabs",
		Category: "preferences",
		Memory:   "Team prefers tabs over spaces.",
		Scope:    "All Go code.",
		Tags:     []string{"style"},
		Policy:   PolicyCreate,
	})
	require.NoError(t, err)

	// Near-identical memory forces the match; scope and tags omitted.
	_, err = e.Add(AddRequest{
		Title:    "Use tabs",
		Category: "preferences",
		Memory:   "Team prefers tabs over spaces.",
		Policy:   PolicyUpdate,
	})
	require.NoError(t, err)

	rec, err := e.store.Read(e.store.Abs(first.Path))
	require.NoError(t, err)
	assert.Equal(t, "All Go code.", rec.Section(record.SectionScope))
	assert.Equal(t, []string{"style"}, rec.Meta.Tags)
}

func TestAdd_ForceUpdateFallsBackToCreate(t *testing.T) {
	e := newTestEngine(t)
	addTabs(t, e)

	result, err := e.Add(AddRequest{
		Title:    "Database backups",
		Category: "tooling",
		Memory:   "Nightly pg_dump shipped offsite.",
		Policy:   PolicyUpdate,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, result.Action)
	assert.Equal(t, "tooling/database-backups.md", result.Path)
}

func TestAdd_ForceSupersede(t *testing.T) {
	e := newTestEngine(t)
	first := addTabs(t, e)

	result, err := e.Add(AddRequest{
		Title:    "Prefer tabs",
		Category: "preferences",
		Memory:   "Team prefers tabs over spaces, enforced by gofmt.",
		Policy:   PolicySupersede,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionSupersede, result.Action)
	assert.Equal(t, "preferences/prefer-tabs.md", result.Path)
	assert.Equal(t, first.Path, result.Superseded)

	// Predecessor: superseded, cleared, evolution points at successor.
	old, err := e.store.Read(e.store.Abs(first.Path))
	require.NoError(t, err)
	assert.Equal(t, record.StatusSuperseded, old.Meta.Status)
	assert.Empty(t, old.Section(record.SectionMemory))
	assert.Empty(t, old.Section(record.SectionScope))
	lines := strings.Split(old.Section(record.SectionEvolution), "\n")
	assert.Equal(t, "- 2025-06-15: Superseded by "+result.Path, lines[len(lines)-1])

	// Successor is active.
	successor, err := e.store.Read(e.store.Abs(result.Path))
	require.NoError(t, err)
	assert.Equal(t, record.StatusActive, successor.Meta.Status)
}

func TestAdd_PromptPresentsRankedMatches(t *testing.T) {
	decider := &scriptedDecider{action: ActionUpdate}
	e := newTestEngine(t, WithDecider(decider))
	first := addTabs(t, e)

	result, err := e.Add(AddRequest{
		Title:     "Prefer tabs",
		Category:  "preferences",
		Memory:    "Team prefers tabs over spaces.",
		Policy:    PolicyPrompt,
		Threshold: 0.6,
	})
	require.NoError(t, err)

	require.NotEmpty(t, decider.seen)
	assert.Equal(t, first.Path, decider.seen[0].Path)
	assert.GreaterOrEqual(t, decider.seen[0].Score, 0.6)
	assert.Equal(t, ActionUpdate, result.Action)
	assert.Equal(t, first.Path, result.Path)
}

func TestAdd_PromptSkippedWithoutSurvivors(t *testing.T) {
	// No decider configured: prompt policy still creates when nothing
	// scores above the threshold.
	e := newTestEngine(t)
	result, err := e.Add(AddRequest{
		Title:    "Use tabs",
		Category: "preferences",
		Memory:   "Team prefers tabs over spaces.",
		Policy:   PolicyPrompt,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, result.Action)
}

func TestAdd_QuitHasNoSideEffects(t *testing.T) {
	decider := &scriptedDecider{action: ActionQuit}
	e := newTestEngine(t, WithDecider(decider))
	addTabs(t, e)
	before, err := e.store.List()
	require.NoError(t, err)

	result, err := e.Add(AddRequest{
		Title:    "Prefer tabs",
		Category: "preferences",
		Memory:   "Team prefers tabs over spaces.",
		Policy:   PolicyPrompt,
	})
	require.NoError(t, err)
	assert.Equal(t, ActionQuit, result.Action)
	assert.Empty(t, result.Path)

	after, err := e.store.List()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSupersede_Explicit(t *testing.T) {
	e := newTestEngine(t)
	first := addTabs(t, e)

	result, err := e.Supersede(SupersedeRequest{
		Old:      first.Path,
		Title:    "Use tabs everywhere",
		Category: "preferences",
		Memory:   "Tabs in all languages.",
	})
	require.NoError(t, err)
	assert.Equal(t, ActionSupersede, result.Action)
	assert.Equal(t, first.Path, result.Superseded)

	old, err := e.store.Read(e.store.Abs(first.Path))
	require.NoError(t, err)
	assert.Equal(t, record.StatusSuperseded, old.Meta.Status)
	assert.Contains(t, old.Section(record.SectionEvolution), "Superseded by "+result.Path)
}

func TestSupersede_MissingOldRecord(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Supersede(SupersedeRequest{
		Old:      "preferences/missing.md",
		Title:    "T",
		Category: "preferences",
		Memory:   "M",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFind_EndToEnd(t *testing.T) {
	e := newTestEngine(t)
	addTabs(t, e)

	results, err := e.Find(FindRequest{Query: "tabs"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Use tabs", results[0].Title)
}

func TestFind_Filters(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Add(AddRequest{
		Title:      "Use tabs",
		Category:   "preferences",
		Memory:     "Team prefers tabs over spaces.",
		Tags:       []string{"style"},
		Confidence: record.ConfidenceHigh,
		Policy:     PolicyCreate,
	})
	require.NoError(t, err)
	_, err = e.Add(AddRequest{
		Title:      "Ripgrep",
		Category:   "tooling",
		Memory:     "Use rg over grep.",
		Confidence: record.ConfidenceLow,
		Policy:     PolicyCreate,
	})
	require.NoError(t, err)

	results, err := e.Find(FindRequest{Tag: "style"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Use tabs", results[0].Title)

	results, err = e.Find(FindRequest{Confidence: record.ConfidenceLow})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ripgrep", results[0].Title)

	results, err = e.Find(FindRequest{Query: "no such text"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFind_SortsByTitleAndLimits(t *testing.T) {
	e := newTestEngine(t)
	for _, title := range []string{"zeta", "Alpha", "mid"} {
		_, err := e.Add(AddRequest{
			Title:    title,
			Category: "domain",
			Memory:   "Shared searchable text.",
			Policy:   PolicyCreate,
		})
		require.NoError(t, err)
	}

	results, err := e.Find(FindRequest{Query: "searchable", Limit: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alpha", results[0].Title)
	assert.Equal(t, "mid", results[1].Title)
}

func TestReview_Reasons(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Init())

	write := func(slug string, meta record.Metadata) {
		rec := record.Record{Title: slug, Meta: meta}
		rec.SetSection(record.SectionMemory, "content")
		require.NoError(t, e.store.Write(e.store.UniquePath("domain", slug), rec))
	}

	write("fresh", record.Metadata{Updated: "2025-06-10", Confidence: record.ConfidenceHigh, Status: record.StatusActive})
	write("stale", record.Metadata{Updated: "2024-01-01", Confidence: record.ConfidenceHigh, Status: record.StatusActive})
	write("shaky", record.Metadata{Updated: "2025-06-10", Confidence: record.ConfidenceLow, Status: record.StatusActive})
	write("retired", record.Metadata{Updated: "2024-01-01", Confidence: record.ConfidenceLow, Status: record.StatusSuperseded})
	write("undated", record.Metadata{Confidence: record.ConfidenceHigh, Status: record.StatusActive})

	results, err := e.Review(ReviewRequest{StaleDays: 180})
	require.NoError(t, err)

	byTitle := make(map[string][]string)
	for _, r := range results {
		byTitle[r.Title] = r.Reasons
	}
	assert.NotContains(t, byTitle, "fresh")
	assert.Equal(t, []string{"stale"}, byTitle["stale"])
	assert.Equal(t, []string{"low-confidence"}, byTitle["shaky"])
	// All reasons, in fixed check order.
	assert.Equal(t, []string{"stale", "low-confidence", "superseded"}, byTitle["retired"])
	assert.Equal(t, []string{"stale"}, byTitle["undated"])
}

func TestReview_Limit(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Init())
	for _, slug := range []string{"a", "b", "c"} {
		rec := record.Record{Title: slug, Meta: record.Metadata{Confidence: record.ConfidenceLow, Updated: "2025-06-10"}}
		rec.SetSection(record.SectionMemory, "content")
		require.NoError(t, e.store.Write(e.store.UniquePath("domain", slug), rec))
	}

	results, err := e.Review(ReviewRequest{StaleDays: 180, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

// TestAddThenFind_SpecExample exercises the documented end-to-end flow:
// capture, find, then a near-duplicate candidate surfacing as a prompt
// match at or above the threshold.
func TestAddThenFind_SpecExample(t *testing.T) {
	decider := &scriptedDecider{action: ActionQuit}
	e := newTestEngine(t, WithDecider(decider))

	_, err := e.Add(AddRequest{
		Title:    "Use tabs",
		Category: "preferences",
		Memory:   "Team prefers tabs over spaces.",
		Policy:   PolicyCreate,
	})
	require.NoError(t, err)

	results, err := e.Find(FindRequest{Query: "tabs"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Use tabs", results[0].Title)

	_, err = e.Add(AddRequest{
		Title:     "Prefer tabs",
		Category:  "preferences",
		Memory:    "The team prefers tabs over spaces.",
		Policy:    PolicyPrompt,
		Threshold: 0.6,
	})
	require.NoError(t, err)
	require.NotEmpty(t, decider.seen)
	assert.Equal(t, "Use tabs", decider.seen[0].Title)
	assert.GreaterOrEqual(t, decider.seen[0].Score, 0.6)
}
