package workflow

import (
	"sort"
	"strings"

	"github.com/fyrsmithlabs/recall/internal/record"
)

// FindRequest filters the stored records.
type FindRequest struct {
	// Query is a case-insensitive substring matched against the title,
	// memory and scope text. Empty matches everything.
	Query string

	// Tag, Status and Confidence are optional exact-match filters. Tag
	// matches membership in the record's tag set.
	Tag        string
	Status     string
	Confidence string

	// Limit caps the result count; zero uses DefaultFindLimit.
	Limit int
}

// FindResult is one matching record.
type FindResult struct {
	Title   string
	Path    string
	Updated string
}

// Find returns matching records sorted case-insensitively by title.
func (e *Engine) Find(req FindRequest) ([]FindResult, error) {
	if err := e.store.EnsureLayout(); err != nil {
		return nil, err
	}
	paths, err := e.store.List()
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(req.Query)
	var results []FindResult
	for _, path := range paths {
		rec, err := e.store.Read(path)
		if err != nil {
			return nil, err
		}

		text := strings.ToLower(strings.Join([]string{
			rec.Title,
			rec.Section(record.SectionMemory),
			rec.Section(record.SectionScope),
		}, "\n"))
		if query != "" && !strings.Contains(text, query) {
			continue
		}
		if req.Tag != "" && !contains(rec.Meta.Tags, req.Tag) {
			continue
		}
		if req.Status != "" && rec.Meta.Status != req.Status {
			continue
		}
		if req.Confidence != "" && rec.Meta.Confidence != req.Confidence {
			continue
		}

		title := rec.Title
		if title == "" {
			title = stem(path)
		}
		results = append(results, FindResult{
			Title:   title,
			Path:    e.store.Rel(path),
			Updated: rec.Meta.Updated,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
	})

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultFindLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
