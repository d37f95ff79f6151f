package workflow

import (
	"time"

	"github.com/fyrsmithlabs/recall/internal/record"
)

// ReviewRequest flags records that deserve operator attention.
type ReviewRequest struct {
	// StaleDays is the age in days at which a record counts as stale;
	// zero uses DefaultStaleDays.
	StaleDays int

	// Limit caps the result count; zero uses DefaultReviewLimit.
	Limit int
}

// ReviewResult is one flagged record with every reason that applies, in
// fixed check order: stale, low-confidence, status.
type ReviewResult struct {
	Title   string
	Path    string
	Reasons []string
}

// Review flags records whose updated date is missing, unparseable or at
// least StaleDays old, whose confidence is low, or whose status is
// superseded or deprecated.
func (e *Engine) Review(req ReviewRequest) ([]ReviewResult, error) {
	staleDays := req.StaleDays
	if staleDays <= 0 {
		staleDays = DefaultStaleDays
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultReviewLimit
	}

	if err := e.store.EnsureLayout(); err != nil {
		return nil, err
	}
	paths, err := e.store.List()
	if err != nil {
		return nil, err
	}

	now := e.now()
	var results []ReviewResult
	for _, path := range paths {
		rec, err := e.store.Read(path)
		if err != nil {
			return nil, err
		}

		var reasons []string
		if age, ok := ageDays(now, rec.Meta.Updated); !ok || age >= staleDays {
			reasons = append(reasons, "stale")
		}
		if rec.Meta.Confidence == record.ConfidenceLow {
			reasons = append(reasons, "low-confidence")
		}
		if rec.Meta.Status == record.StatusSuperseded || rec.Meta.Status == record.StatusDeprecated {
			reasons = append(reasons, rec.Meta.Status)
		}
		if len(reasons) == 0 {
			continue
		}

		title := rec.Title
		if title == "" {
			title = stem(path)
		}
		results = append(results, ReviewResult{
			Title:   title,
			Path:    e.store.Rel(path),
			Reasons: reasons,
		})
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ageDays returns the whole days between the record's updated date and
// now. ok is false when the date is missing or unparseable.
func ageDays(now time.Time, updated string) (int, bool) {
	if updated == "" {
		return 0, false
	}
	parsed, err := time.Parse(dateFormat, updated)
	if err != nil {
		return 0, false
	}
	return int(now.Sub(parsed).Hours() / 24), true
}
