package workflow

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/record"
	"github.com/fyrsmithlabs/recall/internal/similarity"
)

// initialCaptureNote seeds the evolution log of every fresh record.
const initialCaptureNote = "Initial capture."

// defaultUpdateNote is appended when an update supplies no note.
const defaultUpdateNote = "Updated memory."

// AddRequest is a candidate memory submitted to the add state machine.
type AddRequest struct {
	// Title names the memory; it also derives the filename slug.
	Title string

	// Category selects the subdirectory. Arbitrary values are allowed;
	// recognized categories already exist from EnsureLayout.
	Category string

	// Memory is the substantive content. Required.
	Memory string

	// Scope describes applicability and boundaries. Optional.
	Scope string

	// Tags is the tag set. On update, an empty set preserves the
	// target's existing tags.
	Tags []string

	// Source, Confidence and Status default to agent, medium and active.
	Source     string
	Confidence string
	Status     string

	// Policy is the disambiguation policy. Defaults to PolicyPrompt.
	Policy Policy

	// Threshold is the similarity threshold; zero uses the engine default.
	Threshold float64

	// EvolutionNote overrides the default evolution entry on update.
	EvolutionNote string

	// SkipIndex suppresses the index rebuild after the mutation.
	SkipIndex bool
}

// AddResult reports the resolved action and the affected records.
type AddResult struct {
	// Action is the terminal state the request resolved to.
	Action Action

	// Path is the store-relative path of the created or updated record.
	// Empty when Action is ActionQuit.
	Path string

	// Superseded is the store-relative path of the retired record when
	// Action is ActionSupersede.
	Superseded string

	// Matches are the similarity matches that survived the threshold,
	// ranked by score. Kept so callers can report them.
	Matches []similarity.Match
}

// normalize fills request defaults in place.
func (r *AddRequest) normalize() {
	if r.Source == "" {
		r.Source = record.SourceAgent
	}
	if r.Confidence == "" {
		r.Confidence = record.ConfidenceMedium
	}
	if r.Status == "" {
		r.Status = record.StatusActive
	}
	if r.Policy == "" {
		r.Policy = PolicyPrompt
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
}

// Add resolves a candidate memory to create, update or supersede.
//
// The state machine: score the candidate against every stored record,
// keep matches at or above the threshold, then branch on the policy.
// With no survivors the action is always create. Force policies take the
// highest-scoring survivor as their target; the prompt policy delegates
// to the decider, and quit aborts with no filesystem mutation. Every
// non-quit action triggers an index rebuild unless SkipIndex is set.
func (e *Engine) Add(req AddRequest) (*AddResult, error) {
	req.normalize()
	if strings.TrimSpace(req.Memory) == "" {
		return nil, ErrEmptyMemory
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, ErrEmptyCategory
	}
	if err := e.Init(); err != nil {
		return nil, err
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = e.threshold
	}

	candidates, err := e.candidates()
	if err != nil {
		return nil, err
	}
	matches := similarity.FindSimilar(req.Title, req.Memory, candidates, e.matchLimit)
	survivors := aboveThreshold(matches, threshold)

	action := ActionCreate
	var target *similarity.Match
	switch req.Policy {
	case PolicyCreate:
		// Unconditional create.
	case PolicyUpdate, PolicySupersede:
		if len(survivors) > 0 {
			action = Action(req.Policy)
			target = &survivors[0]
		}
	case PolicyPrompt:
		if len(survivors) > 0 {
			if e.decider == nil {
				return nil, ErrNoDecider
			}
			action, err = e.decider.Decide(survivors)
			if err != nil {
				return nil, err
			}
			if action == ActionUpdate || action == ActionSupersede {
				target = &survivors[0]
			}
		}
	}

	result := &AddResult{Action: action, Matches: survivors}
	switch action {
	case ActionQuit:
		return result, nil
	case ActionUpdate:
		result.Path = target.Path
		if err := e.update(target.Path, req); err != nil {
			return nil, err
		}
	case ActionSupersede:
		rel, err := e.create(req)
		if err != nil {
			return nil, err
		}
		result.Path = rel
		result.Superseded = target.Path
		if err := e.retire(target.Path, rel, ""); err != nil {
			return nil, err
		}
	default:
		rel, err := e.create(req)
		if err != nil {
			return nil, err
		}
		result.Path = rel
	}

	e.logger.Info("memory resolved",
		zap.String("action", string(action)),
		zap.String("path", result.Path))

	if !req.SkipIndex {
		if err := e.index.Rebuild(); err != nil {
			// The record mutation stands; index failures do not roll back.
			e.logger.Warn("index rebuild failed", zap.Error(err))
			return result, err
		}
	}
	return result, nil
}

// create writes a fresh record and returns its store-relative path.
func (e *Engine) create(req AddRequest) (string, error) {
	today := e.today()
	rec := record.Record{
		Title: req.Title,
		Meta: record.Metadata{
			Status:     req.Status,
			Created:    today,
			Updated:    today,
			Source:     req.Source,
			Confidence: req.Confidence,
			Tags:       req.Tags,
		},
	}
	rec.SetSection(record.SectionMemory, strings.TrimSpace(req.Memory))
	if scope := strings.TrimSpace(req.Scope); scope != "" {
		rec.SetSection(record.SectionScope, scope)
	}
	rec.AppendEvolution(today, initialCaptureNote)

	path := e.store.UniquePath(req.Category, record.Slugify(req.Title))
	if err := e.store.Write(path, rec); err != nil {
		return "", err
	}
	return e.store.Rel(path), nil
}

// update mutates the record at rel with the candidate's content. Empty
// candidate values leave the existing content untouched; tags replace
// only when the caller supplied a non-empty set.
func (e *Engine) update(rel string, req AddRequest) error {
	path := e.store.Abs(rel)
	rec, err := e.store.Read(path)
	if err != nil {
		return err
	}

	today := e.today()
	rec.Meta.Updated = today
	rec.Meta.Source = req.Source
	rec.Meta.Confidence = req.Confidence
	if len(req.Tags) > 0 {
		rec.Meta.Tags = req.Tags
	}
	if memory := strings.TrimSpace(req.Memory); memory != "" {
		rec.SetSection(record.SectionMemory, memory)
	}
	if scope := strings.TrimSpace(req.Scope); scope != "" {
		rec.SetSection(record.SectionScope, scope)
	}

	note := req.EvolutionNote
	if note == "" {
		note = defaultUpdateNote
	}
	rec.AppendEvolution(today, note)

	return e.store.Write(path, rec)
}

// retire marks the record at rel superseded by successorRel: memory and
// scope are cleared (the successor is authoritative), status flips to
// superseded, and the evolution log gains a pointer to the successor.
// The log itself is preserved untouched.
func (e *Engine) retire(rel, successorRel, note string) error {
	path := e.store.Abs(rel)
	rec, err := e.store.Read(path)
	if err != nil {
		return err
	}

	today := e.today()
	rec.Meta.Status = record.StatusSuperseded
	rec.Meta.Updated = today
	rec.SetSection(record.SectionMemory, "")
	rec.SetSection(record.SectionScope, "")
	if note == "" {
		note = "Superseded by " + successorRel
	}
	rec.AppendEvolution(today, note)

	return e.store.Write(path, rec)
}

// aboveThreshold filters matches to those scoring at or above threshold.
func aboveThreshold(matches []similarity.Match, threshold float64) []similarity.Match {
	var out []similarity.Match
	for _, m := range matches {
		if m.Score >= threshold {
			out = append(out, m)
		}
	}
	return out
}

// stem returns the filename without directory or .md suffix.
func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".md")
}
