package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fyrsmithlabs/recall/internal/store"
)

// SupersedeRequest explicitly retires a named record in favor of a new one.
type SupersedeRequest struct {
	// Old is the record to retire, as a store-relative or absolute path.
	Old string

	// The remaining fields describe the successor record, as in AddRequest.
	Title         string
	Category      string
	Memory        string
	Scope         string
	Tags          []string
	Source        string
	Confidence    string
	EvolutionNote string
}

// Supersede creates the successor record, then retires the old one:
// memory and scope cleared, status superseded, evolution extended with a
// pointer to the successor. The index is rebuilt afterwards.
func (e *Engine) Supersede(req SupersedeRequest) (*AddResult, error) {
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

	oldPath := e.store.Abs(req.Old)
	if _, err := os.Stat(oldPath); err != nil {
		return nil, fmt.Errorf("old memory %s: %w", req.Old, errSupersedeTarget(err))
	}

	addReq := AddRequest{
		Title:      req.Title,
		Category:   req.Category,
		Memory:     req.Memory,
		Scope:      req.Scope,
		Tags:       req.Tags,
		Source:     req.Source,
		Confidence: req.Confidence,
	}
	addReq.normalize()

	rel, err := e.create(addReq)
	if err != nil {
		return nil, err
	}

	note := req.EvolutionNote
	if note == "" {
		note = "Superseded by " + rel
	}
	oldRel := e.store.Rel(oldPath)
	if err := e.retire(oldRel, rel, note); err != nil {
		return nil, err
	}

	result := &AddResult{Action: ActionSupersede, Path: rel, Superseded: oldRel}
	if err := e.index.Rebuild(); err != nil {
		return result, err
	}
	return result, nil
}

// errSupersedeTarget maps a stat failure to the store's error taxonomy.
func errSupersedeTarget(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return store.ErrNotFound
	}
	return err
}
