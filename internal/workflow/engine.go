// Package workflow implements the memory lifecycle operations: the
// add state machine with similarity-based deduplication, plus find,
// review and supersede over the file store.
package workflow

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/internal/index"
	"github.com/fyrsmithlabs/recall/internal/record"
	"github.com/fyrsmithlabs/recall/internal/similarity"
	"github.com/fyrsmithlabs/recall/internal/store"
)

// Defaults for the workflow operations.
const (
	DefaultThreshold   = 0.6
	DefaultMatchLimit  = 5
	DefaultFindLimit   = 20
	DefaultStaleDays   = 180
	DefaultReviewLimit = 50
)

// dateFormat is the ISO date layout used in record metadata.
const dateFormat = "2006-01-02"

// Common errors for workflow operations.
var (
	ErrEmptyMemory   = errors.New("memory text is required")
	ErrEmptyTitle    = errors.New("memory title is required")
	ErrEmptyCategory = errors.New("memory category is required")
	ErrNoDecider     = errors.New("no decider configured for interactive disambiguation")
)

// Engine resolves candidate memories against the store and applies the
// resulting create, update or supersede mutations.
type Engine struct {
	store      *store.Store
	index      *index.Builder
	decider    Decider
	now        func() time.Time
	logger     *zap.Logger
	threshold  float64
	matchLimit int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDecider sets the disambiguation decider used under PolicyPrompt.
func WithDecider(d Decider) Option {
	return func(e *Engine) { e.decider = d }
}

// WithClock sets the time source. Injected so tests control "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithThreshold sets the default similarity threshold for Add.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) { e.threshold = threshold }
}

// WithMatchLimit sets how many similarity matches Add considers.
func WithMatchLimit(limit int) Option {
	return func(e *Engine) { e.matchLimit = limit }
}

// New creates a workflow engine over a store and index builder.
func New(s *store.Store, b *index.Builder, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, errors.New("store cannot be nil")
	}
	if b == nil {
		return nil, errors.New("index builder cannot be nil")
	}

	e := &Engine{
		store:      s,
		index:      b,
		now:        time.Now,
		logger:     zap.NewNop(),
		threshold:  DefaultThreshold,
		matchLimit: DefaultMatchLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Init ensures the store layout exists and writes the index if absent.
func (e *Engine) Init() error {
	if err := e.store.EnsureLayout(); err != nil {
		return err
	}
	return e.index.Ensure()
}

// Store returns the underlying store.
func (e *Engine) Store() *store.Store { return e.store }

// Index returns the underlying index builder.
func (e *Engine) Index() *index.Builder { return e.index }

// today returns the current date in record metadata form.
func (e *Engine) today() string {
	return e.now().Format(dateFormat)
}

// candidates loads every stored record as a similarity candidate.
func (e *Engine) candidates() ([]similarity.Candidate, error) {
	paths, err := e.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]similarity.Candidate, 0, len(paths))
	for _, path := range paths {
		rec, err := e.store.Read(path)
		if err != nil {
			return nil, err
		}
		title := rec.Title
		if title == "" {
			title = stem(path)
		}
		out = append(out, similarity.Candidate{
			Path:   e.store.Rel(path),
			Title:  title,
			Memory: rec.Section(record.SectionMemory),
		})
	}
	return out, nil
}
