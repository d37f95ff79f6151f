// Package record implements the on-disk memory record format: a metadata
// block delimited by "---" markers followed by a titled markdown body with
// named sections. The codec is a deliberate two-pass line scanner rather
// than a general markdown parser so that legacy files round-trip exactly.
package record

import (
	"strings"
)

// Recognized metadata keys, in render order.
const (
	KeyStatus     = "status"
	KeyCreated    = "created"
	KeyUpdated    = "updated"
	KeySource     = "source"
	KeyConfidence = "confidence"
	KeyTags       = "tags"
)

// MetaOrder is the fixed emission order for recognized metadata keys.
// Unrecognized keys render after these, sorted alphabetically.
var MetaOrder = []string{KeyStatus, KeyCreated, KeyUpdated, KeySource, KeyConfidence, KeyTags}

// Status values for the record lifecycle.
const (
	StatusActive     = "active"
	StatusSuperseded = "superseded"
	StatusDeprecated = "deprecated"
)

// Source values identifying who captured a memory.
const (
	SourceUser  = "user"
	SourceAgent = "agent"
)

// Confidence values.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Section names. Render emits them in this order; parse accepts any
// secondary heading.
const (
	SectionMemory    = "memory"
	SectionScope     = "scope"
	SectionEvolution = "evolution"
)

// SectionOrder is the fixed emission order for sections.
var SectionOrder = []string{SectionMemory, SectionScope, SectionEvolution}

// Value holds an unrecognized metadata value, which is either a scalar
// string or a list of strings. Recognized keys are typed on Metadata.
type Value struct {
	// Scalar is the value when IsList is false.
	Scalar string

	// List is the value when IsList is true.
	List []string

	// IsList reports whether the value parsed as a list (inline bracket
	// form or a dash-item run).
	IsList bool
}

// String returns a scalar Value.
func String(s string) Value { return Value{Scalar: s} }

// List returns a list Value.
func List(items ...string) Value { return Value{List: items, IsList: true} }

// Metadata is the structured metadata of a record. Recognized keys are
// typed fields; everything else is preserved in Extra.
type Metadata struct {
	Status     string
	Created    string
	Updated    string
	Source     string
	Confidence string
	Tags       []string

	// Extra preserves unrecognized metadata keys. Rendered after the
	// recognized keys, sorted by key.
	Extra map[string]Value
}

// Record is a single persisted memory document.
type Record struct {
	// Title is the top-level heading of the document.
	Title string

	// Meta is the metadata block.
	Meta Metadata

	// Sections maps lowercase secondary-heading names to their body text.
	// Only memory, scope and evolution are rendered; parse keeps whatever
	// headings the file contains.
	Sections map[string]string
}

// Section returns the named section's text, or "" if absent.
func (r *Record) Section(name string) string {
	if r.Sections == nil {
		return ""
	}
	return r.Sections[name]
}

// SetSection stores text under the named section, allocating the map if
// needed.
func (r *Record) SetSection(name, text string) {
	if r.Sections == nil {
		r.Sections = make(map[string]string)
	}
	r.Sections[name] = text
}

// AppendEvolution appends one dated entry to the evolution log. The log is
// append-only: prior lines are never rewritten or reordered.
func (r *Record) AppendEvolution(date, note string) {
	entry := strings.TrimSpace("- " + date + ": " + note)
	existing := strings.TrimSpace(r.Section(SectionEvolution))
	if existing != "" {
		r.SetSection(SectionEvolution, existing+"\n"+entry)
		return
	}
	r.SetSection(SectionEvolution, entry)
}
