package record

import (
	"sort"
	"strings"
)

// metaDelimiter bounds the metadata block, one line to open and one to close.
const metaDelimiter = "---"

// Parse splits raw text into metadata, title and sections.
//
// The scanner is lenient: if no well-formed metadata block is found the
// metadata is empty and the entire text is treated as body. Within the
// block each line is "key: value"; an empty value introduces a run of
// dash-prefixed list items, a bracketed value is an inline comma list, and
// anything else is a scalar. Lines without a colon are skipped.
//
// Body text between secondary headings accumulates into the section named
// by the most recent heading; text before any secondary heading is ignored.
func Parse(raw string) Record {
	lines := strings.Split(raw, "\n")
	meta, body := splitMeta(lines)
	title, sections := parseSections(body)
	return Record{Title: title, Meta: meta, Sections: sections}
}

// splitMeta peels the leading metadata block off the line slice. Returns
// empty metadata and the full input when the block is absent or unclosed.
func splitMeta(lines []string) (Metadata, []string) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != metaDelimiter {
		return Metadata{}, lines
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == metaDelimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return Metadata{}, lines
	}
	return parseMeta(lines[1:end]), lines[end+1:]
}

// parseMeta scans the lines between the delimiters.
func parseMeta(lines []string) Metadata {
	var meta Metadata
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		key, value, _ := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case value == "":
			// Dash-item run following an empty value.
			var items []string
			j := i + 1
			for j < len(lines) {
				entry := strings.TrimSpace(lines[j])
				if !strings.HasPrefix(entry, "- ") {
					break
				}
				items = append(items, strings.TrimSpace(entry[2:]))
				j++
			}
			setMeta(&meta, key, Value{List: items, IsList: true})
			i = j - 1
		case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
			setMeta(&meta, key, Value{List: splitList(value[1:len(value)-1]), IsList: true})
		default:
			setMeta(&meta, key, Value{Scalar: value})
		}
	}
	return meta
}

// setMeta routes a parsed value into the typed field for recognized keys,
// or into Extra otherwise. Tags coerce to a list; other recognized keys
// coerce list values to a comma-joined scalar.
func setMeta(meta *Metadata, key string, v Value) {
	if key == KeyTags {
		if v.IsList {
			if v.List == nil {
				v.List = []string{}
			}
			meta.Tags = v.List
		} else if v.Scalar != "" {
			meta.Tags = []string{v.Scalar}
		} else {
			meta.Tags = []string{}
		}
		return
	}

	scalar := v.Scalar
	if v.IsList {
		scalar = strings.Join(v.List, ", ")
	}
	switch key {
	case KeyStatus:
		meta.Status = scalar
	case KeyCreated:
		meta.Created = scalar
	case KeyUpdated:
		meta.Updated = scalar
	case KeySource:
		meta.Source = scalar
	case KeyConfidence:
		meta.Confidence = scalar
	default:
		if meta.Extra == nil {
			meta.Extra = make(map[string]Value)
		}
		meta.Extra[key] = v
	}
}

// splitList splits the inside of an inline bracket list on commas,
// dropping empty entries.
func splitList(inner string) []string {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return []string{}
	}
	parts := strings.Split(inner, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// parseSections scans the body for the top-level heading (title) and
// secondary headings (section boundaries).
func parseSections(body []string) (string, map[string]string) {
	title := ""
	sections := make(map[string]string)
	current := ""
	inSection := false
	var buf []string

	flush := func() {
		if inSection {
			sections[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = buf[:0]
	}

	for _, line := range body {
		switch {
		case strings.HasPrefix(line, "# "):
			flush()
			title = strings.TrimSpace(line[2:])
			inSection = false
		case strings.HasPrefix(line, "## "):
			flush()
			current = strings.ToLower(strings.TrimSpace(line[3:]))
			inSection = true
		case inSection:
			buf = append(buf, line)
		}
	}
	flush()
	return title, sections
}

// Render is the inverse of Parse. Recognized metadata keys are emitted
// first in MetaOrder, then unrecognized keys sorted alphabetically. The
// body is the title heading followed by the memory, scope and evolution
// sections in that order, each only if non-empty. Output is
// newline-terminated exactly once.
func Render(r Record) string {
	lines := []string{renderMeta(r.Meta), "", "# " + r.Title, ""}
	for _, name := range SectionOrder {
		content := strings.TrimSpace(r.Section(name))
		if content == "" {
			continue
		}
		lines = append(lines, "## "+TitleCase(name), content, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

func renderMeta(m Metadata) string {
	lines := []string{metaDelimiter}
	appendScalar := func(key, value string) {
		if value != "" {
			lines = append(lines, key+": "+value)
		}
	}
	appendScalar(KeyStatus, m.Status)
	appendScalar(KeyCreated, m.Created)
	appendScalar(KeyUpdated, m.Updated)
	appendScalar(KeySource, m.Source)
	appendScalar(KeyConfidence, m.Confidence)
	if m.Tags != nil {
		tags := make([]string, 0, len(m.Tags))
		for _, t := range m.Tags {
			if t != "" {
				tags = append(tags, t)
			}
		}
		lines = append(lines, KeyTags+": ["+strings.Join(tags, ", ")+"]")
	}

	extra := make([]string, 0, len(m.Extra))
	for key := range m.Extra {
		extra = append(extra, key)
	}
	sort.Strings(extra)
	for _, key := range extra {
		v := m.Extra[key]
		if v.IsList {
			lines = append(lines, key+": ["+strings.Join(v.List, ", ")+"]")
		} else {
			lines = append(lines, key+": "+v.Scalar)
		}
	}

	lines = append(lines, metaDelimiter)
	return strings.Join(lines, "\n")
}

// TitleCase capitalizes the first letter of each space-separated word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
