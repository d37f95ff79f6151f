// Package similarity scores text blobs for near-duplication using the
// Ratcliff/Obershelp longest-matching-blocks ratio over normalized text.
package similarity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize lowercases the text, strips everything except alphanumerics
// and whitespace, collapses whitespace runs to single spaces and trims.
func Normalize(text string) string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(text), " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))
}

// Score returns the similarity of two text blobs in [0, 1], computed as a
// sequence-alignment ratio over the normalized rune sequences. 1.0 means
// normalized-identical text; 0.0 means no common substring at all.
//
// Two empty texts score 1.0: they are normalized-identical. The autojunk
// heuristic of the underlying matcher is disabled so that Score(x, x) is
// always exactly 1.0 regardless of text length.
func Score(a, b string) float64 {
	m := difflib.NewMatcherWithJunk(runes(Normalize(a)), runes(Normalize(b)), false, nil)
	return m.Ratio()
}

// runes splits a string into one element per rune for character-level
// alignment.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Candidate is an existing record considered for matching.
type Candidate struct {
	// Path is the store-relative path of the record.
	Path string

	// Title is the record's title.
	Title string

	// Memory is the record's memory section.
	Memory string
}

// Match is a scored candidate.
type Match struct {
	// Path is the store-relative path of the matched record.
	Path string

	// Title is the matched record's title.
	Title string

	// Score is the similarity score in [0, 1].
	Score float64
}

// FindSimilar scores "title\nbody" against every candidate's
// "title\nmemory" and returns the top limit matches by descending score.
// Equal scores order by ascending path, which keeps results deterministic
// across filesystems.
func FindSimilar(title, body string, candidates []Candidate, limit int) []Match {
	combined := strings.TrimSpace(title + "\n" + body)
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		existing := strings.TrimSpace(c.Title + "\n" + c.Memory)
		matches = append(matches, Match{
			Path:  c.Path,
			Title: c.Title,
			Score: Score(combined, existing),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Path < matches[j].Path
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
