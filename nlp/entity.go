package nlp

import (
	"sort"
	"strings"
	"unicode"
)

// extractEntities matches the store's terms (names and aliases, longest
// surface form first) against the lowercased query. Because longer terms are
// tried first and claimed spans block shorter ones, overlapping matches keep
// the longer span; "shortness of breath" wins over a bare "breath" synonym.
func (a *Analyzer) extractEntities(query string) []Entity {
	lower := strings.ToLower(query)

	type span struct{ start, end int }
	var claimed []span
	overlaps := func(start, end int) bool {
		for _, s := range claimed {
			if start < s.end && end > s.start {
				return true
			}
		}
		return false
	}

	var entities []Entity
	for _, term := range a.store.Terms() {
		for from := 0; ; {
			idx := strings.Index(lower[from:], term.Text)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(term.Text)
			from = start + 1

			if !wordBoundary(lower, start, end) || overlaps(start, end) {
				continue
			}
			c, ok := a.store.Get(term.ConceptID)
			if !ok {
				continue
			}
			claimed = append(claimed, span{start, end})
			entities = append(entities, Entity{
				Text:       term.Text,
				Type:       c.Type,
				Confidence: term.Confidence,
				ConceptID:  c.ID,
				Start:      start,
				End:        end,
			})
		}
	}

	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Start != entities[j].Start {
			return entities[i].Start < entities[j].Start
		}
		return entities[i].End > entities[j].End
	})
	return entities
}

// wordBoundary reports whether s[start:end] is delimited by non-alphanumeric
// runes (or the string edges), so "asa" does not match inside "basal".
func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		r := rune(s[start-1])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r := rune(s[end])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// containsWord reports whether phrase occurs in lower-cased text on word
// boundaries.
func containsWord(lower, phrase string) bool {
	for from := 0; ; {
		idx := strings.Index(lower[from:], phrase)
		if idx < 0 {
			return false
		}
		start := from + idx
		if wordBoundary(lower, start, start+len(phrase)) {
			return true
		}
		from = start + 1
	}
}

// containsAnyWord reports whether any of the phrases occurs in lower on word
// boundaries.
func containsAnyWord(lower string, phrases []string) bool {
	for _, p := range phrases {
		if containsWord(lower, p) {
			return true
		}
	}
	return false
}
