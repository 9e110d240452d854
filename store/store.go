// Package store holds the medical concept graph: an immutable, in-memory
// knowledge base of concepts and typed, weighted relationships. A Store is
// built once from a Definition at startup and is read-only afterwards, so it
// is safe for unlimited concurrent readers.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidDefinition is returned when a graph definition fails structural
// validation (duplicate ids, dangling references, out-of-range weights).
var ErrInvalidDefinition = errors.New("store: invalid graph definition")

// Definition is the loadable form of a knowledge graph.
type Definition struct {
	Concepts      []Concept      `json:"concepts"`
	Relationships []Relationship `json:"relationships"`
}

// Term is a matchable surface form (canonical name or alias) pointing at a
// concept. Confidence is 1.0 for canonical names and decreases with alias rank.
type Term struct {
	Text       string  `json:"text"`
	ConceptID  string  `json:"concept_id"`
	Confidence float64 `json:"confidence"`
}

// Edge pairs a relationship with the concept on its far side, as seen from
// some origin concept.
type Edge struct {
	Rel   Relationship
	Other Concept
}

// Store is the immutable concept graph.
type Store struct {
	concepts map[string]Concept
	ids      []string
	rels     []Relationship
	outgoing map[string][]Relationship
	incoming map[string][]Relationship
	terms    []Term
	byTerm   map[string]Term
}

// aliasConfidence computes the match confidence for an alias by its rank in
// the concept's alias list. Rank 0 scores 0.9, each further rank loses 0.05,
// floored at 0.6 so deep synonym lists stay matchable.
func aliasConfidence(rank int) float64 {
	c := 0.9 - 0.05*float64(rank)
	if c < 0.6 {
		c = 0.6
	}
	return c
}

// Normalize lowercases, trims, and collapses internal whitespace. All name,
// alias, and profile-set comparisons in the module go through this.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// New builds a Store from a definition, validating structure. Validation
// failures wrap ErrInvalidDefinition; a store is never returned partially
// built.
func New(def Definition) (*Store, error) {
	s := &Store{
		concepts: make(map[string]Concept, len(def.Concepts)),
		outgoing: make(map[string][]Relationship),
		incoming: make(map[string][]Relationship),
		byTerm:   make(map[string]Term),
	}

	for _, c := range def.Concepts {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("%w: concept with empty id or name (id=%q name=%q)", ErrInvalidDefinition, c.ID, c.Name)
		}
		if _, dup := s.concepts[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate concept id %q", ErrInvalidDefinition, c.ID)
		}
		if c.Severity != "" && SeverityRank(c.Severity) == 0 {
			return nil, fmt.Errorf("%w: concept %q has unknown severity %q", ErrInvalidDefinition, c.ID, c.Severity)
		}
		s.concepts[c.ID] = c
		s.ids = append(s.ids, c.ID)
	}
	sort.Strings(s.ids)

	for _, r := range def.Relationships {
		if _, ok := s.concepts[r.Source]; !ok {
			return nil, fmt.Errorf("%w: relationship %s->%s references unknown source %q", ErrInvalidDefinition, r.Source, r.Target, r.Source)
		}
		if _, ok := s.concepts[r.Target]; !ok {
			return nil, fmt.Errorf("%w: relationship %s->%s references unknown target %q", ErrInvalidDefinition, r.Source, r.Target, r.Target)
		}
		if r.Weight < 0 || r.Weight > 1 {
			return nil, fmt.Errorf("%w: relationship %s->%s weight %g outside [0,1]", ErrInvalidDefinition, r.Source, r.Target, r.Weight)
		}
		s.rels = append(s.rels, r)
		s.outgoing[r.Source] = append(s.outgoing[r.Source], r)
		s.incoming[r.Target] = append(s.incoming[r.Target], r)
	}

	// Deterministic adjacency order: strongest edges first, ties by type and
	// far-side id. The reasoner's reproducibility depends on this.
	for _, adj := range []map[string][]Relationship{s.outgoing, s.incoming} {
		for _, rels := range adj {
			sort.SliceStable(rels, func(i, j int) bool {
				if rels[i].Weight != rels[j].Weight {
					return rels[i].Weight > rels[j].Weight
				}
				if rels[i].Type != rels[j].Type {
					return rels[i].Type < rels[j].Type
				}
				if rels[i].Source != rels[j].Source {
					return rels[i].Source < rels[j].Source
				}
				return rels[i].Target < rels[j].Target
			})
		}
	}

	s.buildTermIndex()
	return s, nil
}

// buildTermIndex indexes canonical names (confidence 1.0) and aliases
// (rank-decayed confidence) for entity matching. When two concepts share a
// surface form, the higher-confidence mapping wins; ties go to the smaller
// concept id so the index is deterministic.
func (s *Store) buildTermIndex() {
	add := func(text, conceptID string, confidence float64) {
		norm := Normalize(text)
		if norm == "" {
			return
		}
		cur, exists := s.byTerm[norm]
		if exists && (cur.Confidence > confidence ||
			(cur.Confidence == confidence && cur.ConceptID <= conceptID)) {
			return
		}
		s.byTerm[norm] = Term{Text: norm, ConceptID: conceptID, Confidence: confidence}
	}

	for _, id := range s.ids {
		c := s.concepts[id]
		add(c.Name, c.ID, 1.0)
		for rank, alias := range c.Aliases {
			add(alias, c.ID, aliasConfidence(rank))
		}
	}

	s.terms = make([]Term, 0, len(s.byTerm))
	for _, t := range s.byTerm {
		s.terms = append(s.terms, t)
	}
	// Longest surface form first so overlapping matches prefer longer spans.
	sort.Slice(s.terms, func(i, j int) bool {
		if len(s.terms[i].Text) != len(s.terms[j].Text) {
			return len(s.terms[i].Text) > len(s.terms[j].Text)
		}
		return s.terms[i].Text < s.terms[j].Text
	})
}

// Get returns the concept with the given id.
func (s *Store) Get(id string) (Concept, bool) {
	c, ok := s.concepts[id]
	return c, ok
}

// Find looks a concept up by name or alias (normalized, case-insensitive)
// and returns it with the match confidence.
func (s *Store) Find(text string) (Concept, float64, bool) {
	t, ok := s.byTerm[Normalize(text)]
	if !ok {
		return Concept{}, 0, false
	}
	c := s.concepts[t.ConceptID]
	return c, t.Confidence, true
}

// Terms returns every matchable surface form, longest first. The slice is
// shared and must not be mutated.
func (s *Store) Terms() []Term {
	return s.terms
}

// Concepts returns all concepts ordered by id.
func (s *Store) Concepts() []Concept {
	out := make([]Concept, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.concepts[id]
	}
	return out
}

// Relationships returns all relationships in definition order.
func (s *Store) Relationships() []Relationship {
	return s.rels
}

// Outgoing returns the relationships whose source is id, strongest first.
func (s *Store) Outgoing(id string) []Relationship {
	return s.outgoing[id]
}

// Incoming returns the relationships whose target is id, strongest first.
func (s *Store) Incoming(id string) []Relationship {
	return s.incoming[id]
}

// Edges returns all edges touching id in either direction, each paired with
// the concept on the far side. Outgoing edges come first; within each
// direction the adjacency order (strongest first) is preserved.
func (s *Store) Edges(id string) []Edge {
	out := make([]Edge, 0, len(s.outgoing[id])+len(s.incoming[id]))
	for _, r := range s.outgoing[id] {
		out = append(out, Edge{Rel: r, Other: s.concepts[r.Target]})
	}
	for _, r := range s.incoming[id] {
		out = append(out, Edge{Rel: r, Other: s.concepts[r.Source]})
	}
	return out
}

// Len reports the number of concepts.
func (s *Store) Len() int {
	return len(s.ids)
}
