// Package nlp turns raw clinical query text into an intent label, a set of
// typed medical entities, and a coarse medical context. All classification is
// rule-driven: ordered rule tables over fixed lexicons plus entity matching
// against the concept store's names and synonyms. Analysis is pure
// computation; malformed or entity-free text degrades to the general intent
// with empty results, never an error.
package nlp

import (
	"github.com/procheck/medintel/store"
)

// Intent labels, in priority order. Earlier tiers shadow later ones: an
// emergency phrase wins even when a drug name also appears in the query.
const (
	IntentEmergency      = "emergency"
	IntentSymptomBased   = "symptom_based"
	IntentProcedureBased = "procedure_based"
	IntentDrugBased      = "drug_based"
	IntentGeneral        = "general"
)

// Entity is a span of query text recognized as referring to a concept.
type Entity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	ConceptID  string  `json:"concept_id"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// Context holds coarse patient/situation attributes parsed from the query
// text itself. Any subset may be absent; extraction omits an attribute
// rather than guessing when no pattern matches.
type Context struct {
	Age     *int   `json:"age,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Urgency string `json:"urgency,omitempty"`
	Setting string `json:"setting,omitempty"`
}

// Analysis is the full output for one query.
type Analysis struct {
	Query    string   `json:"query"`
	Intent   string   `json:"intent"`
	Entities []Entity `json:"entities"`
	Context  Context  `json:"context"`
}

// Analyzer classifies queries against one concept store. The store is an
// explicit dependency so test fixtures with small graphs can coexist with
// the full knowledge base in one process.
type Analyzer struct {
	store *store.Store
}

// New creates an analyzer over the given concept store.
func New(s *store.Store) *Analyzer {
	return &Analyzer{store: s}
}

// Analyze extracts entities, classifies intent, and parses context from one
// query. It never fails: unparseable text yields the general intent with
// empty entities and context.
func (a *Analyzer) Analyze(query string) Analysis {
	entities := a.extractEntities(query)
	return Analysis{
		Query:    query,
		Intent:   classifyIntent(query, entities),
		Entities: entities,
		Context:  extractContext(query),
	}
}

// Suggestions returns follow-up topics for an intent, used by callers to
// steer protocol generation. At most four are returned.
func Suggestions(intent string) []string {
	switch intent {
	case IntentSymptomBased:
		return []string{
			"Related conditions and differential diagnosis",
			"Emergency protocols for severe symptoms",
			"Diagnostic procedures and tests",
			"Treatment protocols and medications",
		}
	case IntentProcedureBased:
		return []string{
			"Step-by-step procedure guide",
			"Required equipment and medications",
			"Contraindications and safety precautions",
			"Post-procedure care and monitoring",
		}
	case IntentEmergency:
		return []string{
			"Immediate emergency response protocols",
			"Critical care procedures",
			"Emergency medications and dosages",
			"Trauma and resuscitation protocols",
		}
	case IntentDrugBased:
		return []string{
			"Dosage and administration guidelines",
			"Contraindications and drug interactions",
			"Adverse reactions and monitoring",
		}
	default:
		return nil
	}
}

// EnhanceQuery expands a query with synonyms of its matched concepts (up to
// two aliases per concept) so downstream keyword search sees alternate
// surface forms. The original query text is preserved as the prefix.
func (a *Analyzer) EnhanceQuery(query string, entities []Entity) string {
	enhanced := query
	seen := make(map[string]bool)
	for _, e := range entities {
		if e.ConceptID == "" || seen[e.ConceptID] {
			continue
		}
		seen[e.ConceptID] = true
		c, ok := a.store.Get(e.ConceptID)
		if !ok {
			continue
		}
		for i, alias := range c.Aliases {
			if i >= 2 {
				break
			}
			enhanced += " " + alias
		}
	}
	return enhanced
}
