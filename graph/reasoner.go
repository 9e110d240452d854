// Package graph derives clinical knowledge from the concept store for one
// query: differential diagnoses, emergency indicators, treatment and drug
// sets, related conditions, and graph-level contraindications. Reasoning is
// pure in-memory traversal — no I/O, no randomness — so a fixed store and a
// fixed seed set always reproduce the exact same result.
package graph

import (
	"sort"

	"github.com/procheck/medintel/store"
)

// Seed is a concept matched by an extracted entity, carrying the extraction
// confidence that scales the concept's contribution to diagnosis scores.
type Seed struct {
	ConceptID  string  `json:"concept_id"`
	Confidence float64 `json:"confidence"`
}

// Config holds reasoner tuning knobs.
type Config struct {
	// TopDiagnoses caps the differential diagnosis list. Default 5.
	TopDiagnoses int
	// MinWeight drops edges weaker than this from every derived set.
	// Default 0.5.
	MinWeight float64
	// RelatedPerSeed caps related-condition discovery per seed. Default 3.
	RelatedPerSeed int
}

// Reasoner walks one concept store. Safe for concurrent use: the store is
// immutable and the reasoner keeps no per-query state.
type Reasoner struct {
	store *store.Store
	cfg   Config
}

// New creates a reasoner over the given store, applying defaults for zero
// config values.
func New(s *store.Store, cfg Config) *Reasoner {
	if cfg.TopDiagnoses == 0 {
		cfg.TopDiagnoses = 5
	}
	if cfg.MinWeight == 0 {
		cfg.MinWeight = 0.5
	}
	if cfg.RelatedPerSeed == 0 {
		cfg.RelatedPerSeed = 3
	}
	return &Reasoner{store: s, cfg: cfg}
}

// Reason derives a knowledge-graph result from the seed concepts. Unknown
// seed ids are skipped; an empty or fully-unknown seed set yields an empty
// result rather than an error.
func (r *Reasoner) Reason(seeds []Seed) *Result {
	// Deduplicate seeds by concept, keeping the strongest extraction, and fix
	// the iteration order up front — every derived list inherits it.
	conf := make(map[string]float64)
	for _, s := range seeds {
		if _, ok := r.store.Get(s.ConceptID); !ok {
			continue
		}
		if s.Confidence > conf[s.ConceptID] {
			conf[s.ConceptID] = s.Confidence
		}
	}
	ids := make([]string, 0, len(conf))
	for id := range conf {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res := emptyResult()
	if len(ids) == 0 {
		return res
	}

	seedSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		seedSet[id] = true
	}

	// Categorize seeds by concept type.
	for _, id := range ids {
		c, _ := r.store.Get(id)
		switch c.Type {
		case store.TypeSymptom:
			res.Symptoms = append(res.Symptoms, c)
		case store.TypeCondition:
			res.PrimaryConditions = append(res.PrimaryConditions, c)
		case store.TypeProcedure:
			res.Treatments = append(res.Treatments, c)
		case store.TypeDrug:
			res.Drugs = append(res.Drugs, c)
		}
	}

	res.DifferentialDiagnosis = r.differential(ids, conf)
	res.EmergencyIndicators = r.emergencyIndicators(ids)
	r.expandTreatments(ids, res)
	res.RelatedConditions = r.relatedConditions(ids, seedSet)
	res.Contraindications = r.contraindications(ids)
	return res
}

// differential scores every condition reachable from a seed symptom over a
// symptom_of edge. Each edge contributes weight x extraction confidence;
// accumulated scores are normalized by the total seed-symptom confidence
// (the maximum possible weighted sum) so scores stay in [0,1]. Ties rank by
// severity, then name.
func (r *Reasoner) differential(ids []string, conf map[string]float64) []Diagnosis {
	scores := make(map[string]float64)
	var totalConf float64

	for _, id := range ids {
		c, _ := r.store.Get(id)
		if c.Type != store.TypeSymptom {
			continue
		}
		totalConf += conf[id]
		for _, rel := range r.store.Outgoing(id) {
			if rel.Type != store.RelSymptomOf || rel.Weight < r.cfg.MinWeight {
				continue
			}
			target, ok := r.store.Get(rel.Target)
			if !ok || target.Type != store.TypeCondition {
				continue
			}
			scores[target.ID] += rel.Weight * conf[id]
		}
	}
	if len(scores) == 0 || totalConf == 0 {
		return []Diagnosis{}
	}

	diagnoses := make([]Diagnosis, 0, len(scores))
	for id, score := range scores {
		c, _ := r.store.Get(id)
		diagnoses = append(diagnoses, Diagnosis{
			ConceptID: c.ID,
			Name:      c.Name,
			Score:     score / totalConf,
			Severity:  c.Severity,
			Category:  c.Category,
		})
	}
	sort.Slice(diagnoses, func(i, j int) bool {
		if diagnoses[i].Score != diagnoses[j].Score {
			return diagnoses[i].Score > diagnoses[j].Score
		}
		si, sj := store.SeverityRank(diagnoses[i].Severity), store.SeverityRank(diagnoses[j].Severity)
		if si != sj {
			return si > sj
		}
		return diagnoses[i].Name < diagnoses[j].Name
	})
	if len(diagnoses) > r.cfg.TopDiagnoses {
		diagnoses = diagnoses[:r.cfg.TopDiagnoses]
	}
	return diagnoses
}

// emergencyIndicators surfaces every seed or 1-hop-reachable concept with
// critical severity, independent of diagnosis ranking and of the intent
// classifier's own emergency tier.
func (r *Reasoner) emergencyIndicators(ids []string) []store.Concept {
	seen := make(map[string]bool)
	out := []store.Concept{}
	add := func(c store.Concept) {
		if c.Severity == store.SeverityCritical && !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}

	for _, id := range ids {
		c, _ := r.store.Get(id)
		add(c)
		for _, e := range r.store.Edges(id) {
			add(e.Other)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// expandTreatments follows treated_by edges from every seed, appending
// drug-typed targets to the drug list and everything else to treatments.
// Seed procedures and drugs are already present from categorization.
func (r *Reasoner) expandTreatments(ids []string, res *Result) {
	inTreatments := make(map[string]bool, len(res.Treatments))
	for _, c := range res.Treatments {
		inTreatments[c.ID] = true
	}
	inDrugs := make(map[string]bool, len(res.Drugs))
	for _, c := range res.Drugs {
		inDrugs[c.ID] = true
	}

	for _, id := range ids {
		for _, rel := range r.store.Outgoing(id) {
			if rel.Type != store.RelTreatedBy || rel.Weight < r.cfg.MinWeight {
				continue
			}
			target, ok := r.store.Get(rel.Target)
			if !ok {
				continue
			}
			if target.Type == store.TypeDrug {
				if !inDrugs[target.ID] {
					inDrugs[target.ID] = true
					res.Drugs = append(res.Drugs, target)
				}
			} else if !inTreatments[target.ID] {
				inTreatments[target.ID] = true
				res.Treatments = append(res.Treatments, target)
			}
		}
	}
}

// relatedConditions collects 1-hop neighbor conditions: related_to edges
// always qualify, and generic adjacency qualifies when the neighbor's
// category differs from the seed's. Seeds themselves are excluded; each seed
// contributes at most RelatedPerSeed discoveries.
func (r *Reasoner) relatedConditions(ids []string, seedSet map[string]bool) []store.Concept {
	seen := make(map[string]bool)
	out := []store.Concept{}

	for _, id := range ids {
		seed, _ := r.store.Get(id)
		found := 0
		for _, e := range r.store.Edges(id) {
			if found >= r.cfg.RelatedPerSeed {
				break
			}
			other := e.Other
			if other.Type != store.TypeCondition || seedSet[other.ID] || seen[other.ID] {
				continue
			}
			if e.Rel.Weight < r.cfg.MinWeight {
				continue
			}
			if e.Rel.Type != store.RelRelatedTo && other.Category == seed.Category {
				continue
			}
			// Contraindication edges carry avoidance knowledge, not
			// relatedness.
			if e.Rel.Type == store.RelContraindicatedWith {
				continue
			}
			seen[other.ID] = true
			out = append(out, other)
			found++
		}
	}
	return out
}

// contraindications reports contraindicated_with and interacts_with edges
// touching any seed drug or condition.
func (r *Reasoner) contraindications(ids []string) []Contraindication {
	type key struct{ subject, with, typ string }
	seen := make(map[key]bool)
	out := []Contraindication{}

	for _, id := range ids {
		seed, _ := r.store.Get(id)
		if seed.Type != store.TypeDrug && seed.Type != store.TypeCondition {
			continue
		}
		for _, e := range r.store.Edges(id) {
			if e.Rel.Type != store.RelContraindicatedWith && e.Rel.Type != store.RelInteractsWith {
				continue
			}
			k := key{seed.ID, e.Other.ID, e.Rel.Type}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, Contraindication{
				SubjectID: seed.ID,
				Subject:   seed.Name,
				With:      e.Other,
				Type:      e.Rel.Type,
				Weight:    e.Rel.Weight,
				Evidence:  e.Rel.Evidence,
			})
		}
	}
	return out
}
