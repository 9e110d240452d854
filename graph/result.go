package graph

import "github.com/procheck/medintel/store"

// Diagnosis is one ranked candidate condition in a differential diagnosis.
// Score is a normalized match strength in [0,1]: the confidence-weighted sum
// of symptom edge weights divided by the maximum such sum the seed symptoms
// could have produced.
type Diagnosis struct {
	ConceptID string  `json:"concept_id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Severity  string  `json:"severity,omitempty"`
	Category  string  `json:"category,omitempty"`
}

// Contraindication is a graph-level caution: a contraindicated_with or
// interacts_with edge touching a seed drug or condition. It is baseline
// knowledge, independent of any particular patient.
type Contraindication struct {
	SubjectID string        `json:"subject_id"`
	Subject   string        `json:"subject"`
	With      store.Concept `json:"with"`
	Type      string        `json:"type"`
	Weight    float64       `json:"weight"`
	Evidence  string        `json:"evidence,omitempty"`
}

// Result bundles everything the reasoner derives from one query's entities.
// All lists are non-nil and deterministically ordered, so identical inputs
// produce byte-identical serialized results.
type Result struct {
	PrimaryConditions     []store.Concept    `json:"primary_conditions"`
	Symptoms              []store.Concept    `json:"symptoms"`
	Treatments            []store.Concept    `json:"treatments"`
	Drugs                 []store.Concept    `json:"drugs"`
	EmergencyIndicators   []store.Concept    `json:"emergency_indicators"`
	Contraindications     []Contraindication `json:"contraindications"`
	RelatedConditions     []store.Concept    `json:"related_conditions"`
	DifferentialDiagnosis []Diagnosis        `json:"differential_diagnosis"`
}

// Empty reports whether the result carries no knowledge at all.
func (r *Result) Empty() bool {
	return len(r.PrimaryConditions) == 0 && len(r.Symptoms) == 0 &&
		len(r.Treatments) == 0 && len(r.Drugs) == 0 &&
		len(r.EmergencyIndicators) == 0 && len(r.Contraindications) == 0 &&
		len(r.RelatedConditions) == 0 && len(r.DifferentialDiagnosis) == 0
}

func emptyResult() *Result {
	return &Result{
		PrimaryConditions:     []store.Concept{},
		Symptoms:              []store.Concept{},
		Treatments:            []store.Concept{},
		Drugs:                 []store.Concept{},
		EmergencyIndicators:   []store.Concept{},
		Contraindications:     []Contraindication{},
		RelatedConditions:     []store.Concept{},
		DifferentialDiagnosis: []Diagnosis{},
	}
}
