package graph

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/procheck/medintel/store"
)

func builtinStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Builtin()
	if err != nil {
		t.Fatalf("loading builtin knowledge base: %v", err)
	}
	return s
}

func diagnosisIDs(ds []Diagnosis) []string {
	ids := make([]string, len(ds))
	for i, d := range ds {
		ids[i] = d.ConceptID
	}
	return ids
}

func conceptIDs(cs []store.Concept) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

func contains(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestReasonEmptySeeds(t *testing.T) {
	r := New(builtinStore(t), Config{})

	for name, seeds := range map[string][]Seed{
		"nil":     nil,
		"empty":   {},
		"unknown": {{ConceptID: "no_such_concept", Confidence: 1.0}},
	} {
		t.Run(name, func(t *testing.T) {
			res := r.Reason(seeds)
			if !res.Empty() {
				t.Fatalf("expected empty result, got %+v", res)
			}
			if res.DifferentialDiagnosis == nil || res.Treatments == nil {
				t.Fatal("result lists must be non-nil even when empty")
			}
		})
	}
}

func TestReasonDifferentialRanking(t *testing.T) {
	r := New(builtinStore(t), Config{})

	res := r.Reason([]Seed{
		{ConceptID: "chest_pain", Confidence: 1.0},
		{ConceptID: "shortness_of_breath", Confidence: 1.0},
	})

	if len(res.DifferentialDiagnosis) == 0 {
		t.Fatal("expected differential diagnoses")
	}
	top := res.DifferentialDiagnosis[0]
	if top.ConceptID != "heart_attack" {
		t.Fatalf("top diagnosis = %s, want heart_attack (got %v)", top.ConceptID, diagnosisIDs(res.DifferentialDiagnosis))
	}
	// chest_pain (0.9) + shortness_of_breath (0.8) over total confidence 2.0.
	if got, want := top.Score, 0.85; !closeTo(got, want) {
		t.Fatalf("heart_attack score = %v, want %v", got, want)
	}
	for _, d := range res.DifferentialDiagnosis {
		if d.Score < 0 || d.Score > 1 {
			t.Fatalf("score out of [0,1]: %s = %v", d.ConceptID, d.Score)
		}
	}
	for i := 1; i < len(res.DifferentialDiagnosis); i++ {
		if res.DifferentialDiagnosis[i].Score > res.DifferentialDiagnosis[i-1].Score {
			t.Fatalf("diagnoses not sorted by score: %v", res.DifferentialDiagnosis)
		}
	}
}

func TestReasonConfidenceWeighting(t *testing.T) {
	r := New(builtinStore(t), Config{})

	// With shortness_of_breath dominating, asthma (0.9 edge) should outrank
	// heart_attack (0.8 edge from the same symptom, 0.9 from the weak one).
	res := r.Reason([]Seed{
		{ConceptID: "chest_pain", Confidence: 0.2},
		{ConceptID: "shortness_of_breath", Confidence: 1.0},
	})

	ids := diagnosisIDs(res.DifferentialDiagnosis)
	if len(ids) < 2 {
		t.Fatalf("expected at least two diagnoses, got %v", ids)
	}
	if ids[0] != "asthma" {
		t.Fatalf("top diagnosis = %s, want asthma (got %v)", ids[0], ids)
	}
}

func TestReasonEmergencyTreatments(t *testing.T) {
	r := New(builtinStore(t), Config{})

	res := r.Reason([]Seed{{ConceptID: "cardiac_arrest", Confidence: 1.0}})

	if !contains(conceptIDs(res.EmergencyIndicators), "cardiac_arrest") {
		t.Fatalf("emergency indicators missing cardiac_arrest: %v", conceptIDs(res.EmergencyIndicators))
	}
	treatments := conceptIDs(res.Treatments)
	for _, want := range []string{"cpr", "defibrillation"} {
		if !contains(treatments, want) {
			t.Fatalf("treatments missing %s: %v", want, treatments)
		}
	}
	if !contains(conceptIDs(res.Drugs), "epinephrine") {
		t.Fatalf("drugs missing epinephrine: %v", conceptIDs(res.Drugs))
	}
}

func TestReasonContraindications(t *testing.T) {
	r := New(builtinStore(t), Config{})

	res := r.Reason([]Seed{{ConceptID: "warfarin", Confidence: 1.0}})

	var withIDs []string
	for _, c := range res.Contraindications {
		if c.SubjectID != "warfarin" {
			t.Fatalf("contraindication subject = %s, want warfarin", c.SubjectID)
		}
		if c.Type != store.RelInteractsWith && c.Type != store.RelContraindicatedWith {
			t.Fatalf("unexpected contraindication type %q", c.Type)
		}
		withIDs = append(withIDs, c.With.ID)
	}
	for _, want := range []string{"aspirin", "azithromycin"} {
		if !contains(withIDs, want) {
			t.Fatalf("contraindications missing %s: %v", want, withIDs)
		}
	}
}

func TestReasonWeakEdgesDropped(t *testing.T) {
	r := New(builtinStore(t), Config{MinWeight: 0.95})

	res := r.Reason([]Seed{
		{ConceptID: "chest_pain", Confidence: 1.0},
		{ConceptID: "shortness_of_breath", Confidence: 1.0},
	})

	// No symptom edge in the builtin graph reaches 0.95.
	if len(res.DifferentialDiagnosis) != 0 {
		t.Fatalf("expected no diagnoses above threshold, got %v", diagnosisIDs(res.DifferentialDiagnosis))
	}
}

func TestReasonDuplicateSeeds(t *testing.T) {
	r := New(builtinStore(t), Config{})

	single := r.Reason([]Seed{{ConceptID: "chest_pain", Confidence: 0.9}})
	doubled := r.Reason([]Seed{
		{ConceptID: "chest_pain", Confidence: 0.4},
		{ConceptID: "chest_pain", Confidence: 0.9},
	})

	if len(single.DifferentialDiagnosis) != len(doubled.DifferentialDiagnosis) {
		t.Fatal("duplicate seeds changed the differential")
	}
	for i := range single.DifferentialDiagnosis {
		if single.DifferentialDiagnosis[i] != doubled.DifferentialDiagnosis[i] {
			t.Fatalf("duplicate seeds changed diagnosis %d: %+v vs %+v",
				i, single.DifferentialDiagnosis[i], doubled.DifferentialDiagnosis[i])
		}
	}
}

func TestReasonTopDiagnosesCap(t *testing.T) {
	r := New(builtinStore(t), Config{TopDiagnoses: 1})

	res := r.Reason([]Seed{
		{ConceptID: "chest_pain", Confidence: 1.0},
		{ConceptID: "fever", Confidence: 1.0},
	})
	if len(res.DifferentialDiagnosis) != 1 {
		t.Fatalf("expected 1 diagnosis, got %d", len(res.DifferentialDiagnosis))
	}
}

// fixtureStore builds a small graph tuned for ordering edge cases the
// builtin knowledge base does not isolate well.
func fixtureStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Definition{
		Concepts: []store.Concept{
			{ID: "dizziness", Name: "dizziness", Type: store.TypeSymptom, Severity: store.SeverityMedium},
			{ID: "stroke", Name: "stroke", Type: store.TypeCondition, Category: "neurological", Severity: store.SeverityCritical},
			{ID: "anemia", Name: "anemia", Type: store.TypeCondition, Category: "hematological", Severity: store.SeverityHigh},
			{ID: "vertigo", Name: "vertigo", Type: store.TypeCondition, Category: "neurological", Severity: store.SeverityHigh},
			{ID: "diabetes", Name: "diabetes", Type: store.TypeCondition, Category: "endocrine", Severity: store.SeverityHigh},
			{ID: "obesity", Name: "obesity", Type: store.TypeCondition, Category: "endocrine", Severity: store.SeverityMedium},
			{ID: "kidney_disease", Name: "kidney disease", Type: store.TypeCondition, Category: "renal", Severity: store.SeverityHigh},
			{ID: "metabolic_syndrome", Name: "metabolic syndrome", Type: store.TypeCondition, Category: "endocrine", Severity: store.SeverityMedium},
			{ID: "gout", Name: "gout", Type: store.TypeCondition, Category: "musculoskeletal", Severity: store.SeverityMedium},
			{ID: "celiac_disease", Name: "celiac disease", Type: store.TypeCondition, Category: "gastrointestinal", Severity: store.SeverityMedium},
			{ID: "hypertension", Name: "hypertension", Type: store.TypeCondition, Category: "cardiovascular", Severity: store.SeverityHigh},
		},
		Relationships: []store.Relationship{
			{Source: "dizziness", Target: "stroke", Type: store.RelSymptomOf, Weight: 0.8, Evidence: store.EvidenceHigh},
			{Source: "dizziness", Target: "anemia", Type: store.RelSymptomOf, Weight: 0.8, Evidence: store.EvidenceHigh},
			{Source: "dizziness", Target: "vertigo", Type: store.RelSymptomOf, Weight: 0.8, Evidence: store.EvidenceHigh},
			{Source: "diabetes", Target: "hypertension", Type: store.RelRelatedTo, Weight: 0.95, Evidence: store.EvidenceHigh},
			{Source: "diabetes", Target: "obesity", Type: store.RelRelatedTo, Weight: 0.9, Evidence: store.EvidenceHigh},
			{Source: "diabetes", Target: "gout", Type: store.RelContraindicatedWith, Weight: 0.85, Evidence: store.EvidenceMedium},
			{Source: "diabetes", Target: "kidney_disease", Type: store.RelInteractsWith, Weight: 0.8, Evidence: store.EvidenceHigh},
			{Source: "diabetes", Target: "metabolic_syndrome", Type: store.RelInteractsWith, Weight: 0.7, Evidence: store.EvidenceMedium},
			{Source: "diabetes", Target: "celiac_disease", Type: store.RelRelatedTo, Weight: 0.3, Evidence: store.EvidenceLow},
		},
	})
	if err != nil {
		t.Fatalf("building fixture store: %v", err)
	}
	return s
}

func TestReasonDifferentialTieBreak(t *testing.T) {
	r := New(fixtureStore(t), Config{})

	res := r.Reason([]Seed{{ConceptID: "dizziness", Confidence: 1.0}})

	// All three conditions score 0.8: severity ranks first, then name.
	want := []string{"stroke", "anemia", "vertigo"}
	got := diagnosisIDs(res.DifferentialDiagnosis)
	if len(got) != len(want) {
		t.Fatalf("diagnoses = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("diagnoses = %v, want %v", got, want)
		}
	}
	for _, d := range res.DifferentialDiagnosis {
		if !closeTo(d.Score, 0.8) {
			t.Fatalf("%s score = %v, want 0.8", d.ConceptID, d.Score)
		}
	}
}

func TestReasonRelatedConditions(t *testing.T) {
	r := New(fixtureStore(t), Config{})

	res := r.Reason([]Seed{
		{ConceptID: "diabetes", Confidence: 1.0},
		{ConceptID: "hypertension", Confidence: 1.0},
	})

	// hypertension is itself a seed; gout sits behind a contraindication edge;
	// metabolic_syndrome shares the seed's category without a related_to edge;
	// celiac_disease is below the weight floor. That leaves obesity (related_to,
	// same category allowed) and kidney_disease (cross-category adjacency).
	want := []string{"obesity", "kidney_disease"}
	got := conceptIDs(res.RelatedConditions)
	if len(got) != len(want) {
		t.Fatalf("related conditions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("related conditions = %v, want %v", got, want)
		}
	}
}

func TestReasonRelatedConditionsCap(t *testing.T) {
	r := New(fixtureStore(t), Config{RelatedPerSeed: 1})

	res := r.Reason([]Seed{{ConceptID: "diabetes", Confidence: 1.0}})

	// Exactly one discovery per seed: the strongest qualifying edge wins.
	got := conceptIDs(res.RelatedConditions)
	if len(got) != 1 || got[0] != "hypertension" {
		t.Fatalf("related conditions = %v, want [hypertension]", got)
	}
}

func TestReasonDeterministic(t *testing.T) {
	r := New(builtinStore(t), Config{})
	seeds := []Seed{
		{ConceptID: "chest_pain", Confidence: 0.9},
		{ConceptID: "shortness_of_breath", Confidence: 0.85},
		{ConceptID: "aspirin", Confidence: 0.9},
	}

	first, err := json.Marshal(r.Reason(seeds))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(r.Reason(seeds))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d diverged:\n%s\nvs\n%s", i, first, again)
		}
	}
}

func closeTo(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
