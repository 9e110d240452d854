package medintel

import (
	"errors"
	"strings"
	"testing"

	"github.com/procheck/medintel/clinical"
	"github.com/procheck/medintel/nlp"
	"github.com/procheck/medintel/store"
)

func newTestEngine(t *testing.T) Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("creating engine: %v", err)
	}
	return e
}

func entityTexts(entities []nlp.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.Text
	}
	return out
}

func hasConcept(cs []store.Concept, id string) bool {
	for _, c := range cs {
		if c.ID == id {
			return true
		}
	}
	return false
}

func TestAnalyzeSymptomQuery(t *testing.T) {
	e := newTestEngine(t)

	res := e.Analyze("Patient has chest pain and shortness of breath")

	if res.Intent != nlp.IntentSymptomBased {
		t.Fatalf("intent = %q, want symptom_based", res.Intent)
	}
	texts := entityTexts(res.Entities)
	for _, want := range []string{"chest pain", "shortness of breath"} {
		found := false
		for _, got := range texts {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("entities %v missing %q", texts, want)
		}
	}
	dd := res.KnowledgeGraph.DifferentialDiagnosis
	if len(dd) == 0 || dd[0].ConceptID != "heart_attack" {
		t.Fatalf("differential = %+v, want heart_attack first", dd)
	}
	if res.QueryID == "" {
		t.Fatal("missing query id")
	}
	if res.RiskAssessment != nil {
		t.Fatal("risk assessment present without a profile")
	}
}

func TestAnalyzeEmergencyQuery(t *testing.T) {
	e := newTestEngine(t)

	res := e.Analyze("Cardiac arrest emergency protocol")

	if res.Intent != nlp.IntentEmergency {
		t.Fatalf("intent = %q, want emergency", res.Intent)
	}
	kg := res.KnowledgeGraph
	if len(kg.EmergencyIndicators) == 0 {
		t.Fatal("expected emergency indicators")
	}
	for _, want := range []string{"cpr", "defibrillation"} {
		if !hasConcept(kg.Treatments, want) {
			t.Fatalf("treatments missing %s: %+v", want, kg.Treatments)
		}
	}
	if len(res.SafetyAlerts) == 0 || !strings.Contains(res.SafetyAlerts[0], "Emergency") {
		t.Fatalf("safety alerts = %v, want emergency alert first", res.SafetyAlerts)
	}
}

func TestAnalyzeWithProfile(t *testing.T) {
	e := newTestEngine(t)
	age := 65

	res := e.Analyze("pneumonia treatment",
		WithProfile(&clinical.Profile{Age: &age, Allergies: []string{"penicillin"}}))

	if res.RiskAssessment == nil {
		t.Fatal("expected risk assessment with profile")
	}
	ra := res.RiskAssessment
	if clinical.RiskRank(ra.OverallRisk) < clinical.RiskRank(clinical.RiskHigh) {
		t.Fatalf("overall risk = %q, want at least high", ra.OverallRisk)
	}
	var found bool
	for _, c := range ra.Contraindications {
		if strings.Contains(store.Normalize(c.Drug), "penicillin") && strings.Contains(c.Reason, "allergy") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing penicillin allergy contraindication: %+v", ra.Contraindications)
	}
}

func TestAnalyzeUnmatchedQuery(t *testing.T) {
	e := newTestEngine(t)

	res := e.Analyze("what is the meaning of life")

	if res.Intent != nlp.IntentGeneral {
		t.Fatalf("intent = %q, want general", res.Intent)
	}
	if len(res.Entities) != 0 {
		t.Fatalf("unexpected entities: %v", entityTexts(res.Entities))
	}
	if !res.KnowledgeGraph.Empty() {
		t.Fatalf("expected empty knowledge graph, got %+v", res.KnowledgeGraph)
	}
}

func TestAnalyzeDrugQuery(t *testing.T) {
	e := newTestEngine(t)

	res := e.Analyze("aspirin dosage guidance")

	if res.Intent != nlp.IntentDrugBased {
		t.Fatalf("intent = %q, want drug_based", res.Intent)
	}
	var drugAlert bool
	for _, a := range res.SafetyAlerts {
		if strings.Contains(a, "Drug-related") {
			drugAlert = true
		}
	}
	if !drugAlert {
		t.Fatalf("safety alerts = %v, want drug alert", res.SafetyAlerts)
	}
	if len(res.Suggestions) == 0 {
		t.Fatal("expected drug-intent suggestions")
	}
}

func TestAnalyzeTopDiagnosesOption(t *testing.T) {
	e := newTestEngine(t)

	res := e.Analyze("chest pain and fever", WithTopDiagnoses(1))

	if n := len(res.KnowledgeGraph.DifferentialDiagnosis); n != 1 {
		t.Fatalf("differential length = %d, want 1", n)
	}
}

func TestAnalyzeQueryIDsUnique(t *testing.T) {
	e := newTestEngine(t)

	a := e.Analyze("chest pain")
	b := e.Analyze("chest pain")
	if a.QueryID == b.QueryID {
		t.Fatalf("query ids not unique: %q", a.QueryID)
	}
}

func TestConceptLookup(t *testing.T) {
	e := newTestEngine(t)

	if len(e.Concepts()) == 0 {
		t.Fatal("expected concepts from builtin graph")
	}
	c, ok := e.Concept("heart_attack")
	if !ok || c.Type != store.TypeCondition {
		t.Fatalf("Concept(heart_attack) = %+v, %v", c, ok)
	}
	if _, ok := e.Concept("nope"); ok {
		t.Fatal("lookup of unknown id succeeded")
	}
}

func TestNewInvalidGraphPath(t *testing.T) {
	_, err := New(Config{GraphPath: "testdata/does-not-exist.json"})
	if err == nil {
		t.Fatal("expected error for missing graph file")
	}
}

func TestNewInvalidGraphDefinition(t *testing.T) {
	_, err := store.New(store.Definition{
		Concepts: []store.Concept{
			{ID: "a", Name: "a", Type: store.TypeSymptom},
		},
		Relationships: []store.Relationship{
			{Source: "a", Target: "missing", Type: store.RelSymptomOf, Weight: 0.5},
		},
	})
	if !errors.Is(err, ErrInvalidGraphDefinition) {
		t.Fatalf("err = %v, want ErrInvalidGraphDefinition", err)
	}
}
