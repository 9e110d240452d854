// Package clinical scores patient risk against a knowledge-graph result.
// Scoring, contraindication checks, and dosage adjustments are all driven by
// declarative rule tables in rules.go; the engine just walks them.
package clinical

import (
	"fmt"
	"strings"

	"github.com/procheck/medintel/graph"
	"github.com/procheck/medintel/store"
)

// Risk levels ordered from least to most severe.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Contraindication severities.
const (
	SeverityContraindicated = "contraindicated"
	SeveritySevere          = "severe"
	SeverityModerate        = "moderate"
)

// RiskRank orders risk levels for comparison. Unknown levels rank below low.
func RiskRank(level string) int {
	switch level {
	case RiskLow:
		return 1
	case RiskModerate:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	}
	return 0
}

// ContraindicationEntry is one reason a drug should be avoided or watched
// for this patient.
type ContraindicationEntry struct {
	Drug           string `json:"drug"`
	Allergy        string `json:"allergy,omitempty"`
	With           string `json:"interacting_with,omitempty"`
	Reason         string `json:"reason"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// DosageAdjustment is one accumulated dosing modification.
type DosageAdjustment struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Adjustments []string `json:"adjustments,omitempty"`
}

// RiskAssessment aggregates everything the engine concluded for one query.
type RiskAssessment struct {
	OverallRisk       string                  `json:"overall_risk"`
	RiskFactors       []string                `json:"risk_factors"`
	Contraindications []ContraindicationEntry `json:"contraindications"`
	DosageAdjustments []DosageAdjustment      `json:"dosage_adjustments"`
	Recommendations   []string                `json:"recommendations"`
}

// Engine evaluates the rule tables against a patient profile. The store is
// used to look up safer drug alternatives when an allergy rules a drug out.
type Engine struct {
	store *store.Store
}

// New creates an engine backed by the given concept store.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Assess scores the patient against the knowledge-graph result. A nil
// profile is treated as an empty one, so results derived from the graph
// alone (emergency indicators, graph-level interactions) still count. Assess
// never fails; sparse inputs just produce a sparse assessment.
func (e *Engine) Assess(kg *graph.Result, profile *Profile) *RiskAssessment {
	p := profile.normalized()

	res := &RiskAssessment{
		RiskFactors:       []string{},
		Contraindications: []ContraindicationEntry{},
		DosageAdjustments: []DosageAdjustment{},
	}

	points := 0
	var recs []string
	for _, rule := range riskRules {
		if !rule.applies(p, kg) {
			continue
		}
		points++
		res.RiskFactors = append(res.RiskFactors, rule.factor(p, kg))
		recs = append(recs, rule.recs...)
	}

	res.Contraindications = e.contraindications(kg, p)
	for _, c := range res.Contraindications {
		// Contraindications escalate beyond the base point rules.
		switch c.Severity {
		case SeverityContraindicated:
			points += 2
		case SeveritySevere:
			points++
		}
		if c.Recommendation != "" {
			recs = append(recs, c.Recommendation)
		}
	}

	for _, rule := range dosageRules {
		adjs, ruleRecs := rule(p)
		res.DosageAdjustments = append(res.DosageAdjustments, adjs...)
		recs = append(recs, ruleRecs...)
	}

	res.OverallRisk = riskFromPoints(points)
	res.Recommendations = dedup(recs)
	return res
}

func riskFromPoints(points int) string {
	switch {
	case points == 0:
		return RiskLow
	case points <= 2:
		return RiskModerate
	case points <= 4:
		return RiskHigh
	}
	return RiskCritical
}

// resultDrug is a drug or treatment from the knowledge-graph result prepared
// for case-insensitive matching.
type resultDrug struct {
	id       string
	name     string
	norm     string
	category string
}

func resultDrugs(kg *graph.Result) []resultDrug {
	if kg == nil {
		return nil
	}
	var out []resultDrug
	seen := make(map[string]bool)
	for _, list := range [][]store.Concept{kg.Drugs, kg.Treatments} {
		for _, c := range list {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, resultDrug{
				id:       c.ID,
				name:     c.Name,
				norm:     store.Normalize(c.Name),
				category: store.Normalize(c.Category),
			})
		}
	}
	return out
}

func (e *Engine) contraindications(kg *graph.Result, p *Profile) []ContraindicationEntry {
	out := []ContraindicationEntry{}
	drugs := resultDrugs(kg)

	// Allergy hits against the result's drug and treatment lists.
	for _, d := range drugs {
		allergy, ok := matchesAllergy(d.norm, p.Allergies)
		if !ok {
			continue
		}
		rec := fmt.Sprintf("Avoid %s due to %s allergy", d.name, allergy)
		if alt := e.saferAlternative(d.id, p.Allergies); alt != "" {
			rec = fmt.Sprintf("Use %s instead of %s due to %s allergy", alt, d.name, allergy)
		}
		out = append(out, ContraindicationEntry{
			Drug:           d.name,
			Allergy:        allergy,
			Reason:         fmt.Sprintf("documented %s allergy", allergy),
			Severity:       SeverityContraindicated,
			Recommendation: rec,
		})
	}

	// Teratogenic drugs when the patient is pregnant.
	if p.pregnant() {
		for _, d := range drugs {
			if !containsAnyTerm(d.norm, pregnancyAvoid) {
				continue
			}
			out = append(out, ContraindicationEntry{
				Drug:           d.name,
				Reason:         "pregnancy",
				Severity:       SeveritySevere,
				Recommendation: fmt.Sprintf("Avoid %s in pregnancy due to teratogenic risk", d.name),
			})
		}
	}

	// Current medications crossed against the result's drugs.
	for _, med := range p.Medications {
		for _, pat := range interactionPatterns {
			if !strings.Contains(med, pat.drug) {
				continue
			}
			for _, d := range drugs {
				if !matchesInteraction(d, pat.interacts) {
					continue
				}
				out = append(out, ContraindicationEntry{
					Drug:           med,
					With:           d.name,
					Reason:         "drug interaction",
					Severity:       SeverityModerate,
					Recommendation: fmt.Sprintf("Monitor for interaction between %s and %s", med, d.name),
				})
			}
		}
	}

	// Graph-level edges apply regardless of patient data.
	for _, gc := range kgContraindications(kg) {
		sev := SeverityModerate
		rec := fmt.Sprintf("Monitor for interaction between %s and %s", gc.Subject, gc.With.Name)
		if gc.Type == store.RelContraindicatedWith {
			sev = SeveritySevere
			rec = fmt.Sprintf("Avoid combining %s with %s", gc.Subject, gc.With.Name)
		}
		out = append(out, ContraindicationEntry{
			Drug:           gc.Subject,
			With:           gc.With.Name,
			Reason:         gc.Type,
			Severity:       sev,
			Recommendation: rec,
		})
	}
	return out
}

func kgContraindications(kg *graph.Result) []graph.Contraindication {
	if kg == nil {
		return nil
	}
	return kg.Contraindications
}

// matchesAllergy reports whether a normalized drug name hits any profile
// allergy, directly or through a shared allergy class.
func matchesAllergy(drug string, allergies []string) (string, bool) {
	for _, a := range allergies {
		if a == drug || strings.Contains(drug, a) || strings.Contains(a, drug) {
			return a, true
		}
		for _, class := range drugAllergyClasses {
			if !containsAnyTerm(a, class.members) && a != class.name {
				continue
			}
			for _, member := range class.members {
				if drug == member || strings.Contains(drug, member) {
					return a, true
				}
			}
		}
	}
	return "", false
}

// matchesInteraction matches an interaction term against the drug's name or
// its category (the tables name categories like "antibiotics").
func matchesInteraction(d resultDrug, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(d.norm, t) {
			return true
		}
		if d.category != "" && (strings.Contains(t, d.category) || strings.Contains(d.category, t)) {
			return true
		}
	}
	return false
}

// saferAlternative walks treated_by edges around the ruled-out drug: any
// condition the drug treats may offer another drug free of the patient's
// allergies. Adjacency order is strongest-edge-first, so the best-supported
// alternative wins.
func (e *Engine) saferAlternative(drugID string, allergies []string) string {
	if e.store == nil || drugID == "" {
		return ""
	}
	for _, rel := range e.store.Incoming(drugID) {
		if rel.Type != store.RelTreatedBy {
			continue
		}
		for _, alt := range e.store.Outgoing(rel.Source) {
			if alt.Type != store.RelTreatedBy || alt.Target == drugID {
				continue
			}
			c, ok := e.store.Get(alt.Target)
			if !ok || c.Type != store.TypeDrug {
				continue
			}
			if _, hit := matchesAllergy(store.Normalize(c.Name), allergies); hit {
				continue
			}
			return c.Name
		}
	}
	return ""
}

func dedup(in []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
