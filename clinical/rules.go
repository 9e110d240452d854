package clinical

import (
	"strings"

	"github.com/procheck/medintel/graph"
)

// riskRule is one entry in the ordered scoring table. Each rule that applies
// contributes exactly one risk point, one risk-factor string, and its
// standard recommendations.
type riskRule struct {
	applies func(p *Profile, kg *graph.Result) bool
	factor  func(p *Profile, kg *graph.Result) string
	recs    []string
}

// riskRules is evaluated in order; the emitted risk factors keep this order.
// New rules are appended, existing rules are never reordered.
var riskRules = []riskRule{
	{
		applies: func(p *Profile, _ *graph.Result) bool { return p.Age != nil && *p.Age < 18 },
		factor: func(_ *Profile, _ *graph.Result) string {
			return "Pediatric patient - specialized protocols required"
		},
		recs: []string{
			"Use pediatric dosing guidelines",
			"Consider parental consent requirements",
		},
	},
	{
		applies: func(p *Profile, _ *graph.Result) bool { return p.Age != nil && *p.Age >= 65 },
		factor: func(_ *Profile, _ *graph.Result) string {
			return "Geriatric patient - increased risk profile"
		},
		recs: []string{
			"Monitor kidney function",
			"Assess for polypharmacy interactions",
			"Consider fall risk and mobility issues",
		},
	},
	{
		applies: func(p *Profile, _ *graph.Result) bool { return len(p.Allergies) > 0 },
		factor: func(p *Profile, _ *graph.Result) string {
			return "Documented allergies: " + strings.Join(p.Allergies, ", ")
		},
		recs: []string{"Verify allergy list before administering medication"},
	},
	{
		applies: func(p *Profile, _ *graph.Result) bool { return len(p.History) > 0 },
		factor: func(p *Profile, _ *graph.Result) string {
			return "Medical history on record: " + strings.Join(p.History, ", ")
		},
		recs: []string{"Review medical history for protocol modifications"},
	},
	{
		applies: func(p *Profile, _ *graph.Result) bool { return len(p.Medications) > 0 },
		factor: func(p *Profile, _ *graph.Result) string {
			return "Active medications: " + strings.Join(p.Medications, ", ")
		},
		recs: []string{"Screen current medications for interactions"},
	},
	{
		applies: func(p *Profile, _ *graph.Result) bool { return p.pregnant() },
		factor: func(_ *Profile, _ *graph.Result) string {
			return "Pregnant patient - fetal safety considerations"
		},
		recs: []string{
			"Consider pregnancy category of all medications",
			"Assess teratogenic risk",
			"Consider fetal monitoring if applicable",
		},
	},
	{
		applies: func(_ *Profile, kg *graph.Result) bool {
			return kg != nil && len(kg.EmergencyIndicators) > 0
		},
		factor: func(_ *Profile, kg *graph.Result) string {
			names := make([]string, len(kg.EmergencyIndicators))
			for i, c := range kg.EmergencyIndicators {
				names[i] = c.Name
			}
			return "Critical indicators identified: " + strings.Join(names, ", ")
		},
		recs: []string{"Escalate to emergency protocols immediately"},
	},
}

// dosageRule fires independently of the others; adjustments accumulate.
type dosageRule func(p *Profile) ([]DosageAdjustment, []string)

var dosageRules = []dosageRule{
	func(p *Profile) ([]DosageAdjustment, []string) {
		if p.Age == nil || *p.Age >= 18 {
			return nil, nil
		}
		return []DosageAdjustment{{
			Type:        "pediatric_dosing",
			Description: "Adjust dosages based on weight and age",
		}}, nil
	},
	func(p *Profile) ([]DosageAdjustment, []string) {
		if p.Age == nil || *p.Age < 65 {
			return nil, nil
		}
		return []DosageAdjustment{{
			Type:        "renal_adjustment",
			Description: "Consider reduced dosing for renal clearance",
		}}, nil
	},
	conditionAdjustments,
	func(p *Profile) ([]DosageAdjustment, []string) {
		if !p.pregnant() {
			return nil, nil
		}
		return []DosageAdjustment{{
			Type:        "pregnancy_safety",
			Description: "Apply pregnancy category review to all prescribed drugs",
		}}, nil
	},
}

type conditionInteraction struct {
	name        string
	terms       []string
	adjustments []string
}

var conditionInteractions = []conditionInteraction{
	{
		name:        "diabetes",
		terms:       []string{"diabetes", "diabetic"},
		adjustments: []string{"insulin requirements", "glucose monitoring"},
	},
	{
		name:        "hypertension",
		terms:       []string{"hypertension", "high blood pressure"},
		adjustments: []string{"blood pressure monitoring", "ace inhibitor considerations"},
	},
	{
		name:        "kidney_disease",
		terms:       []string{"kidney", "renal"},
		adjustments: []string{"reduced dosing", "creatinine monitoring"},
	},
	{
		name:        "liver_disease",
		terms:       []string{"liver", "hepatic"},
		adjustments: []string{"hepatic dosing", "liver function monitoring"},
	},
}

// conditionAdjustments fires one condition_based adjustment per history entry
// that names a known condition category.
func conditionAdjustments(p *Profile) ([]DosageAdjustment, []string) {
	var adjs []DosageAdjustment
	var recs []string
	for _, entry := range p.History {
		for _, ci := range conditionInteractions {
			if !containsAnyTerm(entry, ci.terms) {
				continue
			}
			adjs = append(adjs, DosageAdjustment{
				Type:        "condition_based",
				Condition:   entry,
				Adjustments: ci.adjustments,
			})
			for _, a := range ci.adjustments {
				recs = append(recs, "Monitor for "+a)
			}
		}
	}
	return adjs, recs
}

// drugAllergyClass groups the drugs covered by one allergy label, so an
// allergy to any member flags the whole class.
type drugAllergyClass struct {
	name    string
	members []string
}

var drugAllergyClasses = []drugAllergyClass{
	{name: "penicillin", members: []string{"penicillin", "amoxicillin", "ampicillin", "benzylpenicillin"}},
	{name: "sulfa", members: []string{"sulfamethoxazole", "trimethoprim", "sulfasalazine", "sulfonamides"}},
	{name: "aspirin", members: []string{"aspirin", "acetylsalicylic acid", "nsaids", "ibuprofen"}},
	{name: "opioids", members: []string{"morphine", "fentanyl", "codeine", "oxycodone", "hydrocodone"}},
	{name: "contrast", members: []string{"iodinated contrast", "gadolinium", "contrast dye"}},
}

// interactionPattern lists agents known to interact with a medication. The
// entries name either specific drugs or drug categories.
type interactionPattern struct {
	drug      string
	interacts []string
}

var interactionPatterns = []interactionPattern{
	{drug: "warfarin", interacts: []string{"aspirin", "nsaids", "antibiotics"}},
	{drug: "digoxin", interacts: []string{"diuretics", "calcium channel blockers"}},
	{drug: "insulin", interacts: []string{"beta blockers", "thiazides"}},
	{drug: "ace inhibitors", interacts: []string{"potassium supplements", "nsaids"}},
	{drug: "beta blockers", interacts: []string{"insulin", "calcium channel blockers"}},
}

// pregnancyAvoid lists drugs with established teratogenic risk.
var pregnancyAvoid = []string{"warfarin", "ace inhibitors", "statins", "methotrexate", "isotretinoin"}

func containsAnyTerm(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
