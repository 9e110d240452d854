package nlp

import (
	"strings"

	"github.com/procheck/medintel/store"
)

// emergencyLexicon is the fixed set of critical phrases that force the
// emergency intent regardless of anything else in the query.
var emergencyLexicon = []string{
	"cardiac arrest",
	"respiratory arrest",
	"can't breathe",
	"cannot breathe",
	"not breathing",
	"unconscious",
	"unresponsive",
	"anaphylaxis",
	"emergency",
	"life-threatening",
	"911",
	"ambulance",
	"stat",
	"trauma",
}

// procedureCues are explicit phrasing cues that the caller wants a how-to
// rather than a diagnostic work-up.
var procedureCues = []string{
	"how to",
	"steps to",
	"procedure for",
	"treatment for",
	"management of",
}

// drugCues are explicit medication-question cues.
var drugCues = []string{
	"dose",
	"dosage",
	"dosing",
	"medication",
	"prescription",
}

// intentRule pairs an intent with its trigger predicate. Rules are evaluated
// in order and the first match wins, so the table encodes the tier priority
// directly; new tiers slot in without touching existing predicates.
type intentRule struct {
	intent  string
	matches func(lower string, entities []Entity) bool
}

var intentRules = []intentRule{
	{IntentEmergency, func(lower string, _ []Entity) bool {
		return containsAnyWord(lower, emergencyLexicon)
	}},
	{IntentSymptomBased, func(lower string, entities []Entity) bool {
		return hasEntityType(entities, store.TypeSymptom) &&
			!hasProcedureCue(lower, entities) &&
			!hasDrugCue(lower, entities)
	}},
	{IntentProcedureBased, func(lower string, entities []Entity) bool {
		return hasProcedureCue(lower, entities)
	}},
	{IntentDrugBased, func(lower string, entities []Entity) bool {
		return hasDrugCue(lower, entities)
	}},
}

// classifyIntent walks the rule table; IntentGeneral is the fallback when no
// rule matches.
func classifyIntent(query string, entities []Entity) string {
	lower := strings.ToLower(query)
	for _, rule := range intentRules {
		if rule.matches(lower, entities) {
			return rule.intent
		}
	}
	return IntentGeneral
}

func hasEntityType(entities []Entity, typ string) bool {
	for _, e := range entities {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func hasProcedureCue(lower string, entities []Entity) bool {
	return hasEntityType(entities, store.TypeProcedure) || containsAnyWord(lower, procedureCues)
}

func hasDrugCue(lower string, entities []Entity) bool {
	return hasEntityType(entities, store.TypeDrug) || containsAnyWord(lower, drugCues)
}
