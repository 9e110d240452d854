package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var agePattern = regexp.MustCompile(`\b(\d{1,3})[\s-]*(?:years?[\s-]*old|y/?o\b)`)

var (
	maleWords   = []string{"male", "man", "boy"}
	femaleWords = []string{"female", "woman", "girl"}

	highUrgencyWords = []string{"emergency", "urgent", "critical", "immediate", "stat"}
	lowUrgencyWords  = []string{"mild", "routine", "non-urgent"}

	hospitalWords = []string{"hospital", "emergency room", "er", "icu", "ward"}
	clinicWords   = []string{"clinic", "outpatient", "office"}
	homeWords     = []string{"at home", "home care"}
)

// contextRule extracts one attribute from the query, writing into ctx only
// on a match. Rules never fail; an attribute with no matching pattern is
// simply left absent.
type contextRule func(lower string, ctx *Context)

var contextRules = []contextRule{
	extractAge,
	extractGender,
	extractUrgency,
	extractSetting,
}

// extractContext applies every context rule to the lowercased query.
func extractContext(query string) Context {
	lower := strings.ToLower(query)
	var ctx Context
	for _, rule := range contextRules {
		rule(lower, &ctx)
	}
	return ctx
}

func extractAge(lower string, ctx *Context) {
	m := agePattern.FindStringSubmatch(lower)
	if m == nil {
		return
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return
	}
	ctx.Age = &age
}

func extractGender(lower string, ctx *Context) {
	// Female first: "female" contains "male" but word boundaries keep the
	// checks independent; the order just makes the preference explicit.
	switch {
	case containsAnyWord(lower, femaleWords):
		ctx.Gender = "female"
	case containsAnyWord(lower, maleWords):
		ctx.Gender = "male"
	}
}

func extractUrgency(lower string, ctx *Context) {
	switch {
	case containsAnyWord(lower, highUrgencyWords):
		ctx.Urgency = "high"
	case containsAnyWord(lower, lowUrgencyWords):
		ctx.Urgency = "low"
	}
}

func extractSetting(lower string, ctx *Context) {
	switch {
	case containsAnyWord(lower, hospitalWords):
		ctx.Setting = "hospital"
	case containsAnyWord(lower, clinicWords):
		ctx.Setting = "clinic"
	case containsAnyWord(lower, homeWords):
		ctx.Setting = "home"
	}
}
