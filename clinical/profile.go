package clinical

import "github.com/procheck/medintel/store"

// Profile carries the patient attributes that drive risk scoring,
// contraindication checks, and dosage adjustments. Every field is optional;
// an absent field simply contributes nothing.
type Profile struct {
	Age         *int     `json:"age,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Weight      *float64 `json:"weight,omitempty"` // kg
	Pregnancy   string   `json:"pregnancy_status,omitempty"`
	Allergies   []string `json:"allergies,omitempty"`
	Medications []string `json:"current_medications,omitempty"`
	History     []string `json:"medical_history,omitempty"`
	Setting     string   `json:"setting,omitempty"` // hospital, clinic, home, emergency
}

// normalized returns a matching-ready copy: list entries lowercased,
// trimmed, and deduplicated. A nil receiver yields an empty profile.
func (p *Profile) normalized() *Profile {
	if p == nil {
		return &Profile{}
	}
	return &Profile{
		Age:         p.Age,
		Gender:      store.Normalize(p.Gender),
		Weight:      p.Weight,
		Pregnancy:   store.Normalize(p.Pregnancy),
		Allergies:   normalizeList(p.Allergies),
		Medications: normalizeList(p.Medications),
		History:     normalizeList(p.History),
		Setting:     store.Normalize(p.Setting),
	}
}

// normalizeList runs each entry through store.Normalize so profile strings
// compare equal to graph concept names, dropping blanks and duplicates.
func normalizeList(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = store.Normalize(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// pregnant reports whether the status field denotes an active pregnancy.
// Expects a normalized profile.
func (p *Profile) pregnant() bool {
	switch p.Pregnancy {
	case "pregnant", "pregnancy", "expecting":
		return true
	}
	return false
}
