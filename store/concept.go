package store

// Concept type constants.
const (
	TypeSymptom   = "symptom"
	TypeCondition = "condition"
	TypeProcedure = "procedure"
	TypeDrug      = "drug"
)

// Severity constants, ordered by rank.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Relationship type constants.
const (
	RelSymptomOf           = "symptom_of"           // symptom -> condition
	RelTreatedBy           = "treated_by"           // condition -> procedure/drug
	RelRelatedTo           = "related_to"           // condition <-> condition
	RelInteractsWith       = "interacts_with"       // drug <-> drug
	RelContraindicatedWith = "contraindicated_with" // drug/procedure -> condition
)

// Evidence level constants.
const (
	EvidenceHigh   = "high"
	EvidenceMedium = "medium"
	EvidenceLow    = "low"
)

// Concept is a node in the medical knowledge graph. Concepts are immutable
// once the store is built.
type Concept struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Category    string   `json:"category,omitempty"`
	Severity    string   `json:"severity,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Relationship is a directed, typed, weighted edge between two concepts.
type Relationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Weight      float64 `json:"weight"`
	Evidence    string  `json:"evidence,omitempty"`
	Description string  `json:"description,omitempty"`
}

// severityRanks orders severities for ranking and tie-breaking.
var severityRanks = map[string]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// SeverityRank returns a numeric rank for a severity label (critical=4 .. low=1).
// Unknown or empty severities rank 0.
func SeverityRank(severity string) int {
	return severityRanks[severity]
}
