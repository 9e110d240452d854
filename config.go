package medintel

import "github.com/procheck/medintel/graph"

// Config holds all configuration for the clinical intelligence engine.
type Config struct {
	// GraphPath points at a knowledge-graph definition file: .json, .xlsx,
	// or a sqlite database (.db/.sqlite/.sqlite3). If empty, the built-in
	// graph is used.
	GraphPath string `json:"graph_path" yaml:"graph_path"`

	// TopDiagnoses caps the differential diagnosis list per query.
	TopDiagnoses int `json:"top_diagnoses" yaml:"top_diagnoses"`

	// MinEdgeWeight drops relationships weaker than this from reasoning.
	MinEdgeWeight float64 `json:"min_edge_weight" yaml:"min_edge_weight"`

	// RelatedPerSeed caps related-condition discovery per matched concept.
	RelatedPerSeed int `json:"related_per_seed" yaml:"related_per_seed"`
}

// DefaultConfig returns a Config with sensible defaults over the built-in
// knowledge graph.
func DefaultConfig() Config {
	return Config{
		TopDiagnoses:   5,
		MinEdgeWeight:  0.5,
		RelatedPerSeed: 3,
	}
}

func (c Config) reasonerConfig() graph.Config {
	return graph.Config{
		TopDiagnoses:   c.TopDiagnoses,
		MinWeight:      c.MinEdgeWeight,
		RelatedPerSeed: c.RelatedPerSeed,
	}
}
