// Package medintel answers clinical queries against a medical knowledge
// graph. A query flows through text analysis (intent, entities, patient
// context), graph reasoning (differential diagnoses, treatments, emergency
// indicators), and, when a patient profile is supplied, rule-based risk
// assessment. The whole pipeline is in-memory computation over an immutable
// graph, so an Engine is safe for unlimited concurrent use.
package medintel

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/procheck/medintel/clinical"
	"github.com/procheck/medintel/graph"
	"github.com/procheck/medintel/nlp"
	"github.com/procheck/medintel/store"
)

// Engine is the main entry point for the clinical intelligence core.
type Engine interface {
	// Analyze runs a query through the full pipeline. It never fails: a
	// query matching nothing in the graph yields a general-intent result
	// with empty lists.
	Analyze(query string, opts ...AnalyzeOption) *Result

	// Concepts returns every concept in the knowledge graph, ordered by id.
	Concepts() []store.Concept

	// Concept looks up one concept by id.
	Concept(id string) (store.Concept, bool)

	// Store returns the underlying concept store for diagnostic access.
	Store() *store.Store
}

// Result is the full outcome of analyzing one query.
type Result struct {
	QueryID        string                   `json:"query_id"`
	Query          string                   `json:"query"`
	Intent         string                   `json:"intent"`
	Entities       []nlp.Entity             `json:"entities"`
	MedicalContext nlp.Context              `json:"medical_context"`
	EnhancedQuery  string                   `json:"enhanced_query"`
	Suggestions    []string                 `json:"suggestions"`
	SafetyAlerts   []string                 `json:"safety_alerts"`
	ClinicalNotes  []string                 `json:"clinical_notes"`
	KnowledgeGraph *graph.Result            `json:"knowledge_graph"`
	RiskAssessment *clinical.RiskAssessment `json:"risk_assessment,omitempty"`
}

// AnalyzeOption configures a single analysis.
type AnalyzeOption func(*analyzeOptions)

type analyzeOptions struct {
	profile      *clinical.Profile
	topDiagnoses int
}

// WithProfile supplies patient data, enabling risk assessment for this
// query. A non-nil but empty profile still runs the assessment.
func WithProfile(p *clinical.Profile) AnalyzeOption {
	return func(o *analyzeOptions) { o.profile = p }
}

// WithTopDiagnoses overrides the differential diagnosis cap for this query.
func WithTopDiagnoses(n int) AnalyzeOption {
	return func(o *analyzeOptions) { o.topDiagnoses = n }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg      Config
	store    *store.Store
	analyzer *nlp.Analyzer
	reasoner *graph.Reasoner
	decision *clinical.Engine
}

// New creates an engine from configuration, loading the knowledge graph
// from cfg.GraphPath or falling back to the built-in graph.
func New(cfg Config) (Engine, error) {
	var (
		s   *store.Store
		err error
	)
	if cfg.GraphPath == "" {
		s, err = store.Builtin()
	} else {
		s, err = store.Load(cfg.GraphPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading knowledge graph: %w", err)
	}
	return NewWithStore(cfg, s), nil
}

// NewWithStore creates an engine over an already-built concept store. This
// is the injection point for alternative graphs and test fixtures.
func NewWithStore(cfg Config, s *store.Store) Engine {
	if cfg.TopDiagnoses == 0 {
		cfg.TopDiagnoses = DefaultConfig().TopDiagnoses
	}
	if cfg.MinEdgeWeight == 0 {
		cfg.MinEdgeWeight = DefaultConfig().MinEdgeWeight
	}
	return &engine{
		cfg:      cfg,
		store:    s,
		analyzer: nlp.New(s),
		reasoner: graph.New(s, cfg.reasonerConfig()),
		decision: clinical.New(s),
	}
}

func (e *engine) Analyze(query string, opts ...AnalyzeOption) *Result {
	options := &analyzeOptions{}
	for _, o := range opts {
		o(options)
	}

	analysis := e.analyzer.Analyze(query)

	seeds := make([]graph.Seed, 0, len(analysis.Entities))
	for _, ent := range analysis.Entities {
		if ent.ConceptID == "" {
			continue
		}
		seeds = append(seeds, graph.Seed{ConceptID: ent.ConceptID, Confidence: ent.Confidence})
	}

	reasoner := e.reasoner
	if options.topDiagnoses > 0 {
		cfg := e.cfg.reasonerConfig()
		cfg.TopDiagnoses = options.topDiagnoses
		reasoner = graph.New(e.store, cfg)
	}
	kg := reasoner.Reason(seeds)

	res := &Result{
		QueryID:        uuid.NewString(),
		Query:          query,
		Intent:         analysis.Intent,
		Entities:       analysis.Entities,
		MedicalContext: analysis.Context,
		EnhancedQuery:  e.analyzer.EnhanceQuery(query, analysis.Entities),
		Suggestions:    nlp.Suggestions(analysis.Intent),
		SafetyAlerts:   safetyAlerts(analysis),
		ClinicalNotes:  clinicalNotes(analysis.Context),
		KnowledgeGraph: kg,
	}
	if options.profile != nil {
		res.RiskAssessment = e.decision.Assess(kg, options.profile)
	}
	return res
}

func (e *engine) Concepts() []store.Concept {
	return e.store.Concepts()
}

func (e *engine) Concept(id string) (store.Concept, bool) {
	return e.store.Get(id)
}

func (e *engine) Store() *store.Store {
	return e.store
}

// safetyAlerts derives caller-facing warnings from the text analysis alone,
// before any graph reasoning.
func safetyAlerts(analysis nlp.Analysis) []string {
	alerts := []string{}
	if analysis.Intent == nlp.IntentEmergency {
		alerts = append(alerts, "Emergency protocol - ensure immediate medical attention")
	}
	if analysis.Context.Urgency == "high" {
		alerts = append(alerts, "High urgency case - prioritize immediate care")
	}
	for _, ent := range analysis.Entities {
		if ent.Type == store.TypeDrug {
			alerts = append(alerts, "Drug-related query - check for allergies and interactions")
			break
		}
	}
	return alerts
}

func clinicalNotes(ctx nlp.Context) []string {
	notes := []string{}
	if ctx.Age != nil {
		if *ctx.Age < 18 {
			notes = append(notes, "Pediatric patient - consider age-appropriate protocols")
		} else if *ctx.Age > 65 {
			notes = append(notes, "Geriatric patient - consider age-related considerations")
		}
	}
	switch ctx.Setting {
	case "hospital":
		notes = append(notes, "Hospital setting - full resources available")
	case "clinic":
		notes = append(notes, "Clinic setting - limited resources, consider referral")
	}
	return notes
}
