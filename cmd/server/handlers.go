package main

import (
	"encoding/json"
	"net/http"

	"github.com/procheck/medintel"
	"github.com/procheck/medintel/clinical"
)

type handler struct {
	engine medintel.Engine
}

func newHandler(e medintel.Engine) *handler {
	return &handler{engine: e}
}

// POST /analyze
func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query          string            `json:"query"`
		PatientProfile *clinical.Profile `json:"patient_profile,omitempty"`
		TopDiagnoses   int               `json:"top_diagnoses,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	var opts []medintel.AnalyzeOption
	if req.PatientProfile != nil {
		opts = append(opts, medintel.WithProfile(req.PatientProfile))
	}
	if req.TopDiagnoses > 0 && req.TopDiagnoses <= 50 {
		opts = append(opts, medintel.WithTopDiagnoses(req.TopDiagnoses))
	}

	writeJSON(w, http.StatusOK, h.engine.Analyze(req.Query, opts...))
}

// POST /suggestions
// Lightweight variant of /analyze for interactive typeahead: intent,
// entities, and follow-up topics only.
func (h *handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	res := h.engine.Analyze(req.Query)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"intent":         res.Intent,
		"entities":       res.Entities,
		"suggestions":    res.Suggestions,
		"enhanced_query": res.EnhancedQuery,
	})
}

// GET /concepts
func (h *handler) handleListConcepts(w http.ResponseWriter, r *http.Request) {
	concepts := h.engine.Concepts()
	if typ := r.URL.Query().Get("type"); typ != "" {
		filtered := concepts[:0:0]
		for _, c := range concepts {
			if c.Type == typ {
				filtered = append(filtered, c)
			}
		}
		concepts = filtered
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"concepts": concepts,
		"count":    len(concepts),
	})
}

// GET /concepts/{id}
func (h *handler) handleGetConcept(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, ok := h.engine.Concept(id)
	if !ok {
		writeError(w, http.StatusNotFound, "concept not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"concept":       c,
		"relationships": h.engine.Store().Edges(id),
	})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
