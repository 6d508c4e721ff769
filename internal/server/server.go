// Package server exposes the dashboard core as a JSON read API for the web
// rendering layer. All analysis state is per session; the dataset itself is
// immutable and shared.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/kolli-project/kolli-dashboard/internal/ai"
	"github.com/kolli-project/kolli-dashboard/internal/config"
	"github.com/kolli-project/kolli-dashboard/internal/corrfilter"
	"github.com/kolli-project/kolli-dashboard/internal/dataset"
)

// Version is reported by /api/meta.
const Version = "1.0.0"

const sessionCookie = "kolli_session"

// Server holds the shared dataset and the per-session analysis state.
type Server struct {
	ds     *dataset.Dataset
	cfg    *config.Global
	client *ai.Client // nil when summarization is not configured
	runner *ai.TaskRunner
	defs   []corrfilter.Definition

	mu       sync.Mutex
	sessions map[string]*corrfilter.Store
}

// New builds a server over a loaded dataset. client may be nil; the AI
// endpoints then report that summarization is unavailable.
func New(ds *dataset.Dataset, cfg *config.Global, client *ai.Client, defs []corrfilter.Definition) *Server {
	return &Server{
		ds:       ds,
		cfg:      cfg,
		client:   client,
		runner:   ai.NewTaskRunner(),
		defs:     defs,
		sessions: make(map[string]*corrfilter.Store),
	}
}

// DefaultFilterDefs returns the correlation filters of the known survey
// views, restricted to variables present in the label export so an older
// export does not break construction.
func DefaultFilterDefs(ds *dataset.Dataset) []corrfilter.Definition {
	all := []corrfilter.Definition{
		{Group: "round1_student1", Var: "V203_01", Numeric: true, Min: 0, Max: 11},
		{Group: "round1_student1", Var: "V201_01"},
		{Group: "round1_student1", Var: "V201_02"},
		{Group: "round1_student2", Var: "V204_01"},
		{Group: "round1_student3", Var: "V209_01"},
		{Group: "round2_student3", Var: "R204_01"},
		{Group: "round2_desc_general", Var: "AA02_01", Numeric: true, Min: 0, Max: 11},
		{Group: "round2_desc_specific", Var: "AA02_01", Numeric: true, Min: 0, Max: 11},
	}
	var defs []corrfilter.Definition
	for _, d := range all {
		if ds.Labels.Has(d.Var) {
			defs = append(defs, d)
		}
	}
	return defs
}

// Router builds the chi router with logging, panic recovery and CORS for the
// external web UI.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleMeta)
		r.Get("/stats", s.handleStats)
		r.Get("/distribution", s.handleDistribution)
		r.Get("/histogram", s.handleHistogram)
		r.Get("/freetext", s.handleFreeText)
		r.Get("/filters/{group}/{var}", s.handleGetFilter)
		r.Put("/filters/{group}/{var}", s.handlePutFilter)
		r.Post("/filters/reset", s.handleResetFilters)
		r.Post("/summary", s.handleSummary)
	})
	return r
}

// session returns the correlation-filter store and session id of the calling
// browser session, creating the session cookie and store on first contact.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*corrfilter.Store, string, error) {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if store, ok := s.sessions[id]; ok {
			return store, id, nil
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	store, err := corrfilter.NewStore(s.defs, s.ds.Labels)
	if err != nil {
		return nil, "", err
	}
	s.sessions[id] = store
	return store, id, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
