package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kolli-project/kolli-dashboard/internal/corrfilter"
	"github.com/kolli-project/kolli-dashboard/internal/dataset"
	"github.com/kolli-project/kolli-dashboard/internal/filter"
	"github.com/kolli-project/kolli-dashboard/internal/report"
	"github.com/kolli-project/kolli-dashboard/internal/stats"
)

// surveyFormats maps the survey selector of the web UI to the questionnaire
// id patterns. The pre-surveys are handled separately because their ids carry
// no lecture segment.
var surveyFormats = map[string]string{
	"r1-1":  "R1-%s-%s-1",
	"r1-2":  "R1-%s-%s-2",
	"r1-3":  "R1-%s-%s-3",
	"r2":    "R2-%s-%s",
	"r3":    "R3-%s-%s",
	"kg-r3": "KG-R3-%s-%s",
}

const preSurvey = "pre"

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":      Version,
		"max_date":     s.ds.MaxDate,
		"teachers":     s.ds.Teachers,
		"lectures":     s.ds.Lectures,
		"ai_available": s.client != nil,
	})
}

// selection derives the filtered row subset for a request from its query
// parameters plus the session's correlation filters.
func (s *Server) selection(r *http.Request, store *corrfilter.Store) ([]dataset.Row, error) {
	q := r.URL.Query()

	survey := q.Get("survey")
	teachers := splitList(q.Get("teachers"))
	lectures := splitList(q.Get("lectures"))

	var questionnaires []string
	switch {
	case survey == preSurvey:
		questionnaires = filter.PreSurveyQuestionnaires(s.ds, teachers)
	case surveyFormats[survey] != "":
		questionnaires = filter.Questionnaires(s.ds, surveyFormats[survey], teachers, lectures)
	default:
		return nil, fmt.Errorf("unknown survey %q", survey)
	}

	start, err := parseDate(q.Get("from"))
	if err != nil {
		return nil, err
	}
	end, err := parseDate(q.Get("to"))
	if err != nil {
		return nil, err
	}
	start, end = filter.DateRange(start, end)

	crit := filter.Criteria{
		Questionnaires: questionnaires,
		Start:          start,
		End:            end,
	}
	if group := q.Get("group"); group != "" {
		crit.Constraints = store.Constraints(group)
	}
	return filter.Rows(s.ds, crit), nil
}

// questions validates the comma-separated question list against the label
// table. Unknown variables are a client error, not a silent zero column.
func (s *Server) questions(raw string) ([]string, error) {
	vars := splitList(raw)
	if len(vars) == 0 {
		return nil, fmt.Errorf("missing questions parameter")
	}
	for _, v := range vars {
		if !s.ds.Labels.Has(v) {
			return nil, fmt.Errorf("unknown question %q", v)
		}
	}
	return vars, nil
}

type subsetCounts struct {
	Responses int `json:"responses"`
	Teachers  int `json:"teachers"`
	Lectures  int `json:"lectures"`
	Occasions int `json:"occasions"`
}

func countsOf(rows []dataset.Row) subsetCounts {
	return subsetCounts{
		Responses: stats.Responses(rows),
		Teachers:  stats.Teachers(rows),
		Lectures:  stats.Lectures(rows),
		Occasions: stats.Occasions(rows),
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	vars, err := s.questions(r.URL.Query().Get("questions"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mode, err := report.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rows, err := s.selection(r, store)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := map[string]any{
		"no_data": len(rows) == 0,
		"mode":    mode,
		"counts":  countsOf(rows),
	}
	if len(rows) == 0 {
		resp["message"] = report.NoDataMessage
	} else {
		dists := stats.Aggregate(rows, s.ds.Labels, vars...)
		resp["rows"] = report.Rows(dists, mode)
	}
	writeJSON(w, http.StatusOK, resp)
}

// distributionDTO uses pointers for the statistics so a computed zero (a
// balanced mean, identical answers) still reaches the wire; only an
// undefined statistic (N=0, or N<2 for the SD) is omitted.
type distributionDTO struct {
	Var     string   `json:"var"`
	Label   string   `json:"label"`
	Counts  [5]int   `json:"counts"`
	Percent [5]int   `json:"percent"`
	N       int      `json:"n"`
	Mean    *float64 `json:"mean,omitempty"`
	Median  string   `json:"median,omitempty"`
	SD      *float64 `json:"sd,omitempty"`
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	vars, err := s.questions(r.URL.Query().Get("questions"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rows, err := s.selection(r, store)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	dtos := make([]distributionDTO, 0, len(vars))
	for _, d := range stats.Aggregate(rows, s.ds.Labels, vars...) {
		dto := distributionDTO{
			Var:     d.Var,
			Label:   d.Label,
			Counts:  d.Counts,
			Percent: d.Percent(),
			N:       d.N,
		}
		if d.HasMean {
			mean := d.Mean
			dto.Mean = &mean
		}
		if d.HasMedian {
			dto.Median = string(d.Median)
		}
		if d.HasSD {
			sd := d.SD
			dto.SD = &sd
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"no_data":       len(rows) == 0,
		"counts":        countsOf(rows),
		"distributions": dtos,
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	q := r.URL.Query()
	varCode := q.Get("question")
	if !s.ds.Labels.Has(varCode) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown question %q", varCode))
		return
	}
	min, max := 0, 11
	if v := q.Get("min"); v != "" {
		if min, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad min %q", v))
			return
		}
	}
	if v := q.Get("max"); v != "" {
		if max, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("bad max %q", v))
			return
		}
	}
	if max < min {
		writeError(w, http.StatusBadRequest, fmt.Errorf("max below min"))
		return
	}
	rows, err := s.selection(r, store)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h := stats.SliderHistogram(rows, s.ds.Labels, varCode, min, max)
	writeJSON(w, http.StatusOK, map[string]any{
		"no_data": h.N == 0,
		"var":     h.Var,
		"label":   h.Label,
		"min":     min,
		"max":     max,
		"n":       h.N,
		"buckets": h.Buckets,
		"shares":  h.Shares(),
	})
}

func (s *Server) handleFreeText(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	varCode := r.URL.Query().Get("question")
	if !s.ds.Labels.Has(varCode) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown question %q", varCode))
		return
	}
	rows, err := s.selection(r, store)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	answers := stats.FreeText(rows, varCode)
	writeJSON(w, http.StatusOK, map[string]any{
		"no_data": len(answers) == 0,
		"var":     varCode,
		"label":   s.ds.Labels.Lookup(varCode),
		"answers": answers,
	})
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	k := corrfilter.Key{Group: chi.URLParam(r, "group"), Var: chi.URLParam(r, "var")}
	sel, ok := store.Get(k)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no filter %s/%s", k.Group, k.Var))
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handlePutFilter(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	k := corrfilter.Key{Group: chi.URLParam(r, "group"), Var: chi.URLParam(r, "var")}
	var sel corrfilter.Selection
	if err := decodeJSON(r, &sel); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := store.Set(k, sel); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	store.ResetAll()
	writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", raw)
	}
	return t, nil
}
