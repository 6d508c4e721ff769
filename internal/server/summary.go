package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kolli-project/kolli-dashboard/internal/ai"
	"github.com/kolli-project/kolli-dashboard/internal/report"
	"github.com/kolli-project/kolli-dashboard/internal/stats"
)

// summaryRequest selects the answers to summarize. The selection parameters
// mirror the query parameters of the read endpoints.
type summaryRequest struct {
	Question string `json:"question"`
	Kind     string `json:"kind"` // summary | topics | interpretation
	Survey   string `json:"survey"`
	Teachers string `json:"teachers"`
	Lectures string `json:"lectures"`
	From     string `json:"from"`
	To       string `json:"to"`
	Group    string `json:"group"`
}

// handleSummary streams an AI summary of a free-text question as SSE. The
// task name is session + question, so a repeated click on the same question
// cancels the generation it replaces while summaries for other questions
// keep running.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.client == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("summarization is not configured"))
		return
	}
	store, sessionID, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	var req summaryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.ds.Labels.Has(req.Question) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown question %q", req.Question))
		return
	}

	// Reuse the selection logic by projecting the body onto query params.
	q := r.URL.Query()
	q.Set("survey", req.Survey)
	q.Set("teachers", req.Teachers)
	q.Set("lectures", req.Lectures)
	q.Set("from", req.From)
	q.Set("to", req.To)
	q.Set("group", req.Group)
	r.URL.RawQuery = q.Encode()

	rows, err := s.selection(r, store)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	answers := stats.FreeText(rows, req.Question)
	if len(answers) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"no_data": true,
			"message": report.NoDataMessage,
		})
		return
	}

	label := s.ds.Labels.Lookup(req.Question)
	var prompt string
	switch req.Kind {
	case "", "summary":
		prompt = ai.SummaryPrompt(label, answers)
	case "topics":
		prompt = ai.TopicsPrompt(label, answers)
	case "interpretation":
		prompt = ai.InterpretationPrompt(label, answers)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown summary kind %q", req.Kind))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	taskName := sessionID + "/" + req.Question
	done := make(chan error, 1)
	s.runner.Start(r.Context(), taskName, func(ctx context.Context) {
		done <- s.client.GenerateStream(ctx, ai.GenerateRequest{
			Messages: ai.Conversation(prompt),
		}, func(delta string) {
			if delta == "" {
				return
			}
			writeSSE(w, map[string]string{"delta": delta})
			flusher.Flush()
		})
	})

	err = <-done
	switch {
	case errors.Is(err, context.Canceled):
		// Superseded by a newer request for the same slot or the client
		// went away; nothing left to say on this stream.
		return
	case err != nil:
		writeSSE(w, map[string]string{"error": err.Error()})
		flusher.Flush()
		return
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeSSE(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
}
