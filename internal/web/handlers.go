package web

import (
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ayurdiag/internal/diagnosis"
	"ayurdiag/internal/display"
)

type options struct {
	// UseRAG defaults to true when omitted.
	UseRAG      *bool   `json:"use_rag,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

func (o options) engine() diagnosis.Options {
	use := true
	if o.UseRAG != nil {
		use = *o.UseRAG
	}
	return diagnosis.Options{UseRAG: use, Temperature: o.Temperature}
}

type diagnoseRequest struct {
	Symptoms string `json:"symptoms"`
	options
}

type diagnoseResponse struct {
	Diagnosis  *diagnosis.Diagnosis `json:"diagnosis"`
	Validation diagnosis.Validation `json:"validation"`
}

type batchRequest struct {
	Symptoms []string `json:"symptoms"`
	options
}

type batchResponse struct {
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Results   []diagnosis.Result `json:"results"`
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	options
}

type chatResponse struct {
	SessionID     string `json:"session_id"`
	Reply         string `json:"reply"`
	HistoryLength int    `json:"history_length"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := display.Page(w, "Ayurvedic Diagnostic Assistant", widget); err != nil {
		s.logger.Error("render index", zap.Error(err))
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.SystemInfo(r.Context()))
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req diagnoseRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, err := s.engine.Analyze(r.Context(), req.Symptoms, req.engine())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, diagnoseResponse{Diagnosis: d, Validation: diagnosis.Validate(d)})
}

// handleDiagnoseHTML answers with a report fragment; failures render as an
// error panel so the widget can show them inline.
func (s *Server) handleDiagnoseHTML(w http.ResponseWriter, r *http.Request) {
	var req diagnoseRequest
	if !s.decode(w, r, &req) {
		return
	}
	d, err := s.engine.Analyze(r.Context(), req.Symptoms, req.engine())
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		s.logger.Warn("diagnosis failed", zap.Int("status", status), zap.Error(err))
	}
	body, rerr := display.Result(diagnosis.NewResult(req.Symptoms, d, err))
	if rerr != nil {
		s.writeError(w, http.StatusInternalServerError, rerr)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// handleBatch returns JSON, or an HTML fragment with ?format=html.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Symptoms) == 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("symptoms list is empty"))
		return
	}
	if len(req.Symptoms) > maxBatch {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("batch of %d exceeds the limit of %d", len(req.Symptoms), maxBatch))
		return
	}
	results := s.engine.AnalyzeBatch(r.Context(), req.Symptoms, req.engine())
	if r.URL.Query().Get("format") == "html" {
		body, err := display.Batch(results)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
		return
	}
	resp := batchResponse{Total: len(results), Results: results}
	for _, res := range results {
		if res.OK() {
			resp.Succeeded++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, diagnosis.ErrEmptyMessage)
		return
	}
	conv := s.sessions.Get(req.SessionID)
	reply, err := s.engine.Chat(r.Context(), conv, req.Message, req.engine())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{SessionID: conv.ID, Reply: reply, HistoryLength: conv.Len()})
}

func (s *Server) handleChatDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.Delete(id) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("chat session %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
