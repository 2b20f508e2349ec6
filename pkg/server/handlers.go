package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"sentinel-hq/sentinel/pkg/engine"
	"sentinel-hq/sentinel/pkg/routing"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type idsRequest struct {
	IDs []string `json:"ids"`
}

type askRequest struct {
	Query         string             `json:"query"`
	IntentType    routing.IntentType `json:"intentType"`
	Context       map[string]any     `json:"context,omitempty"`
	MaxTokens     int                `json:"maxTokens,omitempty"`
	Temperature   *float64           `json:"temperature,omitempty"`
	FamilyMembers int                `json:"familyMembers,omitempty"`
	UserID        string             `json:"userId,omitempty"`
}

type askResponse struct {
	Answer     string            `json:"answer"`
	Confidence float64           `json:"confidence"`
	Cost       float64           `json:"cost"`
	TokensUsed int               `json:"tokensUsed"`
	Sources    []string          `json:"sources,omitempty"`
	Selection  routing.Selection `json:"selection"`
	Rerouted   bool              `json:"rerouted"`
	Degraded   bool              `json:"degraded"`
}

type providerHealthView struct {
	Healthy             bool      `json:"healthy"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	TotalRequests       int64     `json:"totalRequests"`
	FailedRequests      int64     `json:"failedRequests"`
	LastError           string    `json:"lastError,omitempty"`
	LastCheck           time.Time `json:"lastCheck"`
}

func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"insights": s.engine.GetCurrentInsights()})
}

func (s *Server) handleMarkViewed(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": s.engine.MarkInsightsViewed(req.IDs...)})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"dismissed": s.engine.DismissInsights(req.IDs...)})
}

func (s *Server) handleGetContext(w http.ResponseWriter, r *http.Request) {
	c := s.engine.Context()
	if c == nil {
		writeError(w, http.StatusNotFound, "not_found", engine.ErrNoContext.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleInitializeContext(w http.ResponseWriter, r *http.Request) {
	var c engine.AIContext
	if !decodeBody(w, r, &c) {
		return
	}
	s.engine.InitializeContext(c)
	writeJSON(w, http.StatusCreated, map[string]int{"queued": s.engine.Scheduler().Len()})
}

func (s *Server) handleUpdateContext(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if !decodeBody(w, r, &partial) {
		return
	}
	if err := s.engine.UpdateContext(partial); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Context())
}

func (s *Server) handleTriggerAnalysis(w http.ResponseWriter, r *http.Request) {
	typ := engine.TaskType(r.PathValue("type"))
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown analysis type: "+string(typ))
		return
	}
	task := s.engine.TriggerBackgroundAnalysis(typ)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":       task.ID,
		"type":     task.Type,
		"priority": task.Priority,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	res := s.engine.Ask(r.Context(), routing.Request{
		Query:         req.Query,
		IntentType:    req.IntentType,
		Context:       req.Context,
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		FamilyMembers: req.FamilyMembers,
		UserID:        req.UserID,
	})

	writeJSON(w, http.StatusOK, askResponse{
		Answer:     res.Response.Answer,
		Confidence: res.Response.Confidence,
		Cost:       res.Response.Cost,
		TokensUsed: res.Response.TokensUsed,
		Sources:    res.Response.Sources,
		Selection:  res.Selection,
		Rerouted:   res.Rerouted,
		Degraded:   res.Soft(),
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	m, err := s.engine.GetUsageMetrics(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to read usage metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "usage metrics unavailable")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":    "ok",
		"engine":    s.engine.Running(),
		"timestamp": time.Now().Unix(),
	}

	if s.health != nil {
		views := make(map[string]providerHealthView)
		for name, h := range s.health.Health() {
			v := providerHealthView{
				Healthy:             h.IsHealthy,
				ConsecutiveFailures: h.ConsecutiveFailures,
				TotalRequests:       h.TotalRequests,
				FailedRequests:      h.FailedRequests,
				LastCheck:           h.LastCheck,
			}
			if h.LastError != nil {
				v.LastError = h.LastError.Error()
			}
			if !h.IsHealthy {
				resp["status"] = "degraded"
			}
			views[name] = v
		}
		resp["providers"] = views
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body: " + err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"type": typ, "message": message},
	})
}
