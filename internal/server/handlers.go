// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/common/validation"
	"routing-engine/internal/dispatch"
	"routing-engine/internal/models"
	"routing-engine/internal/routing/costmodel"
	"routing-engine/internal/routing/engine"
	"routing-engine/internal/sinks"
)

type handlers struct {
	engine    *engine.Engine
	stats     *sinks.StatsSink
	costModel *costmodel.Model
	counters  costmodel.Counters
	registry  *dispatch.Registry // nil when execution is not configured
	errors    *stderrors.ErrorHandler
	log       logger.Logger
}

// routeRequest is the inbound payload. CostPriority is a pointer so an absent
// field gets the 0.5 default instead of reading as an explicit 0. Execute asks
// for the request to also run at the venue the verdict selects.
type routeRequest struct {
	RequestID    string   `json:"requestId"`
	Content      string   `json:"content"`
	TaskType     string   `json:"taskType"`
	CostPriority *float64 `json:"costPriority"`
	Execute      bool     `json:"execute"`
}

// routeResponse is the routing record, optionally carrying the execution
// result when the caller asked for dispatch.
type routeResponse struct {
	models.RoutingRecord
	Execution *dispatch.Result `json:"execution,omitempty"`
}

func (h *handlers) handleRoute(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxContentBytes+4096)

	var payload routeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, r, stderrors.NewRequestInvalidError("malformed JSON body: "+err.Error()))
		return
	}

	costPriority := 0.5
	if payload.CostPriority != nil {
		costPriority = *payload.CostPriority
	}

	req := models.Request{
		RequestID:    payload.RequestID,
		Content:      payload.Content,
		TaskType:     payload.TaskType,
		CostPriority: costPriority,
	}
	if err := validation.ValidateRequest(req); err != nil {
		h.writeError(w, r, stderrors.NewRequestInvalidError(err.Error()))
		return
	}

	record, err := h.engine.Route(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := routeResponse{RoutingRecord: record}
	if payload.Execute && h.registry != nil {
		req.RequestID = record.RequestID
		result, err := h.registry.For(record.Verdict.Strategy).Dispatch(r.Context(), req)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp.Execution = &result
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.stats.Snapshot())
}

func (h *handlers) handleCosts(w http.ResponseWriter, r *http.Request) {
	estimate, err := h.costModel.Report(r.Context(), h.counters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, estimate)
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.errors.Handle(middleware.GetReqID(r.Context()), err)
	h.writeJSON(w, stderrors.HTTPStatus(stdErr.Code), map[string]interface{}{
		"error": stdErr,
	})
}
