// Package handler implements the HTTP surface: event ingestion and the
// two flag-query endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/observability"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/publisher"
)

// EventHandler accepts and validates incoming events, then enqueues them.
type EventHandler struct {
	publisher publisher.Publisher
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// NewEventHandler wires an EventHandler to its Publisher.
func NewEventHandler(p publisher.Publisher, logger zerolog.Logger) *EventHandler {
	return &EventHandler{publisher: p, logger: logger.With().Str("component", "handler").Logger()}
}

// SetMetrics attaches an optional metrics sink. Nil-safe if never called.
func (h *EventHandler) SetMetrics(m *observability.Metrics) {
	h.metrics = m
}

type eventRequest struct {
	Name            string                 `json:"name"`
	EventProperties map[string]interface{} `json:"event_properties"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// PostEvent handles POST /event. Success means the event was durably
// appended, not that it was processed — processing happens asynchronously
// on the consumer side.
func (h *EventHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	event := model.Event{Name: req.Name, EventProperties: req.EventProperties}

	if err := h.publisher.Publish(r.Context(), event); err != nil {
		if errors.Is(err, model.ErrBadEvent) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("event_name", req.Name).Msg("failed to publish event")
		writeError(w, http.StatusInternalServerError, "failed to enqueue event")
		return
	}

	if h.metrics != nil {
		h.metrics.TrackEventIngested(req.Name)
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "Event '" + req.Name + "' added to the stream."})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
