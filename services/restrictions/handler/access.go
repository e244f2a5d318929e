package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/userstore"
)

// AccessHandler answers the two flag-query endpoints.
type AccessHandler struct {
	store  userstore.UserStore
	logger zerolog.Logger
}

// NewAccessHandler wires an AccessHandler to the user store.
func NewAccessHandler(store userstore.UserStore, logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{store: store, logger: logger.With().Str("component", "handler").Logger()}
}

type canMessageResponse struct {
	CanMessage bool `json:"can_message"`
}

type canPurchaseResponse struct {
	CanPurchase bool `json:"can_purchase"`
}

// CanMessage handles GET /canmessage?user_id=<id>.
func (h *AccessHandler) CanMessage(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.lookupUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, canMessageResponse{CanMessage: agg.AccessFlags.CanMessage})
}

// CanPurchase handles GET /canpurchase?user_id=<id>.
func (h *AccessHandler) CanPurchase(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.lookupUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, canPurchaseResponse{CanPurchase: agg.AccessFlags.CanPurchase})
}

func (h *AccessHandler) lookupUser(w http.ResponseWriter, r *http.Request) (*model.UserAggregate, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return nil, false
	}

	agg, err := h.store.Get(r.Context(), userID)
	if errors.Is(err, model.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to look up user")
		writeError(w, http.StatusInternalServerError, "failed to look up user")
		return nil, false
	}
	return agg, true
}
