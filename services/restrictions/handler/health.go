package handler

import "net/http"

// Healthz handles GET /healthz with a static liveness response.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
