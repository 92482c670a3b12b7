package handler

import "net/http"

// HandleHealth reports liveness.
//
// HTTP: GET /health → 200 "OK"
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
