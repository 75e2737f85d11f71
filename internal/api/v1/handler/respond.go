package handler

import (
	"encoding/json"
	"net/http"
)

// errorBody is the JSON shape of every failure response.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeJSON encodes v as the response body. If encoding fails after the
// header is out, a minimal hand-built JSON error is written so the client
// never receives an HTML error page.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
	}
}

// writeError writes the JSON error taxonomy. detail is only included when
// debug is set (non-production environments).
func writeError(w http.ResponseWriter, status int, msg, detail string, debug bool) {
	body := errorBody{Error: msg}
	if debug {
		body.Detail = detail
	}
	writeJSON(w, status, body)
}
