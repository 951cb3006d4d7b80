package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErrorCode includes the upstream machine code so dashboard clients can
// localize the message.
func writeErrorCode(w http.ResponseWriter, status int, msg, code string) {
	if code == "" {
		writeError(w, status, msg)
		return
	}
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}
