package middlewares

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the failure envelope. Middlewares cannot depend on the
// handlers package, so the shape is repeated here.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
