package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/reglet-dev/reglet-forms/component"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("writeJSON encode error", "error", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes at most limit bytes of the request body into v.
func decodeJSON(r *http.Request, limit int64, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(newLimitedBody(r.Body, limit)).Decode(v)
}

func renderContext(item string) component.RenderContext {
	return component.RenderContext{ItemID: item}
}
