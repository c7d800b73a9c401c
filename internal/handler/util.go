// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/capitalize-ai/assistant-gateway/internal/assistant"
	"github.com/capitalize-ai/assistant-gateway/internal/model"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

// writeClassifiedError maps a classified error onto the HTTP surface.
func writeClassifiedError(w http.ResponseWriter, err error) {
	kind := assistant.KindOf(err)

	resp := model.ErrorResponse{
		Error:   string(kind),
		Message: assistant.MessageOf(err),
	}

	var ae *assistant.Error
	if errors.As(err, &ae) {
		resp.DocsURL = ae.DocsURL
	}

	writeJSON(w, statusForKind(kind), resp)
}

func statusForKind(kind assistant.Kind) int {
	switch kind {
	case assistant.KindRateLimited, assistant.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case assistant.KindNotFound:
		return http.StatusNotFound
	case assistant.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
