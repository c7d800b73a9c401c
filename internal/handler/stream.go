package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/capitalize-ai/assistant-gateway/internal/assistant"
	"github.com/capitalize-ai/assistant-gateway/internal/model"
	"github.com/capitalize-ai/assistant-gateway/pkg/logger"
	"github.com/capitalize-ai/assistant-gateway/pkg/metrics"
)

// StreamHandler handles the SSE chat endpoint.
type StreamHandler struct {
	service ChatService
	logger  *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(svc ChatService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		service: svc,
		logger:  log,
	}
}

// Stream handles POST /api/chat/stream
//
// Each run status update is written as a `data: <json envelope>` SSE frame.
// Failures after the stream has started are emitted as a final
// `data: {error, message}` frame on the already-200 response.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	ctx := r.Context()
	envelopes, errc := h.service.SendMessageStream(ctx, req.UserID, req.Message)

	for {
		select {
		case env, open := <-envelopes:
			if !open {
				// Stream finished; surface a trailing error if one occurred.
				if err := <-errc; err != nil {
					h.logger.Error("stream failed", "user_id", req.UserID, "error", err)
					sendSSEData(w, flusher, model.ErrorResponse{
						Error:   string(assistant.KindOf(err)),
						Message: assistant.MessageOf(err),
					})
				}
				return
			}
			if err := sendSSEData(w, flusher, env); err != nil {
				return
			}

		case <-ctx.Done():
			h.logger.Info("SSE client disconnected", "user_id", req.UserID)
			return
		}
	}
}

func sendSSEData(w http.ResponseWriter, flusher http.Flusher, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
