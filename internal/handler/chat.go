package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/assistant-gateway/internal/middleware"
	"github.com/capitalize-ai/assistant-gateway/internal/model"
	"github.com/capitalize-ai/assistant-gateway/pkg/logger"
)

// ChatService drives assistant runs on behalf of the HTTP surface.
type ChatService interface {
	SendMessage(ctx context.Context, userID, text string) (*model.ChatResponse, error)
	SendMessageStream(ctx context.Context, userID, text string) (<-chan model.ChatResponse, <-chan error)
	History(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error)
	Message(ctx context.Context, userID, messageID string) (*model.HistoryEntry, error)
	DeleteThread(ctx context.Context, userID string) error
}

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	service ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.SendMessage(r.Context(), req.UserID, req.Message)
	if err != nil {
		h.logger.Error("failed to send message", "user_id", req.UserID, "error", err)
		writeClassifiedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /api/chat/history/{user_id}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 1000 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}

	history, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to get chat history", "user_id", userID, "error", err)
		writeClassifiedError(w, err)
		return
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, history)
}

// Message handles GET /api/chat/message/{user_id}/{message_id}
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	messageID := chi.URLParam(r, "message_id")

	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := middleware.ValidateMessageID(messageID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	entry, err := h.service.Message(r.Context(), userID, messageID)
	if err != nil {
		h.logger.Error("failed to get message",
			"user_id", userID, "message_id", messageID, "error", err)
		writeClassifiedError(w, err)
		return
	}

	// Absent message is reported as a JSON null body, not a 404.
	writeJSON(w, http.StatusOK, entry)
}

// DeleteThread handles DELETE /api/thread/{user_id}
func (h *ChatHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	if err := h.service.DeleteThread(r.Context(), userID); err != nil {
		h.logger.Error("failed to delete thread", "user_id", userID, "error", err)
		writeClassifiedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DeleteThreadResponse{
		Status:  "success",
		Message: fmt.Sprintf("Thread deleted for user %s", userID),
	})
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (model.ChatRequest, bool) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return req, false
	}

	if err := middleware.ValidateUserID(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return req, false
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return req, false
	}

	return req, true
}
