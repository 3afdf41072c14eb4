package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/repository"
)

type ChatHandler struct {
	chats repository.ChatRepository
}

func NewChatHandler(chats repository.ChatRepository) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// POST /api/v1/conversations
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, "invalid JSON body")
		return
	}

	conv := &domain.Conversation{
		UserID:  userIDFromContext(r.Context()),
		Subject: req.Subject,
		Status:  domain.ConversationOpen,
	}
	if err := h.chats.CreateConversation(r.Context(), conv); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, conv)
}

// GET /api/v1/conversations
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.chats.ListConversations(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	respondJSON(w, http.StatusOK, convs)
}

// POST /api/v1/conversations/{conversation_id}/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.ownedConversation(w, r)
	if !ok {
		return
	}

	var req domain.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, "invalid JSON body")
		return
	}
	if req.Body == "" {
		respondFieldErrors(w, "message body is required", map[string]string{"body": "required"})
		return
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		Sender:         userIDFromContext(r.Context()),
		Body:           req.Body,
	}
	if err := h.chats.AppendMessage(r.Context(), msg); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// GET /api/v1/conversations/{conversation_id}/messages?after=<id>
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.ownedConversation(w, r)
	if !ok {
		return
	}

	msgs, err := h.chats.ListMessages(r.Context(), conv.ID, r.URL.Query().Get("after"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

// PUT /api/v1/conversations/{conversation_id}/status
func (h *ChatHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.ownedConversation(w, r)
	if !ok {
		return
	}

	var req domain.UpdateConversationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, "invalid JSON body")
		return
	}
	if req.Status != domain.ConversationOpen && req.Status != domain.ConversationClosed {
		respondError(w, http.StatusBadRequest, domain.CodeInvalidInput, "status must be open or closed")
		return
	}

	updated, err := h.chats.UpdateConversationStatus(r.Context(), conv.ID, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ChatHandler) ownedConversation(w http.ResponseWriter, r *http.Request) (*domain.Conversation, bool) {
	conv, err := h.chats.GetConversation(r.Context(), chi.URLParam(r, "conversation_id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, http.StatusNotFound, domain.CodeNotFound, "conversation not found")
		return nil, false
	}
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	if conv.UserID != userIDFromContext(r.Context()) {
		respondError(w, http.StatusNotFound, domain.CodeNotFound, "conversation not found")
		return nil, false
	}
	return conv, true
}
