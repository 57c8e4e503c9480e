package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/echomind/echomind-backend/internal/middleware"
	"github.com/echomind/echomind-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type ChatHandler struct {
	svc *services.ChatService
}

func NewChatHandler(svc *services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type createChatRequest struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
	ThreadID string `json:"threadId"`
}

// Create accepts JSON or multipart (file field "image"), generates the AI
// response, and persists the turn for the authenticated user.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized: invalid or missing session")
		return
	}

	var message, imageURL, threadID string
	var image *services.ImagePayload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		message = r.FormValue("message")
		imageURL = r.FormValue("imageUrl")
		threadID = r.FormValue("threadId")

		if file, header, err := r.FormFile("image"); err == nil {
			data, readErr := io.ReadAll(file)
			file.Close()
			if readErr != nil {
				writeMessage(w, http.StatusBadRequest, "Failed to read image file")
				return
			}
			image = &services.ImagePayload{
				Data:     data,
				MIMEType: header.Header.Get("Content-Type"),
			}
		}
	} else {
		var req createChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		message, imageURL, threadID = req.Message, req.ImageURL, req.ThreadID
	}

	turn, err := h.svc.CreateTurn(r.Context(), user.ID, message, image, imageURL, threadID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyPrompt):
			writeMessage(w, http.StatusBadRequest, "Provide message text, an image file, or imageUrl")
		case errors.Is(err, services.ErrEmptyAIResponse):
			writeMessage(w, http.StatusBadGateway, "No response from AI provider")
		case errors.Is(err, services.ErrUpstreamAI):
			log.Error().Err(err).Msg("AI provider call failed")
			writeMessage(w, http.StatusBadGateway, "No response from AI provider")
		default:
			log.Error().Err(err).Msg("failed to create chat")
			writeMessage(w, http.StatusInternalServerError, "Failed to create chat")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Chat created",
		"data":    turn,
	})
}

// History returns the user's turns oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized: invalid or missing session")
		return
	}

	turns, err := h.svc.History(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load chat history")
		writeMessage(w, http.StatusInternalServerError, "Failed to get chat history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Chat history fetched successfully",
		"data":    turns,
	})
}

// DeleteAll removes every turn owned by the user.
func (h *ChatHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized: invalid or missing session")
		return
	}

	deleted, err := h.svc.DeleteAll(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete chats")
		writeMessage(w, http.StatusInternalServerError, "Failed to delete chats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All chats deleted",
		"deleted": deleted,
	})
}

// DeleteByID removes one turn. Turns owned by other users look exactly like
// missing ones.
func (h *ChatHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized: invalid or missing session")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteByID(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, services.ErrChatNotFound) {
			writeMessage(w, http.StatusNotFound, "Chat not found")
			return
		}
		log.Error().Err(err).Msg("failed to delete chat")
		writeMessage(w, http.StatusInternalServerError, "Failed to delete chat")
		return
	}

	writeMessage(w, http.StatusOK, "Chat deleted")
}
