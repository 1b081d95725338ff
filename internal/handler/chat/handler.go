package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ranjankr/ranjanchat/backend/internal/middleware"
	chatModel "github.com/ranjankr/ranjanchat/backend/internal/model/chat"
	"github.com/ranjankr/ranjanchat/backend/internal/repository"
	"github.com/ranjankr/ranjanchat/backend/pkg/utils"
)

// Handler serves the authenticated chat CRUD surface.
type Handler struct {
	repo *repository.ChatRepository
}

// New creates the chat handler.
func New(repo *repository.ChatRepository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the chat routes; callers must wrap them in the auth
// middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chats", h.handleList)
	r.Get("/chats/{id}", h.handleGet)
	r.Post("/chats", h.handleCreate)
	r.Put("/chats/{id}", h.handleUpdate)
	r.Delete("/chats/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	chats, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[chats] error listing chats: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chats)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	c, ok, err := h.repo.GetByID(r.Context(), userID, id)
	if err != nil {
		log.Printf("[chats] error getting chat: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Chat not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	var payload struct {
		Messages []chatModel.Message `json:"messages"`
		Title    string              `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.repo.Create(r.Context(), userID, payload.Messages, payload.Title)
	if err != nil {
		log.Printf("[chats] error creating chat: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	var payload struct {
		Messages []chatModel.Message `json:"messages"`
		Title    string              `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, ok, err := h.repo.Update(r.Context(), userID, id, payload.Messages, payload.Title)
	if err != nil {
		log.Printf("[chats] error updating chat: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Chat not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	id := chi.URLParam(r, "id")

	ok, err := h.repo.Delete(r.Context(), userID, id)
	if err != nil {
		log.Printf("[chats] error deleting chat: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "Chat not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted successfully"})
}
