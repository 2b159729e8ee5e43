package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/microblog/internal/httpsession"
	"github.com/sakif/microblog/internal/service"
)

type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	current := httpsession.CurrentUser(r.Context())

	post, err := h.posts.Create(r.Context(), current.ID, input.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	current := httpsession.CurrentUser(r.Context())

	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), current.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleFeed serves the live-computed feed for the signed-in user.
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	current := httpsession.CurrentUser(r.Context())

	posts, err := h.posts.Feed(r.Context(), current.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}
