package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/microblog/internal/httpsession"
	"github.com/sakif/microblog/internal/service"
)

type SocialHandler struct {
	social *service.SocialService
	logger *slog.Logger
}

func NewSocialHandler(social *service.SocialService, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{social: social, logger: logger}
}

func (h *SocialHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	current := httpsession.CurrentUser(r.Context())
	targetID := chi.URLParam(r, "id")

	if err := h.social.Follow(r.Context(), current.ID, targetID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SocialHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	current := httpsession.CurrentUser(r.Context())
	targetID := chi.URLParam(r, "id")

	if err := h.social.Unfollow(r.Context(), current.ID, targetID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SocialHandler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := h.social.Following(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *SocialHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := h.social.Followers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
