package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/microblog/internal/httpsession"
	"github.com/sakif/microblog/internal/service"
)

type AuthHandler struct {
	users    *service.UserService
	sessions *service.SessionService
	logger   *slog.Logger
}

func NewAuthHandler(users *service.UserService, sessions *service.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// HandleRegister creates an account and signs the new user in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Register(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	rawToken, err := h.sessions.SignIn(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpsession.SetToken(w, rawToken)

	writeJSON(w, http.StatusCreated, user)
}

// HandleSignIn authenticates and issues a fresh remember token.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(r.Context(), input.Email, input.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	rawToken, err := h.sessions.SignIn(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpsession.SetToken(w, rawToken)

	writeJSON(w, http.StatusOK, struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Redirect string `json:"redirect"`
	}{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Redirect: httpsession.ConsumeReturnTo(w, r, "/"),
	})
}

// HandleSignOut rotates the server-side digest first, then discards the
// cookie. Order matters: rotating invalidates any stolen copy of the token.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if user := httpsession.CurrentUser(r.Context()); user != nil {
		if err := h.sessions.SignOut(r.Context(), user.ID); err != nil {
			writeError(w, err)
			return
		}
	}

	httpsession.ClearToken(w)

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in user, resolved at most once per request.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := httpsession.CurrentUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "not signed in",
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
