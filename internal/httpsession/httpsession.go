// Package httpsession adapts the session service to the HTTP layer: the
// durable cookie holding the raw remember token, request-scoped resolution of
// the current user, and the post-sign-in redirect note.
package httpsession

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sakif/microblog/internal/model"
)

const (
	tokenCookie    = "remember_token"
	returnToCookie = "return_to"

	// The remember cookie is the durable credential: it survives browser
	// restarts and only dies when the server rotates the digest.
	tokenMaxAge = 20 * 365 * 24 * 60 * 60 // seconds

	returnToMaxAge = 10 * 60 // seconds
)

// Resolver maps a raw remember token to a user. Implemented by
// service.SessionService.
type Resolver interface {
	Resolve(ctx context.Context, rawToken string) (*model.User, error)
}

type contextKey string

const resolverKey contextKey = "sessionResolver"

// userResolver resolves at most once per request; repeated CurrentUser calls
// within the same request reuse the first result.
type userResolver struct {
	once sync.Once
	fn   func() *model.User
	user *model.User
}

func (r *userResolver) current() *model.User {
	r.once.Do(func() { r.user = r.fn() })
	return r.user
}

// Middleware plants a lazy session resolver in every request context.
// Resolution only happens if a handler actually asks for the current user.
func Middleware(sessions Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolver := &userResolver{fn: func() *model.User {
				user, err := sessions.Resolve(r.Context(), Token(r))
				if err != nil {
					// A store failure degrades to anonymous rather than
					// failing the whole request.
					logger.Error("resolving session",
						slog.String("error", err.Error()),
					)
					return nil
				}
				return user
			}}

			ctx := context.WithValue(r.Context(), resolverKey, resolver)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the signed-in user for this request, or nil. The first
// call resolves the remember cookie; later calls in the same request return
// the cached result without touching the store again.
func CurrentUser(ctx context.Context) *model.User {
	resolver, ok := ctx.Value(resolverKey).(*userResolver)
	if !ok {
		return nil
	}
	return resolver.current()
}

func IsSignedIn(ctx context.Context) bool {
	return CurrentUser(ctx) != nil
}

// RequireUser rejects anonymous requests. Unauthenticated GETs record the
// requested URL first, so the sign-in flow can send the user back.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsSignedIn(r.Context()) {
				if r.Method == http.MethodGet {
					storeReturnTo(w, r.URL.RequestURI())
				}
				http.Error(w, `{"error":"unauthorized","message":"sign in required"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Token reads the raw remember token from the request, or "" if absent.
func Token(r *http.Request) string {
	cookie, err := r.Cookie(tokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetToken hands the raw token to the client as a long-lived cookie.
func SetToken(w http.ResponseWriter, rawToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    rawToken,
		Path:     "/",
		MaxAge:   tokenMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearToken discards the client-side token. Callers rotate the server-side
// digest first; clearing the cookie alone would leave a stolen copy valid.
func ClearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func storeReturnTo(w http.ResponseWriter, target string) {
	http.SetCookie(w, &http.Cookie{
		Name:     returnToCookie,
		Value:    target,
		Path:     "/",
		MaxAge:   returnToMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeReturnTo returns the stored redirect target, clearing it so it is
// used at most once. Falls back to def when nothing was stored.
func ConsumeReturnTo(w http.ResponseWriter, r *http.Request, def string) string {
	cookie, err := r.Cookie(returnToCookie)
	if err != nil || cookie.Value == "" {
		return def
	}

	http.SetCookie(w, &http.Cookie{
		Name:   returnToCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return cookie.Value
}
