package httpsession

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/microblog/internal/model"
)

// countingResolver records how often Resolve is called.
type countingResolver struct {
	user  *model.User
	calls int
}

func (c *countingResolver) Resolve(_ context.Context, rawToken string) (*model.User, error) {
	c.calls++
	if rawToken == "" || c.user == nil {
		return nil, nil
	}
	return c.user, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(t *testing.T, handler http.Handler, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCurrentUser_MemoizedPerRequest(t *testing.T) {
	resolver := &countingResolver{user: &model.User{ID: "u1", Name: "Alice"}}

	var first, second *model.User
	handler := Middleware(resolver, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = CurrentUser(r.Context())
		second = CurrentUser(r.Context())
	}))

	newRequest(t, handler, &http.Cookie{Name: tokenCookie, Value: "raw-token"})

	require.NotNil(t, first)
	assert.Equal(t, "u1", first.ID)
	assert.Same(t, first, second, "repeated calls must return the cached result")
	assert.Equal(t, 1, resolver.calls, "resolution must happen exactly once per request")
}

func TestCurrentUser_LazyResolution(t *testing.T) {
	resolver := &countingResolver{user: &model.User{ID: "u1"}}

	handler := Middleware(resolver, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handler never asks for the user.
	}))

	newRequest(t, handler, &http.Cookie{Name: tokenCookie, Value: "raw-token"})

	assert.Equal(t, 0, resolver.calls, "no CurrentUser call means no store query")
}

func TestCurrentUser_AnonymousWithoutCookie(t *testing.T) {
	resolver := &countingResolver{user: &model.User{ID: "u1"}}

	var got *model.User
	signedIn := true
	handler := Middleware(resolver, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CurrentUser(r.Context())
		signedIn = IsSignedIn(r.Context())
	}))

	newRequest(t, handler)

	assert.Nil(t, got)
	assert.False(t, signedIn)
}

func TestCurrentUser_OutsideMiddleware(t *testing.T) {
	assert.Nil(t, CurrentUser(context.Background()))
	assert.False(t, IsSignedIn(context.Background()))
}

func TestRequireUser_UnauthenticatedGetStoresReturnTo(t *testing.T) {
	resolver := &countingResolver{}

	handler := Middleware(resolver, discardLogger())(RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for anonymous requests")
	})))

	rec := newRequest(t, handler)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var returnTo *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == returnToCookie {
			returnTo = c
		}
	}
	require.NotNil(t, returnTo, "an unauthenticated GET must record the target")
	assert.Equal(t, "/feed", returnTo.Value)
}

func TestRequireUser_UnauthenticatedPostStoresNothing(t *testing.T) {
	resolver := &countingResolver{}

	handler := Middleware(resolver, discardLogger())(RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest(http.MethodPost, "/posts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, returnToCookie, c.Name, "only GETs record a return target")
	}
}

func TestRequireUser_PassesSignedInRequests(t *testing.T) {
	resolver := &countingResolver{user: &model.User{ID: "u1"}}

	ran := false
	handler := Middleware(resolver, discardLogger())(RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})))

	rec := newRequest(t, handler, &http.Cookie{Name: tokenCookie, Value: "raw-token"})

	assert.True(t, ran)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConsumeReturnTo_SingleUse(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	req.AddCookie(&http.Cookie{Name: returnToCookie, Value: "/somewhere"})
	rec := httptest.NewRecorder()

	got := ConsumeReturnTo(rec, req, "/")
	assert.Equal(t, "/somewhere", got)

	// The cookie must be cleared so the note is consumed exactly once.
	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == returnToCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestConsumeReturnTo_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	rec := httptest.NewRecorder()

	assert.Equal(t, "/", ConsumeReturnTo(rec, req, "/"))
}

func TestSetAndClearToken(t *testing.T) {
	rec := httptest.NewRecorder()
	SetToken(rec, "raw-token")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, tokenCookie, c.Name)
	assert.Equal(t, "raw-token", c.Value)
	assert.True(t, c.HttpOnly, "the token must not be readable from scripts")
	assert.Greater(t, c.MaxAge, 0, "the token cookie must be durable")

	rec = httptest.NewRecorder()
	ClearToken(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
