package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.FileStorage {
	t.Helper()
	s, err := storage.NewFileStorage(t.TempDir(), internal.NewNopLogger(), storage.WithSaveDelay(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, users storage.UserRepository, username, password string) *internal.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u, err := users.CreateUser(context.Background(), &internal.NewUser{
		Username:     username,
		FullName:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return u
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("", ""))
	assert.NotEqual(t, AuthHash(hash), AuthHash(""))
	assert.Equal(t, AuthHash(hash), AuthHash(hash))
}

func TestLocalAuthProvider(t *testing.T) {
	s := newStore(t)
	createUser(t, s.Users(), "penguin", "fish-please")
	p := NewLocalAuthProvider(s.Users(), internal.NewNopLogger())
	ctx := context.Background()

	u, err := p.Authenticate(ctx, "penguin", "fish-please")
	require.NoError(t, err)
	assert.Equal(t, "penguin", u.Username)

	_, err = p.Authenticate(ctx, "penguin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate(ctx, "nobody", "fish-please")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func sessionRouter(m *SessionManager, u *internal.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Middleware())
	r.POST("/login", func(c *gin.Context) {
		if err := m.Login(c, u); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = m.Logout(c)
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", RequireUser(), func(c *gin.Context) {
		c.String(http.StatusOK, MustUser(c).Username)
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestSessionLifecycle(t *testing.T) {
	s := newStore(t)
	u := createUser(t, s.Users(), "penguin", "fish-please")
	m := NewSessionManager(s.Sessions(), s.Users(), time.Hour, false, internal.NewNopLogger())
	r := sessionRouter(m, u)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me").Code)

	w := do(r, http.MethodPost, "/login")
	require.Equal(t, http.StatusNoContent, w.Code)
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)

	w = do(r, http.MethodGet, "/me", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "penguin", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", cookie).Code)

	do(r, http.MethodPost, "/logout", cookie)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", cookie).Code)
}

func TestSessionInvalidatedByPasswordChange(t *testing.T) {
	s := newStore(t)
	u := createUser(t, s.Users(), "penguin", "fish-please")
	m := NewSessionManager(s.Sessions(), s.Users(), time.Hour, false, internal.NewNopLogger())
	r := sessionRouter(m, u)

	cookie := sessionCookie(t, do(r, http.MethodPost, "/login"))
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", cookie).Code)

	hash, err := HashPassword("krill-please")
	require.NoError(t, err)
	_, err = s.Users().UpdateUser(context.Background(), u.ID, &internal.ChangeUser{PasswordHash: internal.Set(hash)})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", cookie).Code)
	_, err = s.Sessions().LoadSession(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestSessionExpiry(t *testing.T) {
	s := newStore(t)
	u := createUser(t, s.Users(), "penguin", "fish-please")
	m := NewSessionManager(s.Sessions(), s.Users(), time.Hour, false, internal.NewNopLogger())
	now := time.Now()
	m.now = func() time.Time { return now.Add(-2 * time.Hour) }
	r := sessionRouter(m, u)

	cookie := sessionCookie(t, do(r, http.MethodPost, "/login"))
	m.now = time.Now
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", cookie).Code)
}

func TestUpsertOIDCUser(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	users := s.Users()
	existing := createUser(t, users, "penguin", "fish-please")

	// matched by email, then linked
	u, err := UpsertOIDCUser(ctx, users, &Identity{Subject: "sub-1", Name: "Penguin", Email: "penguin@example.com", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, u.ID)
	require.NotNil(t, u.OIDCID)
	assert.Equal(t, "sub-1", *u.OIDCID)
	assert.True(t, u.IsAdmin)

	// matched by subject even after the email changes
	u, err = UpsertOIDCUser(ctx, users, &Identity{Subject: "sub-1", Name: "Penguin", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, u.ID)
	assert.False(t, u.IsAdmin)

	// unknown identity creates a password-less account
	u, err = UpsertOIDCUser(ctx, users, &Identity{Subject: "sub-2", Name: "Seal", Email: "seal@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, u.ID)
	assert.Equal(t, "Seal", u.Username)
	assert.Equal(t, "Seal", u.FullName)
	assert.Empty(t, u.PasswordHash)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                         "/",
		"/timeline/2024-05-01":     "/timeline/2024-05-01",
		"/consumables?q=tea":       "/consumables?q=tea",
		"//evil.example.com/":      "/",
		"https://evil.example.com": "/",
		`/\evil.example.com`:       "/",
		"relative":                 "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), "next=%q", in)
	}
}

func TestParseScopes(t *testing.T) {
	assert.Equal(t, []string{"openid", "email"}, ParseScopes("email"))
	assert.Equal(t, []string{"openid", "email", "profile"}, ParseScopes("openid email  profile"))
}
