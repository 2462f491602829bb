package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/storage"
	"github.com/gin-gonic/gin"
)

const (
	CookieName = "penguin_nurse_session"

	expiredSessionInterval = 60 * time.Second
)

// SessionManager keeps server-side sessions keyed by a cookie. Sessions
// expire after ttl without a request.
type SessionManager struct {
	store  storage.SessionStore
	users  storage.UserRepository
	ttl    time.Duration
	secure bool
	logger internal.Logger
	now    func() time.Time
}

func NewSessionManager(store storage.SessionStore, users storage.UserRepository, ttl time.Duration, secure bool, logger internal.Logger) *SessionManager {
	return &SessionManager{
		store:  store,
		users:  users,
		ttl:    ttl,
		secure: secure,
		logger: logger,
		now:    time.Now,
	}
}

func (m *SessionManager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", m.secure, true)
}

// Login starts a new session for user and sets the cookie.
func (m *SessionManager) Login(c *gin.Context, user *internal.User) error {
	if id, err := c.Cookie(CookieName); err == nil && id != "" {
		if err := m.store.DeleteSession(c.Request.Context(), id); err != nil {
			m.logger.Warnf("failed to drop previous session: %v", err)
		}
	}
	data := internal.SessionData{UserID: user.ID, AuthHash: AuthHash(user.PasswordHash)}
	sess, err := m.store.CreateSession(c.Request.Context(), data, m.now().Add(m.ttl))
	if err != nil {
		return err
	}
	m.setCookie(c, sess.ID, int(m.ttl/time.Second))
	c.Set(userKey, user)
	return nil
}

func (m *SessionManager) Logout(c *gin.Context) error {
	id, err := c.Cookie(CookieName)
	m.setCookie(c, "", -1)
	if err != nil || id == "" {
		return nil
	}
	return m.store.DeleteSession(c.Request.Context(), id)
}

// resolve loads the session's user. Sessions whose auth hash no longer
// matches the user's password are removed.
func (m *SessionManager) resolve(ctx context.Context, id string) (*internal.Session, *internal.User, error) {
	sess, err := m.store.LoadSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	user, err := m.users.GetUserByID(ctx, sess.Data.UserID)
	if errors.Is(err, internal.ErrNotFound) || (err == nil && AuthHash(user.PasswordHash) != sess.Data.AuthHash) {
		_ = m.store.DeleteSession(ctx, id)
		return nil, nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return sess, user, nil
}

// Middleware loads the logged in user, if any, and extends the session.
// It never rejects a request; see RequireUser.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		sess, user, err := m.resolve(ctx, id)
		switch {
		case errors.Is(err, internal.ErrNotFound):
			m.setCookie(c, "", -1)
		case err != nil:
			m.logger.Errorf("[request_id=%s] failed to load session: %v", c.GetString("request_id"), err)
		default:
			sess.ExpiresAt = m.now().Add(m.ttl)
			if err := m.store.SaveSession(ctx, sess); err != nil {
				m.logger.Warnf("failed to extend session: %v", err)
			} else {
				m.setCookie(c, sess.ID, int(m.ttl/time.Second))
			}
			c.Set(userKey, user)
		}
		c.Next()
	}
}

// RunCleanup deletes expired sessions every minute until ctx is done.
func (m *SessionManager) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(expiredSessionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.store.DeleteExpiredSessions(ctx)
			if err != nil {
				m.logger.Errorf("failed to delete expired sessions: %v", err)
				continue
			}
			if n > 0 {
				m.logger.Debugf("deleted %d expired sessions", n)
			}
		}
	}
}
