package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/response"
	"github.com/brianmay/penguin-nurse/internal/storage"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	OIDCCallbackPath = "/openid_connect_redirect_uri"

	oidcCookieName     = "penguin_nurse_oidc"
	oidcCookieMaxAge   = 10 * 60
	oidcRefreshEvery   = 10 * time.Minute
	oidcRetryEvery     = 60 * time.Second
	oidcAdminGroupName = "admin"
)

var ErrOIDCUnavailable = errors.New("OIDC provider is not available")

type OIDCConfig struct {
	DiscoveryURL string
	ClientID     string
	ClientSecret string
	Scopes       []string
	BaseURL      string
	Secure       bool
}

type oidcClient struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth    oauth2.Config
}

// OIDC logs users in through an OpenID Connect provider. The provider
// metadata is fetched by Run; until the first successful discovery the
// handlers answer 503.
type OIDC struct {
	cfg      OIDCConfig
	users    storage.UserRepository
	sessions *SessionManager
	logger   internal.Logger
	client   atomic.Pointer[oidcClient]
}

func NewOIDC(cfg OIDCConfig, users storage.UserRepository, sessions *SessionManager, logger internal.Logger) *OIDC {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID}
	}
	return &OIDC{cfg: cfg, users: users, sessions: sessions, logger: logger}
}

// ParseScopes splits a space separated scope list, making sure "openid" is
// present.
func ParseScopes(s string) []string {
	scopes := strings.Fields(s)
	if !slices.Contains(scopes, oidc.ScopeOpenID) {
		scopes = append([]string{oidc.ScopeOpenID}, scopes...)
	}
	return scopes
}

func (o *OIDC) discover(ctx context.Context) error {
	provider, err := oidc.NewProvider(ctx, o.cfg.DiscoveryURL)
	if err != nil {
		return err
	}
	o.client.Store(&oidcClient{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: o.cfg.ClientID}),
		oauth: oauth2.Config{
			ClientID:     o.cfg.ClientID,
			ClientSecret: o.cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  strings.TrimRight(o.cfg.BaseURL, "/") + OIDCCallbackPath,
			Scopes:       o.cfg.Scopes,
		},
	})
	return nil
}

// Run rediscovers the provider every 10 minutes, or every minute while
// discovery is failing, until ctx is done.
func (o *OIDC) Run(ctx context.Context) {
	for {
		wait := oidcRefreshEvery
		if err := o.discover(ctx); err != nil {
			o.logger.Errorf("OIDC discovery failed: %v", err)
			wait = oidcRetryEvery
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (o *OIDC) unavailable(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable,
		response.NewAppError(http.StatusServiceUnavailable, ErrOIDCUnavailable.Error()))
}

func (o *OIDC) setStateCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oidcCookieName, value, maxAge, "/", "", o.cfg.Secure, true)
}

// LoginHandler redirects to the provider. The state, nonce and next
// location are kept in a short lived cookie.
func (o *OIDC) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := o.client.Load()
		if client == nil {
			o.unavailable(c)
			return
		}
		state, nonce := uuid.NewString(), uuid.NewString()
		v := url.Values{}
		v.Set("state", state)
		v.Set("nonce", nonce)
		v.Set("next", safeNext(c.Query("next")))
		o.setStateCookie(c, v.Encode(), oidcCookieMaxAge)
		c.Redirect(http.StatusFound, client.oauth.AuthCodeURL(state, oidc.Nonce(nonce)))
	}
}

// Identity is what the provider tells us about a user.
type Identity struct {
	Subject string
	Name    string
	Email   string
	IsAdmin bool
}

func (o *OIDC) identify(ctx context.Context, client *oidcClient, code, nonce string) (*Identity, error) {
	token, err := client.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawID, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token in token response")
	}
	idToken, err := client.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}
	if idToken.Nonce != nonce {
		return nil, errors.New("nonce mismatch")
	}
	var claims struct {
		Groups []string `json:"groups"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("id_token claims: %w", err)
	}

	info, err := client.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	var profile struct {
		Name string `json:"name"`
	}
	if err := info.Claims(&profile); err != nil {
		return nil, fmt.Errorf("userinfo claims: %w", err)
	}
	id := &Identity{
		Subject: info.Subject,
		Name:    profile.Name,
		Email:   info.Email,
		IsAdmin: slices.Contains(claims.Groups, oidcAdminGroupName),
	}
	switch {
	case id.Subject == "":
		return nil, errors.New("userinfo has no sub")
	case id.Name == "":
		return nil, errors.New("userinfo has no name")
	case id.Email == "":
		return nil, errors.New("userinfo has no email")
	}
	return id, nil
}

// CallbackHandler finishes the login started by LoginHandler.
func (o *OIDC) CallbackHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := o.client.Load()
		if client == nil {
			o.unavailable(c)
			return
		}
		raw, err := c.Cookie(oidcCookieName)
		o.setStateCookie(c, "", -1)
		if err != nil {
			o.reject(c, "missing login state", err)
			return
		}
		saved, err := url.ParseQuery(raw)
		if err != nil || saved.Get("state") == "" || saved.Get("state") != c.Query("state") {
			o.reject(c, "state mismatch", err)
			return
		}
		if e := c.Query("error"); e != "" {
			o.reject(c, "provider returned an error", errors.New(e))
			return
		}

		ctx := c.Request.Context()
		id, err := o.identify(ctx, client, c.Query("code"), saved.Get("nonce"))
		if err != nil {
			o.reject(c, "login failed", err)
			return
		}
		user, err := UpsertOIDCUser(ctx, o.users, id)
		if err != nil {
			o.logger.Errorf("[request_id=%s] failed to store OIDC user: %v", c.GetString("request_id"), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				response.InternalError("Failed to store user"))
			return
		}
		if err := o.sessions.Login(c, user); err != nil {
			o.logger.Errorf("[request_id=%s] failed to create session: %v", c.GetString("request_id"), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				response.InternalError("Failed to create session"))
			return
		}
		o.logger.Infof("OIDC login for %s", user.Username)
		c.Redirect(http.StatusFound, safeNext(saved.Get("next")))
	}
}

func (o *OIDC) reject(c *gin.Context, msg string, err error) {
	o.logger.Warnf("[request_id=%s] OIDC %s: %v", c.GetString("request_id"), msg, err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.NewAppError(http.StatusUnauthorized, msg))
}

// UpsertOIDCUser finds the local account for id, first by subject and then
// by email, and syncs oidc_id and is_admin. Unknown identities get a new
// account without a password.
func UpsertOIDCUser(ctx context.Context, users storage.UserRepository, id *Identity) (*internal.User, error) {
	user, err := users.GetUserByOIDCID(ctx, id.Subject)
	if errors.Is(err, internal.ErrNotFound) {
		user, err = users.GetUserByEmail(ctx, id.Email)
	}
	switch {
	case errors.Is(err, internal.ErrNotFound):
		return users.CreateUser(ctx, &internal.NewUser{
			Username: id.Name,
			FullName: id.Name,
			Email:    id.Email,
			OIDCID:   internal.Ptr(id.Subject),
			IsAdmin:  id.IsAdmin,
		})
	case err != nil:
		return nil, err
	}
	if user.OIDCID != nil && *user.OIDCID == id.Subject && user.IsAdmin == id.IsAdmin {
		return user, nil
	}
	return users.UpdateUser(ctx, user.ID, &internal.ChangeUser{
		OIDCID:  internal.Set(internal.Ptr(id.Subject)),
		IsAdmin: internal.Set(id.IsAdmin),
	})
}

// safeNext only allows local absolute paths, so the login flow cannot be
// used as an open redirect.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
