package auth

import (
	"net/http"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/response"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

// CurrentUser returns the user SessionManager.Middleware stored, if any.
func CurrentUser(c *gin.Context) (*internal.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*internal.User)
	return u, ok && u != nil
}

// MustUser is for handlers behind RequireUser.
func MustUser(c *gin.Context) *internal.User {
	return c.MustGet(userKey).(*internal.User)
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.NewAppError(http.StatusUnauthorized, internal.ErrUnauthorized.Error()))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.NewAppError(http.StatusUnauthorized, internal.ErrUnauthorized.Error()))
			return
		}
		if !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.NewAppError(http.StatusForbidden, internal.ErrNotAdmin.Error()))
			return
		}
		c.Next()
	}
}
