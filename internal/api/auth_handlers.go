package api

import (
	"net/http"

	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/response"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Health reports whether storage is reachable.
func Health(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Store().Ping(c.Request.Context()); err != nil {
			app.Logger().Errorf("health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, response.NewAppError(http.StatusServiceUnavailable, "storage unavailable"))
			return
		}
		c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}, nil))
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body LoginRequest
		if !bindJSON(c, app, &body) {
			return
		}
		user, err := app.Auth().Authenticate(c.Request.Context(), body.Username, body.Password)
		if err != nil {
			HandleError(c, app.Logger(), err, "Login failed")
			return
		}
		if err := app.Sessions().Login(c, user); err != nil {
			HandleError(c, app.Logger(), err, "Failed to create session")
			return
		}
		app.Logger().Infof("[request_id=%s] login for %s", c.GetString("request_id"), user.Username)
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func Logout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Sessions().Logout(c); err != nil {
			HandleError(c, app.Logger(), err, "Failed to log out")
			return
		}
		HandleDeleted(c, app.Logger())
	}
}

// Me returns the logged in user, or null.
func Me(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"data": nil})
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}
