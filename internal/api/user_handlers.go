package api

import (
	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/gin-gonic/gin"
)

func registerUserRoutes(rg *gin.RouterGroup, app App) {
	g := rg.Group("/users", auth.RequireAdmin())
	g.GET("", ListUsers(app))
	g.POST("", PostUser(app))
	g.GET("/:id", GetUser(app))
	g.PATCH("/:id", PatchUser(app))
	g.DELETE("/:id", DeleteUser(app))
}

func ListUsers(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := app.Services().Users.List(c.Request.Context(), auth.MustUser(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to list users")
			return
		}
		if users == nil {
			users = []internal.User{}
		}
		HandleSuccess(c, app.Logger(), users, nil)
	}
}

func GetUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		user, err := app.Services().Users.Get(c.Request.Context(), auth.MustUser(c), ids[0])
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to get user")
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func PostUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body internal.NewUser
		if !bindJSON(c, app, &body) {
			return
		}
		user, err := app.Services().Users.Create(c.Request.Context(), auth.MustUser(c), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to create user")
			return
		}
		HandleCreated(c, app.Logger(), user)
	}
}

func PatchUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		var body internal.ChangeUser
		if !bindJSON(c, app, &body) {
			return
		}
		user, err := app.Services().Users.Update(c.Request.Context(), auth.MustUser(c), ids[0], &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update user")
			return
		}
		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func DeleteUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		if err := app.Services().Users.Delete(c.Request.Context(), auth.MustUser(c), ids[0]); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete user")
			return
		}
		HandleDeleted(c, app.Logger())
	}
}
