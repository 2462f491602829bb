package api

import (
	"strconv"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/gin-gonic/gin"
)

func registerConsumableRoutes(rg *gin.RouterGroup, app App) {
	g := rg.Group("/consumables")
	g.GET("", SearchConsumables(app))
	g.GET("/:id", GetConsumable(app))
	g.POST("", PostConsumable(app))
	g.PATCH("/:id", PatchConsumable(app))
	g.DELETE("/:id", DeleteConsumable(app))
	g.GET("/:id/parents", GetConsumableParents(app))
	g.GET("/:id/consumptions", GetConsumableConsumptions(app))
	g.POST("/:id/items", PostNestedConsumable(app))
	g.PATCH("/:id/items/:child_id", PatchNestedConsumable(app))
	g.DELETE("/:id/items/:child_id", DeleteNestedConsumable(app))
}

func queryBool(c *gin.Context, name string) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func SearchConsumables(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := internal.ConsumableQuery{Text: c.Query("q")}
		var err error
		if q.OnlyCreated, err = queryBool(c, "only_created"); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid only_created")
			return
		}
		if q.IncludeDestroyed, err = queryBool(c, "include_destroyed"); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid include_destroyed")
			return
		}
		rows, err := app.Services().Consumables.Search(c.Request.Context(), q)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to search consumables")
			return
		}
		if rows == nil {
			rows = []internal.Consumable{}
		}
		HandleSuccess(c, app.Logger(), rows, nil)
	}
}

func GetConsumable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		out, err := app.Services().Consumables.Get(c.Request.Context(), ids[0])
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to get consumable")
			return
		}
		HandleSuccess(c, app.Logger(), out, nil)
	}
}

func PostConsumable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body internal.NewConsumable
		if !bindJSON(c, app, &body) {
			return
		}
		out, err := app.Services().Consumables.Create(c.Request.Context(), &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to create consumable")
			return
		}
		HandleCreated(c, app.Logger(), out)
	}
}

func PatchConsumable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		var body internal.ChangeConsumable
		if !bindJSON(c, app, &body) {
			return
		}
		out, err := app.Services().Consumables.Update(c.Request.Context(), ids[0], &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update consumable")
			return
		}
		HandleSuccess(c, app.Logger(), out, nil)
	}
}

func DeleteConsumable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		if err := app.Services().Consumables.Delete(c.Request.Context(), ids[0]); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete consumable")
			return
		}
		HandleDeleted(c, app.Logger())
	}
}

func GetConsumableParents(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		items, err := app.Services().Consumables.Parents(c.Request.Context(), ids[0])
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to list parents")
			return
		}
		if items == nil {
			items = []internal.NestedConsumableItem{}
		}
		HandleSuccess(c, app.Logger(), items, nil)
	}
}

func GetConsumableConsumptions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		rows, err := app.Services().Consumables.Consumptions(c.Request.Context(), auth.MustUser(c), ids[0])
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to list consumptions")
			return
		}
		if rows == nil {
			rows = []internal.Consumption{}
		}
		HandleSuccess(c, app.Logger(), rows, nil)
	}
}

func PostNestedConsumable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		var body internal.NewNestedConsumable
		if !bindJSON(c, app, &body) {
			return
		}
		out, err := app.Services().Consumables.AddItem(c.Request.Context(), ids[0], &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to add ingredient")
			return
		}
		HandleCreated(c, app.Logger(), out)
	}
}

func PatchNestedConsumable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id", "child_id")
		if !ok {
			return
		}
		var body internal.ChangeNestedConsumable
		if !bindJSON(c, app, &body) {
			return
		}
		out, err := app.Services().Consumables.UpdateItem(c.Request.Context(), ids[0], ids[1], &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update ingredient")
			return
		}
		HandleSuccess(c, app.Logger(), out, nil)
	}
}

func DeleteNestedConsumable(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id", "child_id")
		if !ok {
			return
		}
		if err := app.Services().Consumables.DeleteItem(c.Request.Context(), ids[0], ids[1]); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete ingredient")
			return
		}
		HandleDeleted(c, app.Logger())
	}
}
