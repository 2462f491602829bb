package api

import (
	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/service"
	"github.com/gin-gonic/gin"
)

// registerConsumptionRoutes adds the ingredient routes to the usual event
// CRUD. Consumptions are returned with their ingredients.
func registerConsumptionRoutes(rg *gin.RouterGroup, app App) {
	h := &eventHandlers[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption]{
		app:  app,
		name: "consumption",
		svc: func(s *service.Services) service.Events[internal.Consumption, internal.NewConsumption, internal.ChangeConsumption] {
			return s.Consumptions
		},
	}
	g := rg.Group("/consumptions")
	h.routes(g, ListConsumptions(app), GetConsumption(app))
	g.GET("/:id/items", ListConsumptionItems(app))
	g.POST("/:id/items", PostConsumptionItem(app))
	g.PATCH("/:id/items/:consumable_id", PatchConsumptionItem(app))
	g.DELETE("/:id/items/:consumable_id", DeleteConsumptionItem(app))
}

func ListConsumptions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, err := parseTimeRange(c)
		if err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid time range")
			return
		}
		rows, err := app.Services().Consumptions.ListWithItems(c.Request.Context(), auth.MustUser(c), start, end)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to list consumption events")
			return
		}
		if rows == nil {
			rows = []internal.ConsumptionWithItems{}
		}
		HandleSuccess(c, app.Logger(), rows, nil)
	}
}

func GetConsumption(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		out, err := app.Services().Consumptions.GetWithItems(c.Request.Context(), auth.MustUser(c), ids[0])
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to get consumption")
			return
		}
		HandleSuccess(c, app.Logger(), out, nil)
	}
}

func ListConsumptionItems(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		items, err := app.Services().Consumptions.Items(c.Request.Context(), auth.MustUser(c), ids[0])
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to list consumption items")
			return
		}
		if items == nil {
			items = []internal.ConsumptionConsumableItem{}
		}
		HandleSuccess(c, app.Logger(), items, nil)
	}
}

func PostConsumptionItem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id")
		if !ok {
			return
		}
		var body internal.NewConsumptionConsumable
		if !bindJSON(c, app, &body) {
			return
		}
		item, err := app.Services().Consumptions.AddItem(c.Request.Context(), auth.MustUser(c), ids[0], &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to add consumption item")
			return
		}
		HandleCreated(c, app.Logger(), item)
	}
}

func PatchConsumptionItem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id", "consumable_id")
		if !ok {
			return
		}
		var body internal.ChangeConsumptionConsumable
		if !bindJSON(c, app, &body) {
			return
		}
		item, err := app.Services().Consumptions.UpdateItem(c.Request.Context(), auth.MustUser(c), ids[0], ids[1], &body)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update consumption item")
			return
		}
		HandleSuccess(c, app.Logger(), item, nil)
	}
}

func DeleteConsumptionItem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, ok := pathIDs(c, app, "id", "consumable_id")
		if !ok {
			return
		}
		if err := app.Services().Consumptions.DeleteItem(c.Request.Context(), auth.MustUser(c), ids[0], ids[1]); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete consumption item")
			return
		}
		HandleDeleted(c, app.Logger())
	}
}
