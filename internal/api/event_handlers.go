package api

import (
	"errors"
	"time"

	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/service"
	"github.com/gin-gonic/gin"
)

// eventHandlers serves the CRUD routes of one event type. name is the
// singular display name used in error messages.
type eventHandlers[E, N, C any] struct {
	app  App
	name string
	svc  func(*service.Services) service.Events[E, N, C]
}

func registerEventRoutes[E, N, C any](rg *gin.RouterGroup, app App, path, name string, svc func(*service.Services) service.Events[E, N, C]) {
	h := &eventHandlers[E, N, C]{app: app, name: name, svc: svc}
	h.routes(rg.Group("/"+path), h.list, h.get)
}

func (h *eventHandlers[E, N, C]) routes(g *gin.RouterGroup, list, get gin.HandlerFunc) {
	g.GET("", list)
	g.GET("/:id", get)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func parseTimeRange(c *gin.Context) (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return start, end, errors.New("start must be an RFC 3339 time")
	}
	end, err = time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return start, end, errors.New("end must be an RFC 3339 time")
	}
	if end.Before(start) {
		return start, end, errors.New("end must not be before start")
	}
	return start, end, nil
}

func (h *eventHandlers[E, N, C]) list(c *gin.Context) {
	start, end, err := parseTimeRange(c)
	if err != nil {
		HandleBadRequest(c, h.app.Logger(), err, "Invalid time range")
		return
	}
	rows, err := h.svc(h.app.Services()).List(c.Request.Context(), auth.MustUser(c), start, end)
	if err != nil {
		HandleError(c, h.app.Logger(), err, "Failed to list "+h.name+" events")
		return
	}
	if rows == nil {
		rows = []E{}
	}
	HandleSuccess(c, h.app.Logger(), rows, nil)
}

func (h *eventHandlers[E, N, C]) get(c *gin.Context) {
	ids, ok := pathIDs(c, h.app, "id")
	if !ok {
		return
	}
	row, err := h.svc(h.app.Services()).Get(c.Request.Context(), auth.MustUser(c), ids[0])
	if err != nil {
		HandleError(c, h.app.Logger(), err, "Failed to get "+h.name)
		return
	}
	HandleSuccess(c, h.app.Logger(), row, nil)
}

func (h *eventHandlers[E, N, C]) create(c *gin.Context) {
	var body N
	if !bindJSON(c, h.app, &body) {
		return
	}
	row, err := h.svc(h.app.Services()).Create(c.Request.Context(), auth.MustUser(c), &body)
	if err != nil {
		HandleError(c, h.app.Logger(), err, "Failed to create "+h.name)
		return
	}
	HandleCreated(c, h.app.Logger(), row)
}

func (h *eventHandlers[E, N, C]) update(c *gin.Context) {
	ids, ok := pathIDs(c, h.app, "id")
	if !ok {
		return
	}
	var body C
	if !bindJSON(c, h.app, &body) {
		return
	}
	row, err := h.svc(h.app.Services()).Update(c.Request.Context(), auth.MustUser(c), ids[0], &body)
	if err != nil {
		HandleError(c, h.app.Logger(), err, "Failed to update "+h.name)
		return
	}
	HandleSuccess(c, h.app.Logger(), row, nil)
}

func (h *eventHandlers[E, N, C]) delete(c *gin.Context) {
	ids, ok := pathIDs(c, h.app, "id")
	if !ok {
		return
	}
	if err := h.svc(h.app.Services()).Delete(c.Request.Context(), auth.MustUser(c), ids[0]); err != nil {
		HandleError(c, h.app.Logger(), err, "Failed to delete "+h.name)
		return
	}
	HandleDeleted(c, h.app.Logger())
}
