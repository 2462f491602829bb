package api

import (
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/dt"
	"github.com/gin-gonic/gin"
)

// GetTimeline serves /timeline/:date, or today when no date is given.
func GetTimeline(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		timeline := app.Services().Timeline
		date := timeline.Today()
		if raw := c.Param("date"); raw != "" {
			d, err := dt.ParseDate(raw)
			if err != nil {
				HandleBadRequest(c, app.Logger(), err, "Invalid date")
				return
			}
			date = d
		}
		out, err := timeline.Build(c.Request.Context(), auth.MustUser(c), date)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to build timeline")
			return
		}
		HandleSuccess(c, app.Logger(), out, nil)
	}
}
