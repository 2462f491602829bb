package api

import (
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/service"
	"github.com/gin-gonic/gin"
)

func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(app.Logger()), app.Sessions().Middleware())

	r.GET("/_health", Health(app))
	if o := app.OIDC(); o != nil {
		r.GET("/login/oidc", o.LoginHandler())
		r.GET(auth.OIDCCallbackPath, o.CallbackHandler())
	}

	api := r.Group("/api")
	api.POST("/login", Login(app))
	api.POST("/logout", Logout(app))
	api.GET("/me", Me(app))

	private := api.Group("", auth.RequireUser())
	registerEventRoutes(private, app, "wees", "wee", func(s *service.Services) service.WeeService { return s.Wees })
	registerEventRoutes(private, app, "wee_urges", "wee urge", func(s *service.Services) service.WeeUrgeService { return s.WeeUrges })
	registerEventRoutes(private, app, "poos", "poo", func(s *service.Services) service.PooService { return s.Poos })
	registerConsumptionRoutes(private, app)
	registerEventRoutes(private, app, "exercises", "exercise", func(s *service.Services) service.ExerciseService { return s.Exercises })
	registerEventRoutes(private, app, "health_metrics", "health metric", func(s *service.Services) service.HealthMetricService { return s.HealthMetrics })
	registerEventRoutes(private, app, "symptoms", "symptom", func(s *service.Services) service.SymptomService { return s.Symptoms })
	registerEventRoutes(private, app, "refluxs", "reflux", func(s *service.Services) service.RefluxService { return s.Refluxes })
	registerEventRoutes(private, app, "notes", "note", func(s *service.Services) service.NoteService { return s.Notes })
	registerConsumableRoutes(private, app)
	private.GET("/timeline", GetTimeline(app))
	private.GET("/timeline/:date", GetTimeline(app))
	registerUserRoutes(private, app)

	return r
}
