package api

import (
	"github.com/datallboy/gonntp/internal/api/controllers"
	"github.com/datallboy/gonntp/internal/app"
	"github.com/datallboy/gonntp/internal/poster"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

func RegisterRoutes(e *echo.Echo, app *app.Context, svc *poster.Service) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			app.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	articleCtrl := &controllers.ArticleController{App: app, Poster: svc}

	e.POST("/api/articles", articleCtrl.HandlePost)
	e.GET("/api/articles/:id", articleCtrl.HandleFetch)

	e.GET("/api/journal", articleCtrl.HandleJournal)
	e.GET("/api/journal/:id", articleCtrl.HandleJournalEntry)
}
