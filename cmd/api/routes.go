package main

import (
	"context"
	"net/http"
	"time"

	"github.com/abhishek622/interviewflow/internal/metrics"
	"github.com/abhishek622/interviewflow/pkg/response"
	"github.com/gin-gonic/gin"
)

func (app *application) routes() http.Handler {
	if app.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(app.LoggerMiddleware())
	r.Use(app.HTTP.Middleware())
	r.Use(app.CORSMiddleware())

	r.GET("/healthz", app.healthz)
	r.GET("/metrics", metrics.Handler(app.Registry))

	v1 := r.Group("/api/v1")
	v1.Use(app.RateLimitMiddleware())
	v1.Use(app.AuthMiddleware())
	app.Handler.RegisterRoutes(v1)

	return r
}

func (app *application) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := app.Ready(ctx); err != nil {
		response.ServiceUnavailable(c, "store unreachable")
		return
	}
	response.OK(c, gin.H{"status": "ok", "store": app.Config.StoreDriver})
}
