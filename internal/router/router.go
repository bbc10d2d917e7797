// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/classroom-seating/internal/handler"
	"github.com/iliyamo/classroom-seating/internal/middleware"
	"github.com/iliyamo/classroom-seating/internal/utils"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Grids    *handler.GridHandler
	Students *handler.StudentHandler
	Groups   *handler.GroupHandler
	Seating  *handler.SeatingHandler
	Reveal   *handler.RevealHandler
}

// Options carries the middleware shared by the protected routes.
type Options struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc // response cache; nil disables
	RateLimit echo.MiddlewareFunc // token bucket; nil disables
	Gatherer  prometheus.Gatherer // nil uses the default registry
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// RegisterRoutes mounts the unauthenticated routes.
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	e.GET("/healthz", handler.Health)
	gatherer := opt.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.POST("/v1/auth/login", h.Auth.Login)
}

// RegisterTeacher mounts the teacher API under /v1.  Playback routes skip
// the response cache because their state moves on its own.
func RegisterTeacher(e *echo.Echo, h Handlers, opt Options) {
	cache, limit := opt.Cache, opt.RateLimit
	if cache == nil {
		cache = passthrough
	}
	if limit == nil {
		limit = passthrough
	}

	v1 := e.Group("/v1", middleware.JWTAuth(opt.JWTSecret), middleware.RequireRole(utils.RoleTeacher), limit)
	v1.GET("/me", h.Auth.Me)

	api := v1.Group("", cache)
	api.GET("/grids", h.Grids.List)
	api.POST("/grids", h.Grids.Create)
	api.GET("/grids/default", h.Grids.Default)
	api.GET("/grids/:id", h.Grids.Get)
	api.PUT("/grids/:id", h.Grids.Update)
	api.DELETE("/grids/:id", h.Grids.Delete)
	api.POST("/grids/:id/default", h.Grids.SetDefault)
	api.POST("/grids/:id/clone", h.Grids.Clone)
	api.PATCH("/grids/:id/seats/:seat_id", h.Grids.SetSeatKind)
	api.GET("/grids/:id/layout", h.Grids.Layout)

	api.GET("/students", h.Students.List)
	api.POST("/students", h.Students.Create)
	api.POST("/students/import", h.Students.Import)
	api.GET("/students/stats", h.Students.Stats)
	api.GET("/students/:id", h.Students.Get)
	api.PUT("/students/:id", h.Students.Update)
	api.DELETE("/students/:id", h.Students.Delete)

	api.GET("/groups", h.Groups.List)
	api.POST("/groups", h.Groups.Create)
	api.GET("/groups/:id", h.Groups.Get)
	api.PUT("/groups/:id", h.Groups.Update)
	api.DELETE("/groups/:id", h.Groups.Delete)

	api.POST("/grids/:id/fill", h.Seating.Fill)
	api.GET("/grids/:id/records", h.Seating.History)
	api.GET("/grids/:id/records/latest", h.Seating.Latest)
	api.GET("/grids/:id/policy", h.Seating.Policy)
	api.GET("/records/:id", h.Seating.Record)

	// read-only POSTs that must not purge the cache
	v1.POST("/groups/recommend", h.Groups.Recommend)
	v1.POST("/grids/:id/check", h.Seating.Check)
	v1.POST("/records/:id/sequence", h.Reveal.Sequence)

	pb := v1.Group("/grids/:id/playback")
	pb.GET("", h.Reveal.State)
	pb.POST("/start", h.Reveal.Start)
	pb.POST("/pause", h.Reveal.Pause)
	pb.POST("/resume", h.Reveal.Resume)
	pb.POST("/stop", h.Reveal.Stop)
	pb.POST("/jump", h.Reveal.Jump)
}
