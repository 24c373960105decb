package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vova4o/goschool-api/internal/middleware"
	"github.com/vova4o/goschool-api/internal/models"
)

// Router groups every handler and the middleware needed to mount them.
type Router struct {
	Auth      *AuthHandler
	Tutorials *TutorialHandler
	Examples  *ExampleHandler
	Users     *UserHandler
	Admin     *AdminHandler
	SEO       *SEOHandler
	Metrics   *MetricsHandler

	Verifier    middleware.TokenVerifier
	Roles       middleware.RoleResolver
	AuthLimiter *middleware.IPRateLimiter
}

// Register mounts all routes on r. Versioned JSON routes live under prefix.
func (rt *Router) Register(r *gin.Engine, prefix string) {
	r.GET("/health", rt.Metrics.Health)
	r.GET("/ready", rt.Metrics.Ready)
	r.GET("/metrics", rt.Metrics.Prometheus)
	r.GET("/sitemap.xml", rt.SEO.Sitemap)
	r.GET("/robots.txt", rt.SEO.Robots)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	authGroup := api.Group("/auth")
	authGroup.POST("/register", middleware.RateLimit(rt.AuthLimiter), rt.Auth.Register)
	authGroup.POST("/login", middleware.RateLimit(rt.AuthLimiter), rt.Auth.Login)
	authGroup.POST("/logout", middleware.JWT(rt.Verifier), rt.Auth.Logout)
	authGroup.GET("/me", middleware.JWT(rt.Verifier), rt.Auth.Me)

	optional := middleware.OptionalJWT(rt.Verifier)
	api.GET("/tutorials", rt.Tutorials.List)
	api.GET("/tutorials/:slug", optional, rt.Tutorials.Page)
	api.GET("/access/tutorials/:id", optional, rt.Tutorials.Access)
	api.GET("/examples", rt.Examples.List)
	api.GET("/examples/:slug", rt.Examples.Get)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(rt.Verifier), middleware.FreshRole(rt.Roles), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/stats", rt.Admin.Stats)
		admin.POST("/init-db", rt.Admin.InitDB)
		admin.GET("/db-status", rt.Admin.DBStatus)

		admin.GET("/tutorials", rt.Tutorials.AdminList)
		admin.GET("/tutorials/export", rt.Admin.ExportTutorials)
		admin.POST("/tutorials", rt.Tutorials.Create)
		admin.GET("/tutorials/:id", rt.Tutorials.AdminGet)
		admin.PATCH("/tutorials/:id", rt.Tutorials.Update)
		admin.DELETE("/tutorials/:id", rt.Tutorials.Delete)

		admin.GET("/examples", rt.Examples.List)
		admin.POST("/examples", rt.Examples.Create)
		admin.GET("/examples/:id", rt.Examples.AdminGet)
		admin.PATCH("/examples/:id", rt.Examples.Update)
		admin.DELETE("/examples/:id", rt.Examples.Delete)

		admin.GET("/users", rt.Users.List)
		admin.GET("/users/export", rt.Admin.ExportUsers)
		admin.GET("/users/:id", rt.Users.Get)
		admin.PATCH("/users/:id", rt.Users.Update)
		admin.PUT("/users/:id/premium", rt.Users.SetPremium)
	}
}
