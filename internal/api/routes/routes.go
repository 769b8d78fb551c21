package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hirelens/hirelens/internal/api/handlers"
	"github.com/hirelens/hirelens/internal/api/middleware"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Resumes   *handlers.ResumeHandler
	Jobs      *handlers.JobHandler
	Match     *handlers.MatchHandler
	Analytics *handlers.AnalyticsHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)

	// Everything else requires a valid token.
	auth := api.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/auth/me", d.Auth.Me)

	auth.POST("/resumes/upload", d.Resumes.Upload)
	auth.GET("/resumes", d.Resumes.List)
	auth.GET("/resumes/:id", d.Resumes.Get)
	auth.DELETE("/resumes/:id", middleware.RequireRole("admin", "hr"), d.Resumes.Delete)
	auth.POST("/resumes/:id/match/:job_id", d.Match.Single)

	auth.POST("/jobs", d.Jobs.Create)
	auth.GET("/jobs", d.Jobs.List)
	auth.GET("/jobs/:id", d.Jobs.Get)
	auth.PUT("/jobs/:id", d.Jobs.Update)
	// Ownership (posting user or admin) is enforced by the job service.
	auth.DELETE("/jobs/:id", d.Jobs.Delete)
	auth.GET("/jobs/:id/candidates", d.Jobs.Candidates)
	auth.POST("/jobs/:id/match-all", d.Match.Batch)

	auth.GET("/analytics/dashboard", d.Analytics.Dashboard)
	auth.GET("/analytics/skills", d.Analytics.TopSkills)
}
