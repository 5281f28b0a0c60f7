package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio-api/pkg/auth"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type Handlers struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Collection *CollectionHandler
	Project    *ProjectHandler
	Feed       *FeedHandler
}

type RouterConfig struct {
	JWT            *auth.JWTService
	Logger         logger.Logger
	AllowedOrigins []string
	// AuthLimiter guards register and login; nil disables it.
	AuthLimiter *RateLimiter
}

func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(CORS(cfg.AllowedOrigins))
	}
	router.Use(ErrorMiddleware(cfg.Logger), OptionalAuth(cfg.JWT))

	limit := func(c *gin.Context) { c.Next() }
	if cfg.AuthLimiter != nil {
		limit = cfg.AuthLimiter.Middleware()
	}
	private := RequireAuth()

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", limit, h.Auth.Register)
			authGroup.POST("/login", limit, h.Auth.Login)
			authGroup.POST("/token/refresh", h.Auth.Refresh)
			authGroup.GET("/me", private, h.Auth.Me)
			authGroup.GET("/owner", h.Auth.Owner)

			profile := authGroup.Group("/profile")
			{
				profile.GET("", h.Profile.GetProfile)
				profile.POST("", private, h.Profile.UpdateProfile)
				profile.DELETE("", private, h.Profile.DeleteProfile)
				profile.POST("/update", private, h.Profile.UpdateProfile)
				profile.PUT("/update", private, h.Profile.UpdateProfile)
				profile.PATCH("/update", private, h.Profile.UpdateProfile)
				profile.POST("/upload-image", private, h.Profile.UploadImage)

				profile.POST("/bulk/skills", private, h.Collection.BulkSkills)
				profile.POST("/bulk/certifications", private, h.Collection.BulkCertifications)
				profile.POST("/bulk/languages", private, h.Collection.BulkLanguages)

				certs := profile.Group("/certifications")
				{
					certs.GET("", h.Collection.ListCertifications)
					certs.POST("", private, h.Collection.AddCertification)
					certs.POST("/bulk-update", private, h.Collection.BulkCertifications)
					certs.GET("/:id", h.Collection.GetCertification)
					certs.PATCH("/:id", private, h.Collection.UpdateCertification)
					certs.DELETE("/:id", private, h.Collection.RemoveCertification)
				}

				langs := profile.Group("/languages")
				{
					langs.GET("", h.Collection.ListLanguages)
					langs.POST("", private, h.Collection.AddLanguage)
					langs.POST("/bulk-update", private, h.Collection.BulkLanguages)
					langs.GET("/:id", h.Collection.GetLanguage)
					langs.PATCH("/:id", private, h.Collection.UpdateLanguage)
					langs.DELETE("/:id", private, h.Collection.RemoveLanguage)
				}

				skills := profile.Group("/skills")
				{
					skills.GET("", h.Collection.ListSkills)
					skills.POST("", private, h.Collection.AddSkill)
					skills.POST("/bulk-update", private, h.Collection.BulkSkills)
					skills.GET("/:id", h.Collection.GetSkill)
					skills.PATCH("/:id", private, h.Collection.UpdateSkill)
					skills.DELETE("/:id", private, h.Collection.RemoveSkill)
				}

				categories := profile.Group("/skill-categories")
				{
					categories.GET("", h.Collection.ListSkillCategories)
					categories.POST("", private, h.Collection.AddSkillCategory)
					categories.POST("/bulk-update", private, h.Collection.BulkSkills)
					categories.GET("/:id", h.Collection.GetSkillCategory)
					categories.PATCH("/:id", private, h.Collection.RenameSkillCategory)
					categories.DELETE("/:id", private, h.Collection.RemoveSkillCategory)
				}
			}
		}

		projects := api.Group("/projects")
		{
			projects.GET("", h.Project.ListProjects)
			projects.GET("/feed.rss", h.Feed.ProjectsRSS)
			projects.GET("/feed.atom", h.Feed.ProjectsAtom)
			projects.POST("", private, h.Project.CreateProject)
			projects.GET("/:id", h.Project.GetProject)
			projects.PUT("/:id", private, h.Project.UpdateProject)
			projects.PATCH("/:id", private, h.Project.UpdateProject)
			projects.DELETE("/:id", private, h.Project.DeleteProject)
			projects.POST("/:id/upload-image", private, h.Project.UploadImage)
		}
	}

	return router
}
