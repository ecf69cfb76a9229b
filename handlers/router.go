package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"editorial-cms/helper"
	"editorial-cms/middleware"
	"editorial-cms/models"
)

// Router groups the handlers served under /api/v1.
type Router struct {
	Auth     *AuthHandler
	Article  *ArticleHandler
	Draft    *DraftHandler
	Document *DocumentHandler
	Tag      *TagHandler
	Category *CategoryHandler

	// Limiter throttles the unauthenticated routes. Nil disables it.
	Limiter *rate.Limiter
}

func corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	config.ExposeHeaders = []string{"X-Request-ID"}
	return config
}

// NewRouter builds the engine. Request binding is validated with the
// same validator h reports errors from.
func NewRouter(r Router, h *helper.HTTPHelper, jwtSecret []byte, log zerolog.Logger) *gin.Engine {
	binding.Validator = helper.NewBindingValidator(h.Validate)

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		cors.New(corsConfig()),
		gzip.Gzip(gzip.DefaultCompression),
	)
	throttle := middleware.RateLimit(r.Limiter, h)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth", throttle)
		{
			auth.POST("/register", r.Auth.Register)
			auth.POST("/login", r.Auth.Login)
		}

		// Rendering touches no stored data.
		v1.POST("/documents/render", throttle, r.Document.Render)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret, h))
		{
			protected.GET("/profile", r.Auth.GetProfile)

			articles := protected.Group("/articles")
			{
				articles.GET("", r.Article.GetArticles)
				articles.GET("/:id", r.Article.GetArticle)
				articles.DELETE("/:id", r.Article.DeleteArticle)
				articles.GET("/:id/versions", r.Article.GetArticleVersions)
				articles.GET("/:id/versions/:version_id", r.Article.GetArticleVersion)
			}

			drafts := protected.Group("/drafts")
			{
				drafts.POST("", r.Draft.Start)
				drafts.GET("/:id", r.Draft.Get)
				drafts.PUT("/:id", r.Draft.Edit)
				drafts.POST("/:id/preview", r.Draft.Preview)
				drafts.GET("/:id/preview", r.Draft.View)
				drafts.POST("/:id/back", r.Draft.Back)
				drafts.POST("/:id/submit", r.Draft.Submit)
				drafts.DELETE("/:id", r.Draft.Discard)
			}

			admin := middleware.RequireRole(h, models.RoleAdmin)

			tags := protected.Group("/tags")
			{
				tags.POST("", admin, r.Tag.CreateTag)
				tags.GET("", r.Tag.GetTags)
				tags.GET("/:id", r.Tag.GetTag)
			}

			categories := protected.Group("/categories")
			{
				categories.POST("", admin, r.Category.CreateCategory)
				categories.GET("", r.Category.GetCategories)
				categories.GET("/:id", r.Category.GetCategory)
			}
		}

		public := v1.Group("/public")
		{
			public.GET("/articles", r.Article.GetPublicArticles)
			public.GET("/articles/:id", r.Article.GetPublicArticle)
		}
	}

	return router
}
