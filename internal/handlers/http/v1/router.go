package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Demonism0/blog-api/internal/auth"
	gql "github.com/Demonism0/blog-api/internal/handlers/http/v1/graphql"
	"github.com/Demonism0/blog-api/internal/service"
)

type handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, verifier *auth.Verifier, allowOrigins []string, logger *slog.Logger) (*gin.Engine, error) {
	var (
		router = gin.New()
		h      = &handler{svc: svc, logger: logger}
	)

	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}))

	gqlHandler, err := gql.New(svc, logger)
	if err != nil {
		return nil, err
	}

	apiGroup := router.Group("/api")
	{
		apiGroup.Use(requestLogger(logger))
		apiGroup.Use(authenticate(verifier))

		apiGroup.GET("/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		apiGroup.Any("/graphql", gin.WrapH(gqlHandler))

		apiGroup.POST("/login", h.login)

		postsGroup := apiGroup.Group("/posts")
		{
			postsGroup.GET("", h.listPosts)
			postsGroup.POST("", h.createPost)
			postsGroup.GET("/:postId", h.getPost)
			postsGroup.POST("/:postId", h.createComment)
			postsGroup.PUT("/:postId", h.updatePost)
			postsGroup.DELETE("/:postId", h.deletePost)
			postsGroup.DELETE("/:postId/comments/:commentId", h.deleteComment)
		}
	}

	return router, nil
}
