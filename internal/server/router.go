package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storyboard-backend/internal/handlers"
)

type RouterConfig struct {
	StoryboardHandler *handlers.StoryboardHandler
	AllowOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", handlers.HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.POST("/storyboards", cfg.StoryboardHandler.Generate)
		v1.GET("/storyboards", cfg.StoryboardHandler.List)
		v1.GET("/storyboards/:id", cfg.StoryboardHandler.GetByID)
	}

	return router
}
