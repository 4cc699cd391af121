package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/storyboard-backend/internal/clients/redis"
	"github.com/yungbote/storyboard-backend/internal/db"
	"github.com/yungbote/storyboard-backend/internal/handlers"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/drafter"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/editor"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/pipeline"
	"github.com/yungbote/storyboard-backend/internal/platform/envutil"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
	"github.com/yungbote/storyboard-backend/internal/platform/openai"
	"github.com/yungbote/storyboard-backend/internal/repos"
	"github.com/yungbote/storyboard-backend/internal/server"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	database, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	gormDB := database.DB()

	// Repos
	storyboardRepo := repos.NewStoryboardRepo(gormDB, log)
	generationRunRepo := repos.NewGenerationRunRepo(gormDB, log)
	runRecorder := repos.NewRunRecorder(generationRunRepo, log)

	// LLM gateway
	llm, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}

	// Progress bus is optional; without REDIS_ADDR the pipeline runs silent.
	var progress pipeline.ProgressPublisher
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		bus, err := redis.NewProgressBus(log)
		if err != nil {
			log.Warn("Progress bus init failed, continuing without it", "error", err)
		} else {
			defer bus.Close()
			progress = bus
		}
	}

	// Pipeline
	unitDrafter := drafter.NewUnitDrafter(llm, log, runRecorder)
	sequenceDrafter := drafter.NewSequenceDrafter(llm, log, runRecorder)
	qualityEditor := editor.NewQualityEditor(llm, log)
	orchestrator := pipeline.NewOrchestrator(unitDrafter, sequenceDrafter, qualityEditor, progress, log)

	// HTTP
	storyboardHandler := handlers.NewStoryboardHandler(orchestrator, storyboardRepo, log)
	router := server.NewRouter(server.RouterConfig{
		StoryboardHandler: storyboardHandler,
	})

	port := envutil.Str("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
