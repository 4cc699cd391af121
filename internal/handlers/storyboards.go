package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/content"
	"github.com/yungbote/storyboard-backend/internal/modules/storyboard/pipeline"
	"github.com/yungbote/storyboard-backend/internal/platform/apierr"
	"github.com/yungbote/storyboard-backend/internal/platform/logger"
	"github.com/yungbote/storyboard-backend/internal/repos"
	"github.com/yungbote/storyboard-backend/internal/types"
)

type StoryboardHandler struct {
	orchestrator *pipeline.Orchestrator
	storyboards  repos.StoryboardRepo
	log          *logger.Logger
}

func NewStoryboardHandler(orchestrator *pipeline.Orchestrator, storyboards repos.StoryboardRepo, log *logger.Logger) *StoryboardHandler {
	return &StoryboardHandler{
		orchestrator: orchestrator,
		storyboards:  storyboards,
		log:          log.With("handler", "StoryboardHandler"),
	}
}

// Generate runs the full pipeline for one request body.
func (h *StoryboardHandler) Generate(c *gin.Context) {
	var req content.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   apierr.New(apierr.CodeGenerationError, "invalid request body: "+err.Error(), apierr.GenericHints(), nil),
		})
		return
	}

	result := h.orchestrator.Run(c.Request.Context(), req)
	if !result.Success {
		c.JSON(statusFor(result.Err), gin.H{
			"success": false,
			"error":   result.Err,
		})
		return
	}

	record := h.persist(c, req, result)

	resp := gin.H{
		"success":    true,
		"runId":      result.RunID,
		"storyboard": result.Storyboard,
		"metadata":   result.Metadata,
	}
	if record != nil {
		resp["id"] = record.ID
	}
	c.JSON(http.StatusOK, resp)
}

// persist stores the result best-effort; a storage failure never turns a
// generated storyboard into an error response.
func (h *StoryboardHandler) persist(c *gin.Context, req content.GenerationRequest, result pipeline.Result) *types.StoryboardRecord {
	if h.storyboards == nil {
		return nil
	}
	reqJSON, _ := json.Marshal(req)
	docJSON, err := json.Marshal(result.Storyboard)
	if err != nil {
		h.log.Warn("Storyboard marshal failed", "run_id", result.RunID, "error", err.Error())
		return nil
	}
	record := &types.StoryboardRecord{
		ModuleTitle:      result.Storyboard.ModuleTitle,
		Request:          reqJSON,
		Document:         docJSON,
		TotalPages:       result.Metadata.TotalPages,
		InteractivePages: result.Metadata.InteractivePages,
		KnowledgeChecks:  result.Metadata.KnowledgeChecks,
		TotalDurationSec: result.Metadata.TotalDuration,
		Scenarios:        result.Metadata.Scenarios,
	}
	saved, err := h.storyboards.Create(c.Request.Context(), nil, record)
	if err != nil {
		h.log.Warn("Storyboard persist failed", "run_id", result.RunID, "error", err.Error())
		return nil
	}
	return saved
}

// GetByID serves a persisted storyboard back in its original JSON shape.
func (h *StoryboardHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid storyboard id"}})
		return
	}

	record, err := h.storyboards.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"message": "storyboard not found"}})
		return
	}

	var sb content.Storyboard
	if err := json.Unmarshal(record.Document, &sb); err != nil {
		h.log.Error("Stored storyboard decode failed", "id", id.String(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"message": "stored storyboard is unreadable"}})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"id":         record.ID,
		"storyboard": sb,
		"metadata": content.Metrics{
			TotalPages:       record.TotalPages,
			InteractivePages: record.InteractivePages,
			KnowledgeChecks:  record.KnowledgeChecks,
			TotalDuration:    record.TotalDurationSec,
			Scenarios:        record.Scenarios,
		},
	})
}

// List returns recent storyboards, newest first.
func (h *StoryboardHandler) List(c *gin.Context) {
	records, err := h.storyboards.List(c.Request.Context(), nil, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": gin.H{"message": "listing failed"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "storyboards": records})
}

func statusFor(err *apierr.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Code {
	case apierr.CodeValidationFailed, apierr.CodeDensityFailed, apierr.CodeLowInteractionDensity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
