// Package api exposes the REST surface: upload intake, job start and
// status, admin settings, and the pending-job sweeper.
package api

import (
	"voicecounsel/internal/config"
	"voicecounsel/internal/objectstore"
	"voicecounsel/internal/pipeline"
	"voicecounsel/internal/repository"
	"voicecounsel/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler bundles the dependencies shared by the route handlers.
type Handler struct {
	cfg        *config.Config
	jobs       repository.JobRepository
	settings   repository.SettingRepository
	store      objectstore.Store
	controller *pipeline.Controller
}

// NewHandler creates the route handler set.
func NewHandler(
	cfg *config.Config,
	jobs repository.JobRepository,
	settings repository.SettingRepository,
	store objectstore.Store,
	controller *pipeline.Controller,
) *Handler {
	return &Handler{
		cfg:        cfg,
		jobs:       jobs,
		settings:   settings,
		store:      store,
		controller: controller,
	}
}

// RegisterRoutes registers all routes on the engine.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", h.healthCheck)

	// API v1
	v1 := r.Group("/api/v1")
	{
		v1.POST("/upload-url", h.createUploadURL)
		v1.POST("/jobs/:id/start", h.startJob)
		v1.GET("/jobs/:id", h.getJob)

		v1.POST("/auth/login", h.login)

		settings := v1.Group("/settings", h.requireAdmin())
		{
			settings.GET("/prompts", h.getPrompts)
			settings.PUT("/prompts", h.updatePrompts)
			settings.GET("/api-keys", h.getAPIKeys)
			settings.PUT("/api-keys", h.updateAPIKey)
		}

		v1.POST("/internal/process-pending", h.processPending)
	}
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "voicecounsel-backend",
	})
}
