package api

import (
	"log"
	"net/http"
	"strings"

	"voicecounsel/internal/model"
	"voicecounsel/internal/utils"

	"github.com/gin-gonic/gin"
)

// getPrompts returns the active prompt templates. Absent templates are
// omitted; the pipeline substitutes built-in defaults at run time.
func (h *Handler) getPrompts(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context(), model.ScopePrompt)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	data := gin.H{}
	for _, s := range settings {
		if s.IsActive {
			data[s.Key] = s.Value
		}
	}
	utils.Success(c, data)
}

// UpdatePromptsRequest is the body of PUT /settings/prompts.
type UpdatePromptsRequest struct {
	ServiceEvaluation string `json:"service_evaluation"`
	CustomerConcerns  string `json:"customer_concerns"`
}

// updatePrompts upserts one or both prompt templates.
func (h *Handler) updatePrompts(c *gin.Context) {
	var req UpdatePromptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ServiceEvaluation == "" && req.CustomerConcerns == "" {
		utils.Error(c, http.StatusBadRequest, "at least one prompt must be provided")
		return
	}

	upsert := func(key, value string) bool {
		if value == "" {
			return true
		}
		err := h.settings.Upsert(c.Request.Context(), &model.Setting{
			Scope:    model.ScopePrompt,
			Key:      key,
			Value:    value,
			IsActive: true,
		})
		if err != nil {
			utils.ErrorFrom(c, err)
			return false
		}
		return true
	}

	if !upsert(model.PromptServiceEvaluation, req.ServiceEvaluation) {
		return
	}
	if !upsert(model.PromptCustomerConcerns, req.CustomerConcerns) {
		return
	}

	log.Printf("[Settings] Prompt templates updated")
	utils.Success(c, gin.H{"updated": true})
}

// getAPIKeys lists the configured API keys. Values are masked; the
// full key is never echoed back.
func (h *Handler) getAPIKeys(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context(), model.ScopeAPIKey)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	items := make([]gin.H, 0, len(settings))
	for _, s := range settings {
		items = append(items, gin.H{
			"name":       s.Key,
			"apiKey":     maskKey(s.Value),
			"isActive":   s.IsActive,
			"updated_at": s.UpdatedAt,
		})
	}
	utils.Success(c, gin.H{"items": items})
}

// UpdateAPIKeyRequest is the body of PUT /settings/api-keys.
type UpdateAPIKeyRequest struct {
	Name     string  `json:"name" binding:"required"`
	APIKey   *string `json:"apiKey"`
	IsActive *bool   `json:"isActive"`
}

var knownServices = map[string]bool{
	model.ServiceOpenAI:    true,
	model.ServiceGemini:    true,
	model.ServiceGoogleSTT: true,
}

// updateAPIKey creates or partially updates one API key row.
func (h *Handler) updateAPIKey(c *gin.Context) {
	var req UpdateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "name is required")
		return
	}
	if !knownServices[req.Name] {
		utils.Error(c, http.StatusBadRequest, "unknown service name. Supported: openai, gemini, google_stt")
		return
	}
	if req.APIKey == nil && req.IsActive == nil {
		utils.Error(c, http.StatusBadRequest, "no fields to update")
		return
	}

	// Merge with the current row so a flag flip does not clear the key.
	setting := model.Setting{
		Scope:    model.ScopeAPIKey,
		Key:      req.Name,
		IsActive: true,
	}
	existing, err := h.settings.List(c.Request.Context(), model.ScopeAPIKey)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	for _, s := range existing {
		if s.Key == req.Name {
			setting.Value = s.Value
			setting.IsActive = s.IsActive
			break
		}
	}

	if req.APIKey != nil {
		setting.Value = *req.APIKey
	}
	if req.IsActive != nil {
		setting.IsActive = *req.IsActive
	}
	if setting.Value == "" {
		utils.Error(c, http.StatusBadRequest, "apiKey is required for a new service entry")
		return
	}

	if err := h.settings.Upsert(c.Request.Context(), &setting); err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	log.Printf("[Settings] API key updated: %s (active: %t)", req.Name, setting.IsActive)
	utils.Success(c, gin.H{
		"name":     setting.Key,
		"apiKey":   maskKey(setting.Value),
		"isActive": setting.IsActive,
	})
}

// maskKey hides all but the last four characters of a secret.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
