package api

import (
	"crypto/subtle"
	"log"
	"net/http"

	"voicecounsel/internal/utils"

	"github.com/gin-gonic/gin"
)

// Batch size for one sweeper invocation.
const pendingBatchSize = 5

// processPending drains pending jobs whose start call never arrived.
// Guarded by a shared secret so only the scheduler can invoke it.
func (h *Handler) processPending(c *gin.Context) {
	if h.cfg.CronSecret == "" {
		utils.Error(c, http.StatusServiceUnavailable, "sweeper is not configured")
		return
	}

	expected := "Bearer " + h.cfg.CronSecret
	if subtle.ConstantTimeCompare([]byte(c.GetHeader("Authorization")), []byte(expected)) != 1 {
		utils.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	processed, err := h.controller.ProcessPending(c.Request.Context(), pendingBatchSize)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	ids := make([]string, 0, len(processed))
	for _, id := range processed {
		ids = append(ids, id.String())
	}

	log.Printf("[Sweeper] Processed %d pending jobs", len(ids))
	utils.Success(c, gin.H{
		"processed": ids,
		"count":     len(ids),
	})
}
