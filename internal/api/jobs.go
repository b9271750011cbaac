package api

import (
	"log"
	"net/http"
	"time"

	"voicecounsel/internal/model"
	"voicecounsel/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	uploadURLTTL   = 10 * time.Minute
	downloadURLTTL = time.Hour
)

// UploadURLRequest is the body of POST /upload-url.
type UploadURLRequest struct {
	FileName string `json:"fileName" binding:"required"`
	JobID    string `json:"jobId" binding:"required"`
}

// createUploadURL mints a signed upload URL and creates the job record
// in pending state. The record exists before the client can upload, so
// a status query for an id the client already holds never 404s.
func (h *Handler) createUploadURL(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "fileName and jobId are required")
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid jobId format")
		return
	}

	now := time.Now().UTC()
	storageKey := utils.StorageKey(jobID.String(), req.FileName, now)

	job := &model.Job{
		ID:         jobID,
		Status:     model.StatusPending,
		FileName:   utils.SanitizeFileName(req.FileName) + utils.SafeExtension(req.FileName),
		StorageKey: storageKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.jobs.Create(c.Request.Context(), job); err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	signed, err := h.store.IssueUploadURL(c.Request.Context(), storageKey, uploadURLTTL)
	if err != nil {
		log.Printf("[Upload] Failed to issue upload URL for job %s: %v", jobID, err)
		utils.Error(c, http.StatusInternalServerError, "failed to generate upload URL")
		return
	}

	log.Printf("[Upload] Job %s created (key: %s)", jobID, storageKey)
	utils.Success(c, gin.H{
		"url":   signed.URL,
		"token": signed.Token,
		"path":  signed.Path,
	})
}

// startJob kicks off the processing pipeline for an uploaded job.
func (h *Handler) startJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid job id format")
		return
	}

	if err := h.controller.Start(c.Request.Context(), jobID); err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	utils.Success(c, gin.H{
		"success": true,
		"jobId":   jobID.String(),
	})
}

// getJob returns the job projection for the polling client. Download
// URLs for the generated documents are minted per request and expire
// after an hour; they are never stored.
func (h *Handler) getJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid job id format")
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	data := gin.H{
		"id":        job.ID.String(),
		"status":    job.Status,
		"fileName":  job.FileName,
		"createdAt": job.CreatedAt,
		"updatedAt": job.UpdatedAt,
	}
	if job.Transcription != nil {
		data["transcription"] = *job.Transcription
	}
	if job.ServiceEvaluation != nil {
		data["serviceEvaluation"] = *job.ServiceEvaluation
	}
	if job.CustomerConcerns != nil {
		data["customerConcerns"] = *job.CustomerConcerns
	}
	if job.ErrorMessage != nil {
		data["error"] = *job.ErrorMessage
	}

	if job.Status == model.StatusCompleted {
		if job.CheckMdKey != nil {
			if url, err := h.store.IssueDownloadURL(c.Request.Context(), *job.CheckMdKey, downloadURLTTL); err == nil {
				data["checkMdUrl"] = url
			} else {
				log.Printf("[Status] Failed to sign download URL for job %s: %v", jobID, err)
			}
		}
		if job.PainMdKey != nil {
			if url, err := h.store.IssueDownloadURL(c.Request.Context(), *job.PainMdKey, downloadURLTTL); err == nil {
				data["painMdUrl"] = url
			} else {
				log.Printf("[Status] Failed to sign download URL for job %s: %v", jobID, err)
			}
		}
	}

	utils.Success(c, data)
}
