package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/internal/jobs"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InsightsHandler struct {
	service *service.InsightsService
	jobs    *jobs.Manager
}

func NewInsightsHandler(insightsService *service.InsightsService, jobManager *jobs.Manager) *InsightsHandler {
	return &InsightsHandler{service: insightsService, jobs: jobManager}
}

// SubmitBacktest validates the payload, hands the replay to the job
// manager, and archives the finished report under the job id.
func (h *InsightsHandler) SubmitBacktest(c *gin.Context) {
	var req domain.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	jobID := h.jobs.Submit("backtest", func(ctx context.Context, jobID string, progress func(int, string)) (any, error) {
		progress(0, "replaying records")
		report, err := h.service.Backtest(ctx, req)
		if err != nil {
			return nil, err
		}
		progress(90, "archiving report")
		h.service.ArchiveBacktest(ctx, jobID, report)
		return report, nil
	})

	c.JSON(http.StatusAccepted, gin.H{"jobId": jobID, "status": jobs.StatusQueued})
}

// GetJob reports job state. When the job has already been evicted, an
// archived backtest report still answers under its job id.
func (h *InsightsHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	job, err := h.jobs.Get(jobID)
	if err != nil {
		if faults.IsKind(err, faults.NotFound) {
			if report, archiveErr := h.service.ArchivedBacktest(c.Request.Context(), jobID); archiveErr == nil {
				c.JSON(http.StatusOK, gin.H{
					"jobId":  jobID,
					"status": jobs.StatusCompleted,
					"result": report,
				})
				return
			}
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *InsightsHandler) DriftSummary(c *gin.Context) {
	baselineDays, _ := strconv.Atoi(c.DefaultQuery("baselineDays", "0"))
	recentDays, _ := strconv.Atoi(c.DefaultQuery("recentDays", "0"))

	summary, err := h.service.Drift(c.Request.Context(), baselineDays, recentDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *InsightsHandler) Explain(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	explanation, err := h.service.Explain(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, explanation)
}

func (h *InsightsHandler) WhatIf(c *gin.Context) {
	var req domain.WhatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.service.WhatIf(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
