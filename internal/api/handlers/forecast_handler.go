package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/jobs"
	"github.com/andresuchdata/demandcast/internal/requestid"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ForecastHandler struct {
	service *service.ForecastService
	jobs    *jobs.Manager
}

func NewForecastHandler(forecastService *service.ForecastService, jobManager *jobs.Manager) *ForecastHandler {
	return &ForecastHandler{service: forecastService, jobs: jobManager}
}

func (h *ForecastHandler) Forecast(c *gin.Context) {
	var input domain.ForecastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.service.Forecast(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *ForecastHandler) ForecastBatch(c *gin.Context) {
	var inputs []domain.ForecastInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		respondBindError(c, err)
		return
	}

	records, err := h.service.ForecastBatch(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, records)
}

// ForecastAsync hands the batch to the job manager and returns a job id
// the caller can poll.
func (h *ForecastHandler) ForecastAsync(c *gin.Context) {
	var inputs []domain.ForecastInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		respondBindError(c, err)
		return
	}

	reqID := requestid.FromContext(c.Request.Context())
	jobID := h.jobs.Submit("forecast-batch", func(ctx context.Context, _ string, progress func(int, string)) (any, error) {
		progress(0, "predicting")
		records, err := h.service.ForecastBatch(requestid.WithContext(ctx, reqID), inputs)
		if err != nil {
			return nil, err
		}
		return records, nil
	})

	c.JSON(http.StatusAccepted, gin.H{"jobId": jobID, "status": jobs.StatusQueued})
}

func (h *ForecastHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.service.History(c.Request.Context(),
		strings.TrimSpace(c.Query("category")), strings.TrimSpace(c.Query("region")), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ForecastHandler) RecordActual(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prediction id"})
		return
	}

	actual, err := strconv.ParseFloat(c.Query("actualDemand"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actualDemand must be a number"})
		return
	}

	record, err := h.service.RecordActual(c.Request.Context(), id, actual)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ForecastHandler) Accuracy(c *gin.Context) {
	filter, err := parseRecordFilter(c, "fromDate", "toDate")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.Accuracy(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// PerformanceMetrics is the accuracy report under its dashboard alias,
// with shorter "from"/"to" query parameter names.
func (h *ForecastHandler) PerformanceMetrics(c *gin.Context) {
	filter, err := parseRecordFilter(c, "from", "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.Accuracy(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func parseRecordFilter(c *gin.Context, fromParam, toParam string) (domain.RecordFilter, error) {
	filter := domain.RecordFilter{}

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filter.Category = &category
	}
	if region := strings.TrimSpace(c.Query("region")); region != "" {
		filter.Region = &region
	}

	if raw := strings.TrimSpace(c.Query(fromParam)); raw != "" {
		from, err := domain.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(c.Query(toParam)); raw != "" {
		to, err := domain.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}

	return filter, nil
}
