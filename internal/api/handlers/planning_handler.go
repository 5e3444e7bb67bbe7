package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/gin-gonic/gin"
)

type PlanningHandler struct {
	service *service.PlanningService
}

func NewPlanningHandler(planningService *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{service: planningService}
}

func (h *PlanningHandler) Replenishment(c *gin.Context) {
	var req domain.ReplenishmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	plan, err := h.service.Replenishment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanningHandler) PurchasePlan(c *gin.Context) {
	var req domain.PurchasePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	plan, err := h.service.PurchasePlan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanningHandler) Exceptions(c *gin.Context) {
	params := domain.ExceptionScanParams{
		StockoutCoverageDays:  service.DefaultStockoutCoverageDays,
		OverstockCoverageDays: service.DefaultOverstockCoverageDays,
		Limit:                 service.DefaultExceptionLimit,
	}

	if raw := strings.TrimSpace(c.Query("fromDate")); raw != "" {
		from, err := domain.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.From = from
	}
	if raw := strings.TrimSpace(c.Query("toDate")); raw != "" {
		to, err := domain.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		params.To = to
	}

	if v, err := strconv.Atoi(c.DefaultQuery("stockoutCoverageDays", strconv.Itoa(params.StockoutCoverageDays))); err == nil {
		params.StockoutCoverageDays = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("overstockCoverageDays", strconv.Itoa(params.OverstockCoverageDays))); err == nil {
		params.OverstockCoverageDays = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(params.Limit))); err == nil {
		params.Limit = v
	}

	report, err := h.service.DetectExceptions(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
