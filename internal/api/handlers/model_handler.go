package handlers

import (
	"net/http"

	"github.com/andresuchdata/demandcast/internal/mlclient"
	"github.com/andresuchdata/demandcast/internal/registry"
	"github.com/gin-gonic/gin"
)

// ModelHandler surfaces the prediction service's own metadata plus the
// local model version registry.
type ModelHandler struct {
	client   *mlclient.Client
	registry *registry.Registry
}

func NewModelHandler(client *mlclient.Client, modelRegistry *registry.Registry) *ModelHandler {
	return &ModelHandler{client: client, registry: modelRegistry}
}

func (h *ModelHandler) Health(c *gin.Context) {
	if h.client.Healthy(c.Request.Context()) {
		c.JSON(http.StatusOK, gin.H{"mlApi": "UP", "status": "ok"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"mlApi": "DOWN", "status": "degraded"})
}

func (h *ModelHandler) ModelInfo(c *gin.Context) {
	info, err := h.client.ModelInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *ModelHandler) FeatureImportance(c *gin.Context) {
	importances, err := h.client.FeatureImportance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, importances)
}

func (h *ModelHandler) ActiveModel(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.GetActive(c.Request.Context()))
}

func (h *ModelHandler) ActivateModel(c *gin.Context) {
	version, err := h.registry.Activate(c.Param("version"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, version)
}
