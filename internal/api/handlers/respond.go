package handlers

import (
	"net/http"

	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps a fault kind to its HTTP status in one place.
// Anything that is not a known fault is a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch faults.KindOf(err) {
	case faults.InputValidation:
		status = http.StatusBadRequest
	case faults.NotFound:
		status = http.StatusNotFound
	case faults.ProviderRejected:
		status = http.StatusBadGateway
	case faults.ProviderUnavailable:
		status = http.StatusServiceUnavailable
	}

	log.Error().Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request binding failed")
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}
