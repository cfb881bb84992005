package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/errors"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/services"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/types"
)

type HealthHandler struct {
	healthService *services.HealthService
}

func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// LivenessCheck handles kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck handles kubernetes readiness probe
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	report, err := h.healthService.CheckAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !report.Healthy {
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DetailedHealth returns the full health report regardless of outcome.
// Infrastructure decides routing policy from the readiness endpoint; this
// one is for humans and dashboards.
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	report, err := h.healthService.CheckAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// SingleCheck runs one named probe for diagnostics.
func (h *HealthHandler) SingleCheck(c *gin.Context) {
	name := types.CheckName(c.Param("name"))
	if !types.IsKnownCheck(name) {
		appErr := errors.UnknownCheck(string(name))
		c.JSON(appErr.GetHTTPStatus(), appErr)
		return
	}

	report, err := h.healthService.CheckAll(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := report.Checks[name]
	status := http.StatusOK
	if !result.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
