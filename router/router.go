package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/config"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/handlers"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/middleware"
)

// Dependencies holds everything required for setting up routes.
type Dependencies struct {
	Config        *config.Config
	HealthHandler *handlers.HealthHandler
	Logger        *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and metrics routes (no auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/health/checks/:name", deps.HealthHandler.SingleCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
