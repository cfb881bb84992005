package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/errors"
	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/logger"
)

// ErrorResponse is the JSON body returned for handler errors.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler recovers from panics and converts errors attached to the gin
// context into structured JSON responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log := logger.GetLogger()
				log.Errorw("Panic recovered in request handler",
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Type:    string(errors.ServerError),
					Message: "Internal server error",
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log := logger.GetLogger()
		log.Errorw("Request failed",
			"error", err,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"client_ip", c.ClientIP(),
		)

		if appError, ok := err.(*errors.AppError); ok {
			c.JSON(appError.GetHTTPStatus(), ErrorResponse{
				Type:    string(appError.Type),
				Message: appError.Message,
				Details: appError.Detail,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Type:    string(errors.ServerError),
			Message: "Internal server error",
		})
	}
}
