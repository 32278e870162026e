package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error kinds tell the client how to surface a failure.
const (
	KindValidation   = "validation"
	KindPrecondition = "precondition"
	KindTransient    = "transient"
	KindNotFound     = "not_found"
	KindInternal     = "internal"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
					Kind:    KindInternal,
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	JSONErrorKind(c, status, ErrorResponse{Message: message, Details: details})
}

// JSONErrorKind sends resp after logging it.
func JSONErrorKind(c *gin.Context, status int, resp ErrorResponse) {
	GetLogger().Warn(resp.Message,
		zap.String("details", resp.Details),
		zap.String("kind", resp.Kind),
		zap.Int("status", status),
	)
	c.AbortWithStatusJSON(status, resp)
}
