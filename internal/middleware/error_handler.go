package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/Ayush3323/crm-backend/internal/apierror"
	"github.com/Ayush3323/crm-backend/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const msgInternal = "Internal server error"

// ErrorHandler renders the last error a handler attached with c.Error into the
// response envelope. Errors that are not *apierror.Error are logged and shown
// as a generic 500; stack traces and internals are never exposed.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *apierror.Error
		if errors.As(err, &apiErr) {
			c.AbortWithStatusJSON(apiErr.Kind.Status(), dto.Envelope{
				Success: false,
				Message: apiErr.Message,
				Fields:  apiErr.Fields,
			})
			return
		}

		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err).
			Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Envelope{Success: false, Message: msgInternal})
	}
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Envelope{Success: false, Message: msgInternal})
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, and request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		if caller := GetCaller(c); caller != nil {
			ev = ev.Uint("user_id", caller.ID)
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// NoRoute answers unknown routes with the standard envelope.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.Envelope{Success: false, Message: "Route not found"})
}
