// infrastructure/router.go
package infrastructure

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// NewRouter wires the HTTP surface. maxUploadBytes caps the request body of
// uploads; zero disables the cap.
func NewRouter(h *VideoHandlers, health *HealthHandler, metrics *Metrics, logger hclog.Logger, maxUploadBytes int64) *gin.Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	router := gin.New()
	router.Use(RequestLogger(logger), Recovery(logger))

	if health != nil {
		router.GET("/health", health.Handle)
	}
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	videos := router.Group("/videos")
	{
		videos.POST("/upload", LimitBody(maxUploadBytes), h.UploadVideoHandler)
		videos.GET("/:id", h.GetVideoHandler)
		videos.DELETE("/:filename", h.DeleteVideoHandler)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "No handler found for " + c.Request.Method + " " + c.Request.URL.Path})
	})
	return router
}

// LimitBody rejects request bodies larger than n bytes once they are read.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// RequestLogger logs one line per request through hclog.
func RequestLogger(logger hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		args := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			logger.Warn("request", args...)
			return
		}
		logger.Debug("request", args...)
	}
}

// Recovery turns a panic into a generic 500 and logs the panic value.
func Recovery(logger hclog.Logger) gin.HandlerFunc {
	errWriter := logger.StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})
	return gin.CustomRecoveryWithWriter(errWriter, func(c *gin.Context, recovered any) {
		logger.Error("panic while handling request", "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: msgInternalError})
	})
}
