// routes.go - API route registration
package api

import "github.com/labstack/echo/v4"

// RegisterRoutes wires all API endpoints onto the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", h.HandleHealth)

	// Ingestion
	apiGroup.POST("/upload", h.HandleUploadLog)
	apiGroup.GET("/files/recent", h.HandleRecentFiles)
	apiGroup.GET("/files/:id", h.HandleGetFile)
	apiGroup.DELETE("/files/:id", h.HandleDeleteFile)

	// Queries
	apiGroup.GET("/logs", h.HandleGetLogs)
	apiGroup.GET("/logs/msgpack", h.HandleGetLogsMsgpack)
	apiGroup.GET("/timeline", h.HandleGetTimeline)
	apiGroup.GET("/filter-options", h.HandleGetFilterOptions)

	// Session lifecycle
	apiGroup.GET("/sessions/:sessionId/status", h.HandleSessionStatus)
	apiGroup.POST("/sessions/:sessionId/keepalive", h.HandleSessionKeepAlive)
}
