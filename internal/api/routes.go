package api

import (
	"github.com/gin-gonic/gin"

	"github.com/harborfs/file-manager/internal/api/handlers"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

// RegisterRoutes wires the file-manager surface. auth may be nil when no
// OIDC issuer is configured.
func RegisterRoutes(r *gin.Engine, h *handlers.FileHandler, auth gin.HandlerFunc) {
	r.Use(corsMiddleware())

	// Local blob serving route; file URLs produced for local records
	// point here.
	r.GET("/file/:key", h.ServeBlob)

	api := r.Group("/api")
	api.GET("/health", h.HealthCheck)
	if auth != nil {
		api.Use(auth)
	}
	{
		api.POST("/files/upload", h.Upload)
		api.POST("/files/upload-url", h.UploadFromURL)
		api.POST("/files/list", h.List)
		api.DELETE("/files", h.Delete)
		api.GET("/files/compress", h.Compress)

		api.GET("/files/:id/url", h.GetFileURL)
		api.GET("/files/:id/info", h.GetFileInfo)
		api.GET("/files/:id/download", h.Download)
		api.PATCH("/files/:id/rename", h.Rename)
		api.POST("/files/:id/uncompress", h.Uncompress)
	}
}
