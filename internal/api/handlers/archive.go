package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harborfs/file-manager/internal/services"
)

// Compress bundles the blobs of the given ids into one archive and streams
// it to the client. Query parameters: ids (comma-separated), type
// ("zip" or "tar.gz"), namespace.
func (h *FileHandler) Compress(c *gin.Context) {
	ids := splitIDs(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no ids provided"})
		return
	}
	format, err := services.ParseArchiveFormat(c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", `attachment; filename="archive.`+string(format)+`"`)
	if err := h.Service.GetCompressFileStream(c.Request.Context(), ids, c.Query("namespace"), format, c.Writer); err != nil {
		// headers may already be out; nothing to do but abort the stream
		c.Abort()
		_ = c.Error(err)
	}
}

type uncompressPayload struct {
	Type      string `json:"type"`
	Namespace string `json:"namespace"`
	Pattern   string `json:"pattern"`
}

// Uncompress expands an archive record back into individually stored files.
func (h *FileHandler) Uncompress(c *gin.Context) {
	var payload uncompressPayload
	if err := c.ShouldBindJSON(&payload); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	format, err := services.ParseArchiveFormat(payload.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.Service.UncompressFile(c.Request.Context(), c.Param("id"), payload.Namespace, format, payload.Pattern)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
