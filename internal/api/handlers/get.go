package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetFileURL resolves the externally addressable locator for a record.
func (h *FileHandler) GetFileURL(c *gin.Context) {
	url, err := h.Service.GetFileURL(c.Request.Context(), c.Param("id"), c.Query("namespace"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GetFileInfo returns the record plus its serving handle: the physical path
// for local blobs, or the blob bytes directly for remote ones.
func (h *FileHandler) GetFileInfo(c *gin.Context) {
	info, err := h.Service.GetFileInfo(c.Request.Context(), c.Param("id"), c.Query("namespace"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file":             info.Record,
		"target_file_name": info.Record.StorageKey(),
	})
}

// Download streams the blob to the client under its original filename.
func (h *FileHandler) Download(c *gin.Context) {
	rec, rc, err := h.Service.GetFileStream(c.Request.Context(), c.Param("id"), c.Query("namespace"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := rec.Mimetype
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, rec.Size, contentType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + rec.Filename + `"`,
	})
}

// ServeBlob serves a locally stored blob by its storage key; this is the
// route local file URLs point at.
func (h *FileHandler) ServeBlob(c *gin.Context) {
	path, err := h.Service.LocalBlobPath(c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	if filename := c.Query("filename"); filename != "" {
		c.FileAttachment(path, filename)
		return
	}
	c.File(path)
}
