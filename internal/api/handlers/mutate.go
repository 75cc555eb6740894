package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type deletePayload struct {
	IDs       []string `json:"ids" binding:"required"`
	Namespace string   `json:"namespace"`
}

// Delete removes records by id. Missing ids are tolerated; the batch
// succeeds for whatever it matched.
func (h *FileHandler) Delete(c *gin.Context) {
	var payload deletePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := h.Service.DeleteFiles(c.Request.Context(), payload.IDs, payload.Namespace); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": payload.IDs})
}

type renamePayload struct {
	Filename  string `json:"filename" binding:"required"`
	Namespace string `json:"namespace"`
}

// Rename changes a record's user-facing filename.
func (h *FileHandler) Rename(c *gin.Context) {
	var payload renamePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	rec, err := h.Service.RenameFile(c.Request.Context(), c.Param("id"), payload.Namespace, payload.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": rec})
}
