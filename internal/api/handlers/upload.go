package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborfs/file-manager/internal/services"
)

const maxUploadSize = 200 << 20 // per file

// UploadResult is the per-file result object returned to the client.
type UploadResult struct {
	Success bool        `json:"success"`
	File    interface{} `json:"file,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Upload accepts one or many multipart files. Form fields: "files" (or
// "file"), optional "id" for replace semantics (single file only),
// "namespace".
func (h *FileHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		// fallback: maybe a single file
		if f, ferr := c.FormFile("file"); ferr == nil && f != nil {
			form = &multipart.Form{
				File: map[string][]*multipart.FileHeader{"file": {f}},
			}
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse multipart form: " + err.Error()})
			return
		}
	}

	var files []*multipart.FileHeader
	if fs, found := form.File["files"]; found && len(fs) > 0 {
		files = fs
	}
	if len(files) == 0 {
		if f, found := form.File["file"]; found && len(f) > 0 {
			files = f
		}
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	replaceID := c.PostForm("id")
	if replaceID != "" && len(files) > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "replace accepts exactly one file"})
		return
	}
	namespace := c.PostForm("namespace")

	for _, fh := range files {
		if fh.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large: " + fh.Filename})
			return
		}
	}

	results := make([]UploadResult, 0, len(files))
	for _, fh := range files {
		rec, err := h.Service.UploadToFileSystem(c.Request.Context(), services.NewMultipartSource(fh), services.UploadRequest{
			ID:        replaceID,
			Namespace: namespace,
		})
		if err != nil {
			results = append(results, UploadResult{Success: false, Error: err.Error()})
			continue
		}
		results = append(results, UploadResult{Success: true, File: rec})
		if h.Scanner != nil {
			go h.Scanner.ScanRecord(context.Background(), rec)
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

type urlUploadPayload struct {
	ID        string            `json:"id"`
	URL       string            `json:"url" binding:"required"`
	Filename  string            `json:"filename"`
	Namespace string            `json:"namespace"`
	Options   map[string]string `json:"options"`
}

// UploadFromURL ingests a remote resource through the same upload path.
func (h *FileHandler) UploadFromURL(c *gin.Context) {
	var payload urlUploadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rec, err := h.Service.UploadFromURL(c.Request.Context(), services.URLUploadRequest{
		ID:        payload.ID,
		URL:       payload.URL,
		Filename:  payload.Filename,
		Namespace: payload.Namespace,
		Options:   payload.Options,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if h.Scanner != nil {
		go h.Scanner.ScanRecord(context.Background(), rec)
	}
	c.JSON(http.StatusOK, gin.H{"file": rec})
}
