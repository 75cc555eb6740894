// Package handlers exposes the file-manager service surface over gin.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/services"
)

// FileHandler holds the injected collaborators every route needs.
type FileHandler struct {
	Service *services.FileService
	Scanner *services.Scanner
}

func NewFileHandler(svc *services.FileService, scanner *services.Scanner) *FileHandler {
	return &FileHandler{Service: svc, Scanner: scanner}
}

func (h *FileHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps the core's error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var e *errs.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case errs.KindNotFound:
			status = http.StatusNotFound
		case errs.KindValidation:
			status = http.StatusBadRequest
		case errs.KindBackendMisconfigured:
			status = http.StatusNotImplemented
		case errs.KindDownloadFailed:
			status = http.StatusBadGateway
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
