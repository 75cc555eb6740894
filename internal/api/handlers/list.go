package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harborfs/file-manager/internal/records"
	"github.com/harborfs/file-manager/internal/services"
)

type timeRangePayload struct {
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type listFilterPayload struct {
	ID        string            `json:"id"`
	Filename  string            `json:"filename"`
	Namespace string            `json:"namespace"`
	Size      []*int64          `json:"size"` // [minKB, maxKB], either may be null
	CreatedAt *timeRangePayload `json:"createdAt"`
	UpdatedAt *timeRangePayload `json:"updatedAt"`
}

type listPayload struct {
	Filter      listFilterPayload `json:"filter"`
	Namespace   string            `json:"namespace"`
	CurrentPage int               `json:"currentPage"`
	PerPage     int               `json:"perPage"`
}

// List runs a filtered, paginated query over the record store.
func (h *FileHandler) List(c *gin.Context) {
	var payload listPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	page, err := h.Service.GetFileList(c.Request.Context(), services.ListRequest{
		Filter:      toListFilter(payload.Filter),
		Namespace:   payload.Namespace,
		CurrentPage: payload.CurrentPage,
		PerPage:     payload.PerPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page_data":   page.PageData,
		"total_count": page.TotalCount,
	})
}

func toListFilter(p listFilterPayload) records.ListFilter {
	f := records.ListFilter{
		ID:        p.ID,
		Filename:  p.Filename,
		Namespace: p.Namespace,
	}
	if len(p.Size) > 0 {
		r := &records.SizeRange{}
		r.MinKB = p.Size[0]
		if len(p.Size) > 1 {
			r.MaxKB = p.Size[1]
		}
		f.Size = r
	}
	if p.CreatedAt != nil {
		f.CreatedAt = &records.TimeRange{StartTime: p.CreatedAt.StartTime, EndTime: p.CreatedAt.EndTime}
	}
	if p.UpdatedAt != nil {
		f.UpdatedAt = &records.TimeRange{StartTime: p.UpdatedAt.StartTime, EndTime: p.UpdatedAt.EndTime}
	}
	return f
}
