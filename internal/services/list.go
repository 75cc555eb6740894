package services

import (
	"context"

	"github.com/harborfs/file-manager/internal/models"
	"github.com/harborfs/file-manager/internal/records"
)

// ListRequest is one page request over the record store. CurrentPage is
// 1-indexed.
type ListRequest struct {
	Filter      records.ListFilter
	Namespace   string
	CurrentPage int
	PerPage     int
}

// GetFileList translates the filter into a record store query and returns
// the page plus the total match count, ordered newest-created first.
func (s *FileService) GetFileList(ctx context.Context, req ListRequest) (models.FilePage, error) {
	page := req.CurrentPage
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	q := records.Query{
		Filter:    req.Filter,
		Namespace: req.Namespace,
		Offset:    perPage * (page - 1),
		Limit:     perPage,
	}
	// Without any namespace constraint, listings stay scoped to the
	// configured default partition.
	if q.Namespace == "" && q.Filter.Namespace == "" {
		q.Namespace = s.namespace
	}

	items, total, err := s.records.FindAndCount(ctx, q)
	if err != nil {
		return models.FilePage{}, err
	}
	if items == nil {
		items = []models.FileRecord{}
	}
	return models.FilePage{PageData: items, TotalCount: total}, nil
}
