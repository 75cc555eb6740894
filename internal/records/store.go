// Package records persists FileRecord metadata. The core treats the store as
// an abstract collaborator: insert, point lookup, filtered/paginated query,
// in-place update and bulk delete. Two implementations exist, PostgreSQL for
// production and an in-memory map for tests and single-binary use.
package records

import (
	"context"
	"time"

	"github.com/harborfs/file-manager/internal/models"
)

// Store is the contract every metadata persistence implementation satisfies.
type Store interface {
	// Create inserts a new record and stamps CreatedAt/UpdatedAt.
	Create(ctx context.Context, rec *models.FileRecord) error
	// FindByID returns the record with the given id inside the given
	// namespace, or errs.KindNotFound.
	FindByID(ctx context.Context, id, namespace string) (models.FileRecord, error)
	// FindAndCount runs a filtered, paginated query ordered newest-created
	// first and returns the page plus the total match count.
	FindAndCount(ctx context.Context, q Query) ([]models.FileRecord, int64, error)
	// Save updates a record in place by id and bumps UpdatedAt.
	Save(ctx context.Context, rec *models.FileRecord) error
	// DestroyByIDs deletes all records matching the ids within the
	// namespace. Unknown ids are ignored, not reported.
	DestroyByIDs(ctx context.Context, ids []string, namespace string) error
}

// SizeRange bounds a record's size in kilobytes. Both bounds are strict and
// either may be nil.
type SizeRange struct {
	MinKB *int64
	MaxKB *int64
}

// TimeRange bounds a timestamp column. Either bound may be nil.
type TimeRange struct {
	StartTime *time.Time
	EndTime   *time.Time
}

// ListFilter is the caller-supplied query filter. All fields are optional
// and combine with logical AND.
type ListFilter struct {
	ID        string // exact match
	Filename  string // substring match
	Namespace string // substring match, unless overridden by Query.Namespace
	Size      *SizeRange
	CreatedAt *TimeRange
	UpdatedAt *TimeRange
}

// Query is one FindAndCount request. A non-empty Namespace overrides the
// filter's namespace substring with an exact match.
type Query struct {
	Filter    ListFilter
	Namespace string
	Offset    int
	Limit     int
}
