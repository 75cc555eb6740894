package services

import (
	"context"
	"time"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
)

// DeleteFiles removes the metadata records for the given ids. Unknown ids
// are skipped silently; the batch never fails for one missing member. The
// physical blobs stay behind: content-addressed keys may still be referenced
// by other records.
func (s *FileService) DeleteFiles(ctx context.Context, ids []string, namespace string) error {
	if len(ids) == 0 {
		return errs.Validation("no ids provided")
	}
	ns := s.resolveNamespace(namespace)
	if err := s.records.DestroyByIDs(ctx, ids, ns); err != nil {
		return err
	}

	s.publish("files.deleted", map[string]interface{}{
		"action":     "deleted",
		"file_ids":   ids,
		"namespace":  ns,
		"deleted_at": time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// RenameFile updates the user-facing filename only; hash, size and blob are
// untouched.
func (s *FileService) RenameFile(ctx context.Context, id, namespace, filename string) (models.FileRecord, error) {
	if filename == "" {
		return models.FileRecord{}, errs.Validation("no filename provided")
	}
	rec, err := s.records.FindByID(ctx, id, s.resolveNamespace(namespace))
	if err != nil {
		return models.FileRecord{}, err
	}
	rec.Filename = filename
	if err := s.records.Save(ctx, &rec); err != nil {
		return models.FileRecord{}, err
	}
	return rec, nil
}
