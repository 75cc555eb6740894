package services

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
	"github.com/harborfs/file-manager/internal/storage"
)

// UploadRequest parameterizes an upload. A non-empty ID turns the upload
// into a replace: the existing record keeps its id and takes the new
// content, name and metadata.
type UploadRequest struct {
	ID        string
	Namespace string
	Options   map[string]string
}

// UploadToFileSystem streams the source to staging while hashing it, commits
// the staged bytes to the configured backend under the content-addressed
// key, then inserts or updates the metadata record. Superseded blobs at old
// keys are left in place; content-addressed keys may be shared between
// records, so the core never garbage-collects them.
func (s *FileService) UploadToFileSystem(ctx context.Context, src FileSource, req UploadRequest) (models.FileRecord, error) {
	if src == nil {
		return models.FileRecord{}, errs.Validation("no file provided")
	}
	if src.Filename() == "" {
		return models.FileRecord{}, errs.Validation("uploaded file has no filename")
	}

	staged, err := stageAndHash(src)
	if err != nil {
		return models.FileRecord{}, errs.IO("failed to stage upload", err)
	}
	defer removeTemp(staged.Path)

	key := staged.Digest + filepath.Ext(src.Filename())
	backend := s.writeBackend()

	if err := s.commitStaged(ctx, backend, key, staged, contentTypeFor(src)); err != nil {
		return models.FileRecord{}, errs.IO(fmt.Sprintf("failed to store blob %s", key), err)
	}

	ns := s.resolveNamespace(req.Namespace)
	var rec models.FileRecord
	if req.ID == "" {
		rec = models.FileRecord{
			ID:          uuid.New().String(),
			Filename:    src.Filename(),
			ContentHash: staged.Digest,
			Size:        staged.Size,
			Encoding:    src.Encoding(),
			Mimetype:    src.Mimetype(),
			Namespace:   ns,
			StorageType: backend.Kind(),
			Options:     req.Options,
		}
		if err := s.records.Create(ctx, &rec); err != nil {
			return models.FileRecord{}, err
		}
	} else {
		rec, err = s.records.FindByID(ctx, req.ID, ns)
		if err != nil {
			return models.FileRecord{}, err
		}
		rec.Filename = src.Filename()
		rec.ContentHash = staged.Digest
		rec.Size = staged.Size
		rec.Encoding = src.Encoding()
		rec.Mimetype = src.Mimetype()
		rec.StorageType = backend.Kind()
		if req.Options != nil {
			rec.Options = req.Options
		}
		// Last committed update wins; concurrent replaces of the same id
		// are not serialized here.
		if err := s.records.Save(ctx, &rec); err != nil {
			return models.FileRecord{}, err
		}
	}

	s.publish("files.uploaded", map[string]interface{}{
		"action":      "uploaded",
		"file_id":     rec.ID,
		"storage_key": rec.StorageKey(),
		"size":        rec.Size,
		"namespace":   rec.Namespace,
		"uploaded_at": rec.UpdatedAt.UTC().Format(time.RFC3339),
	})

	return rec, nil
}

// commitStaged pushes the staging file through the backend's streaming
// write.
func (s *FileService) commitStaged(ctx context.Context, backend storage.Backend, key string, staged *stagedUpload, contentType string) error {
	f, err := os.Open(staged.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return backend.Put(ctx, key, f, staged.Size, contentType)
}

func contentTypeFor(src FileSource) string {
	if ct := src.Mimetype(); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(src.Filename())); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *FileService) publish(subject string, event map[string]interface{}) {
	if err := s.events.Publish(subject, event); err != nil {
		log.Printf("[NATS] warning: failed to publish %s event: %v", subject, err)
	}
}
