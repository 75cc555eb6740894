package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
	"github.com/harborfs/file-manager/internal/storage"
)

// GetFileURL returns the externally addressable locator for a record. Local
// blobs are verified to still exist before the path-style URL is returned;
// remote blobs delegate to the backend's locate capability.
func (s *FileService) GetFileURL(ctx context.Context, id, namespace string) (string, error) {
	rec, err := s.records.FindByID(ctx, id, s.resolveNamespace(namespace))
	if err != nil {
		return "", err
	}
	key := rec.StorageKey()

	if rec.StorageType == models.StorageRemote {
		if s.remote == nil {
			return "", errs.BackendMisconfigured("locate")
		}
		locator, ok := s.remote.(storage.Locator)
		if !ok {
			return "", errs.BackendMisconfigured("locate")
		}
		return locator.Locate(ctx, key, rec.Filename)
	}

	exists, err := s.local.Exists(ctx, key)
	if err != nil {
		return "", errs.IO(fmt.Sprintf("failed to stat blob %s", key), err)
	}
	if !exists {
		return "", errs.NotFoundKey(key)
	}
	return fmt.Sprintf("%s/file/%s?filename=%s", s.prefix, key, url.QueryEscape(rec.Filename)), nil
}

// GetFileInfo returns the record together with what the caller needs to
// serve it: the physical path for local blobs, or the eagerly downloaded
// bytes for remote ones.
func (s *FileService) GetFileInfo(ctx context.Context, id, namespace string) (models.FileInfo, error) {
	rec, err := s.records.FindByID(ctx, id, s.resolveNamespace(namespace))
	if err != nil {
		return models.FileInfo{}, err
	}
	key := rec.StorageKey()

	if rec.StorageType == models.StorageRemote {
		if s.remote == nil {
			return models.FileInfo{}, errs.BackendMisconfigured("download")
		}
		downloader, ok := s.remote.(storage.Downloader)
		if !ok {
			return models.FileInfo{}, errs.BackendMisconfigured("download")
		}
		blob, err := downloader.Download(ctx, key)
		if err != nil {
			return models.FileInfo{}, errs.IO(fmt.Sprintf("failed to download blob %s", key), err)
		}
		return models.FileInfo{Record: rec, Blob: blob}, nil
	}

	exists, err := s.local.Exists(ctx, key)
	if err != nil {
		return models.FileInfo{}, errs.IO(fmt.Sprintf("failed to stat blob %s", key), err)
	}
	if !exists {
		return models.FileInfo{}, errs.NotFoundKey(key)
	}
	path, err := s.local.Path(key)
	if err != nil {
		return models.FileInfo{}, err
	}
	return models.FileInfo{Record: rec, LocalPath: path}, nil
}

// LocalBlobPath resolves a storage key to its physical path in the local
// backend, verifying the blob exists. Backs the /file/<key> serving route.
func (s *FileService) LocalBlobPath(key string) (string, error) {
	path, err := s.local.Path(key)
	if err != nil {
		return "", errs.Validation("invalid storage key %q", key)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errs.NotFoundKey(key)
		}
		return "", errs.IO(fmt.Sprintf("failed to stat blob %s", key), err)
	}
	return path, nil
}

// GetFileStream opens the record's blob for streaming via the backend it
// was written with.
func (s *FileService) GetFileStream(ctx context.Context, id, namespace string) (models.FileRecord, io.ReadCloser, error) {
	rec, err := s.records.FindByID(ctx, id, s.resolveNamespace(namespace))
	if err != nil {
		return models.FileRecord{}, nil, err
	}
	backend, err := s.readBackend(rec)
	if err != nil {
		return models.FileRecord{}, nil, err
	}
	rc, err := backend.Get(ctx, rec.StorageKey())
	if err != nil {
		if os.IsNotExist(err) {
			return models.FileRecord{}, nil, errs.NotFoundKey(rec.StorageKey())
		}
		return models.FileRecord{}, nil, errs.IO(fmt.Sprintf("failed to open blob %s", rec.StorageKey()), err)
	}
	return rec, rc, nil
}

// GetFileBlob reads the record's blob fully into memory.
func (s *FileService) GetFileBlob(ctx context.Context, id, namespace string) (models.FileRecord, []byte, error) {
	rec, rc, err := s.GetFileStream(ctx, id, namespace)
	if err != nil {
		return models.FileRecord{}, nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return models.FileRecord{}, nil, errs.IO(fmt.Sprintf("failed to read blob %s", rec.StorageKey()), err)
	}
	return rec, data, nil
}
