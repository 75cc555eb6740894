// Package services implements the file-manager core: streaming upload with
// content hashing, URL ingest, filtered listing, locator/info resolution,
// and archive bundling/unbundling. All collaborators (record store, storage
// backends, event publisher) are injected at construction.
package services

import (
	"net/http"
	"time"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
	"github.com/harborfs/file-manager/internal/records"
	"github.com/harborfs/file-manager/internal/storage"
)

const (
	defaultNamespace = "default"
	defaultPerPage   = 20
)

// Config carries the service-level settings.
type Config struct {
	// Namespace is the partition records fall into when the caller does
	// not name one.
	Namespace string
	// URLPrefix is prepended to locators for locally stored blobs, e.g.
	// "http://localhost:8080/api".
	URLPrefix string
}

// FileService is the core storage engine. The local backend is always
// present; the remote backend is optional and, when configured, receives all
// new writes. Reads dispatch on the storage type recorded per file, so
// records written as local stay readable after a remote backend appears.
type FileService struct {
	records    records.Store
	local      *storage.Local
	remote     storage.Backend
	events     *EventPublisher
	namespace  string
	prefix     string
	httpClient *http.Client
}

// New wires a FileService. remote and events may be nil.
func New(store records.Store, local *storage.Local, remote storage.Backend, events *EventPublisher, cfg Config) *FileService {
	ns := cfg.Namespace
	if ns == "" {
		ns = defaultNamespace
	}
	return &FileService{
		records:    store,
		local:      local,
		remote:     remote,
		events:     events,
		namespace:  ns,
		prefix:     cfg.URLPrefix,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *FileService) resolveNamespace(ns string) string {
	if ns == "" {
		return s.namespace
	}
	return ns
}

// writeBackend picks where new blobs go: remote when configured, local
// otherwise. Selection happens once per write, never per capability probe.
func (s *FileService) writeBackend() storage.Backend {
	if s.remote != nil {
		return s.remote
	}
	return s.local
}

// readBackend dispatches on the record's stored type.
func (s *FileService) readBackend(rec models.FileRecord) (storage.Backend, error) {
	if rec.StorageType == models.StorageRemote {
		if s.remote == nil {
			return nil, errs.BackendMisconfigured("remote read")
		}
		return s.remote, nil
	}
	return s.local, nil
}
