package models

import (
	"path/filepath"
	"time"
)

// StorageType says which backend currently holds a record's blob.
type StorageType string

const (
	StorageLocal  StorageType = "local"
	StorageRemote StorageType = "remote"
)

// FileRecord is the metadata row describing one logical file. The physical
// blob lives under StorageKey(), which is derived from the content hash and
// is independent of the record id: replacing a record's content leaves the
// old blob behind, and two records with identical content share one blob.
type FileRecord struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	ContentHash string            `json:"content_hash"`
	Size        int64             `json:"size"`
	Encoding    string            `json:"encoding"`
	Mimetype    string            `json:"mimetype"`
	Namespace   string            `json:"namespace"`
	StorageType StorageType       `json:"storage_type"`
	Options     map[string]string `json:"options,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// StorageKey is the content-addressed name of the record's blob:
// hash plus the original filename's extension.
func (r FileRecord) StorageKey() string {
	return r.ContentHash + filepath.Ext(r.Filename)
}

// FileInfo is the payload returned by info resolution: the record plus
// either the physical path (local storage) or the downloaded bytes (remote).
type FileInfo struct {
	Record    FileRecord `json:"record"`
	LocalPath string     `json:"local_path,omitempty"`
	Blob      []byte     `json:"-"`
}

// FilePage is one page of a filtered listing.
type FilePage struct {
	PageData   []FileRecord `json:"page_data"`
	TotalCount int64        `json:"total_count"`
}

// ArchiveEntry reports one ingested entry of an unbundled archive.
type ArchiveEntry struct {
	SourcePath string     `json:"source_path"`
	Record     FileRecord `json:"record"`
}
