package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
	"github.com/harborfs/file-manager/internal/records"
	"github.com/harborfs/file-manager/internal/storage"
)

func TestGetFileURLEmbedsKeyAndFilename(t *testing.T) {
	svc, _, _ := newTestService(t)
	rec := mustUpload(t, svc, "a.txt", []byte("hello"))

	url, err := svc.GetFileURL(context.Background(), rec.ID, "")
	if err != nil {
		t.Fatalf("GetFileURL: %v", err)
	}
	if want := "http://localhost:8080/file/" + helloMD5 + ".txt?filename=a.txt"; url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestGetFileURLUnknownID(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.GetFileURL(context.Background(), "missing", ""); !errs.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestGetFileURLMissingBlob(t *testing.T) {
	svc, _, local := newTestService(t)
	rec := mustUpload(t, svc, "a.txt", []byte("hello"))

	if err := os.Remove(filepath.Join(local.Root(), rec.StorageKey())); err != nil {
		t.Fatalf("remove blob: %v", err)
	}
	if _, err := svc.GetFileURL(context.Background(), rec.ID, ""); !errs.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func seedRemoteRecord(t *testing.T, store records.Store) models.FileRecord {
	t.Helper()
	rec := models.FileRecord{
		ID:          uuid.New().String(),
		Filename:    "r.txt",
		ContentHash: helloMD5,
		Size:        5,
		Namespace:   "default",
		StorageType: models.StorageRemote,
	}
	if err := store.Create(context.Background(), &rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return rec
}

func TestRemoteRecordWithoutBackend(t *testing.T) {
	svc, store, _ := newTestService(t)
	rec := seedRemoteRecord(t, store)

	if _, err := svc.GetFileURL(context.Background(), rec.ID, ""); !errs.IsKind(err, errs.KindBackendMisconfigured) {
		t.Errorf("GetFileURL error = %v, want backend misconfigured", err)
	}
	if _, err := svc.GetFileInfo(context.Background(), rec.ID, ""); !errs.IsKind(err, errs.KindBackendMisconfigured) {
		t.Errorf("GetFileInfo error = %v, want backend misconfigured", err)
	}
	if _, _, err := svc.GetFileStream(context.Background(), rec.ID, ""); !errs.IsKind(err, errs.KindBackendMisconfigured) {
		t.Errorf("GetFileStream error = %v, want backend misconfigured", err)
	}
}

func TestRemoteBackendWithoutLocate(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	store := records.NewMemory()
	svc := New(store, local, newFakeRemote(), nil, Config{})
	rec := seedRemoteRecord(t, store)

	// the fake remote lacks the locate capability; this must not report
	// the record as missing
	_, err = svc.GetFileURL(context.Background(), rec.ID, "")
	if !errs.IsKind(err, errs.KindBackendMisconfigured) {
		t.Fatalf("error = %v, want backend misconfigured", err)
	}
	if errs.IsNotFound(err) {
		t.Fatal("missing capability reported as not found")
	}
}

func TestGetFileInfoLocal(t *testing.T) {
	svc, _, _ := newTestService(t)
	rec := mustUpload(t, svc, "a.txt", []byte("hello"))

	info, err := svc.GetFileInfo(context.Background(), rec.ID, "")
	if err != nil {
		t.Fatalf("GetFileInfo: %v", err)
	}
	if info.LocalPath == "" {
		t.Fatal("local info has no physical path")
	}
	data, err := os.ReadFile(info.LocalPath)
	if err != nil {
		t.Fatalf("read %s: %v", info.LocalPath, err)
	}
	if string(data) != "hello" {
		t.Errorf("blob content = %q, want hello", data)
	}
	if info.Record.ContentHash != helloMD5 {
		t.Errorf("hash = %q, want %q", info.Record.ContentHash, helloMD5)
	}
}

func TestGetFileInfoRemoteDownloads(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	store := records.NewMemory()
	remote := &fakeRemoteFull{newFakeRemote()}
	svc := New(store, local, remote, nil, Config{})

	rec, err := svc.UploadToFileSystem(context.Background(),
		NewBufferSource("r.txt", "", "text/plain", []byte("remote bytes")), UploadRequest{})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	info, err := svc.GetFileInfo(context.Background(), rec.ID, "")
	if err != nil {
		t.Fatalf("GetFileInfo: %v", err)
	}
	if info.LocalPath != "" {
		t.Error("remote info carries a local path")
	}
	if string(info.Blob) != "remote bytes" {
		t.Errorf("blob = %q, want remote bytes", info.Blob)
	}
}

func TestGetFileBlobAndStream(t *testing.T) {
	svc, _, _ := newTestService(t)
	rec := mustUpload(t, svc, "a.txt", []byte("hello"))

	_, blob, err := svc.GetFileBlob(context.Background(), rec.ID, "")
	if err != nil {
		t.Fatalf("GetFileBlob: %v", err)
	}
	if string(blob) != "hello" {
		t.Errorf("blob = %q, want hello", blob)
	}

	_, rc, err := svc.GetFileStream(context.Background(), rec.ID, "")
	if err != nil {
		t.Fatalf("GetFileStream: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Errorf("stream = %q, want hello", data)
	}
}

func TestLocalBlobPath(t *testing.T) {
	svc, _, _ := newTestService(t)
	rec := mustUpload(t, svc, "a.txt", []byte("hello"))

	path, err := svc.LocalBlobPath(rec.StorageKey())
	if err != nil {
		t.Fatalf("LocalBlobPath: %v", err)
	}
	if !strings.HasSuffix(path, rec.StorageKey()) {
		t.Errorf("path %q does not end with key %q", path, rec.StorageKey())
	}

	if _, err := svc.LocalBlobPath("nope.bin"); !errs.IsNotFound(err) {
		t.Errorf("unknown key error = %v, want not found", err)
	}
	if _, err := svc.LocalBlobPath("../escape"); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("traversal key error = %v, want validation", err)
	}
}

// fakeRemoteFull adds the locate and download capabilities.
type fakeRemoteFull struct {
	*fakeRemote
}

func (f *fakeRemoteFull) Locate(_ context.Context, key, filename string) (string, error) {
	return "https://cdn.example.com/" + key + "?filename=" + filename, nil
}

func (f *fakeRemoteFull) Download(_ context.Context, key string) ([]byte, error) {
	rc, err := f.Get(context.Background(), key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
