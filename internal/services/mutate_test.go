package services

import (
	"context"
	"testing"

	"github.com/harborfs/file-manager/internal/errs"
)

func TestDeleteFilesToleratesMissingIDs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec := mustUpload(t, svc, "a.txt", []byte("hello"))

	if err := svc.DeleteFiles(ctx, []string{rec.ID, "no-such-id"}, ""); err != nil {
		t.Fatalf("DeleteFiles: %v", err)
	}
	if _, err := svc.GetFileInfo(ctx, rec.ID, ""); !errs.IsNotFound(err) {
		t.Errorf("deleted record lookup error = %v, want not found", err)
	}
}

func TestDeleteFilesLeavesBlob(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec := mustUpload(t, svc, "a.txt", []byte("hello"))
	if err := svc.DeleteFiles(ctx, []string{rec.ID}, ""); err != nil {
		t.Fatalf("DeleteFiles: %v", err)
	}

	// physical blobs are never garbage-collected on delete
	if _, err := svc.LocalBlobPath(rec.StorageKey()); err != nil {
		t.Errorf("blob removed with record: %v", err)
	}
}

func TestDeleteFilesEmptyBatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.DeleteFiles(context.Background(), nil, ""); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestDeleteFilesScopedToNamespace(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.UploadToFileSystem(ctx, NewBufferSource("a.txt", "", "", []byte("x")), UploadRequest{Namespace: "keep"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// deleting in another namespace must not touch the record
	if err := svc.DeleteFiles(ctx, []string{rec.ID}, "other"); err != nil {
		t.Fatalf("DeleteFiles: %v", err)
	}
	if _, err := svc.GetFileInfo(ctx, rec.ID, "keep"); err != nil {
		t.Errorf("record lost across namespaces: %v", err)
	}
}

func TestRenameFile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec := mustUpload(t, svc, "old.txt", []byte("hello"))

	renamed, err := svc.RenameFile(ctx, rec.ID, "", "new.txt")
	if err != nil {
		t.Fatalf("RenameFile: %v", err)
	}
	if renamed.Filename != "new.txt" {
		t.Errorf("filename = %q, want new.txt", renamed.Filename)
	}
	if renamed.ID != rec.ID {
		t.Error("id changed across rename")
	}
	if renamed.ContentHash != rec.ContentHash || renamed.Size != rec.Size {
		t.Error("rename touched hash or size")
	}

	if _, err := svc.RenameFile(ctx, "missing", "", "x.txt"); !errs.IsNotFound(err) {
		t.Errorf("unknown id error = %v, want not found", err)
	}
	if _, err := svc.RenameFile(ctx, rec.ID, "", ""); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("empty name error = %v, want validation", err)
	}
}
