package services

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/harborfs/file-manager/internal/errs"
)

func TestBundleUnbundleRoundTrip(t *testing.T) {
	for _, format := range []ArchiveFormat{ArchiveZip, ArchiveTarGz} {
		t.Run(string(format), func(t *testing.T) {
			svc, _, _ := newTestService(t)
			ctx := context.Background()

			originals := map[string]string{
				"a.txt":    "alpha content",
				"b.txt":    "beta content",
				"notes.md": "# notes",
			}
			var ids []string
			for name, content := range originals {
				rec := mustUpload(t, svc, name, []byte(content))
				ids = append(ids, rec.ID)
			}

			archive, err := svc.GetCompressFileBlob(ctx, ids, "", format)
			if err != nil {
				t.Fatalf("bundle: %v", err)
			}
			if len(archive) == 0 {
				t.Fatal("empty archive")
			}

			archiveName := "bundle.zip"
			if format == ArchiveTarGz {
				archiveName = "bundle.tar.gz"
			}
			archiveRec, err := svc.UploadToFileSystem(ctx,
				NewBufferSource(archiveName, "", "application/octet-stream", archive), UploadRequest{})
			if err != nil {
				t.Fatalf("store archive: %v", err)
			}

			entries, err := svc.UncompressFile(ctx, archiveRec.ID, "", format, "")
			if err != nil {
				t.Fatalf("unbundle: %v", err)
			}
			if len(entries) != len(originals) {
				t.Fatalf("entries = %d, want %d", len(entries), len(originals))
			}

			// (filename, content) pairs must be set-equal to the originals
			got := make(map[string]string, len(entries))
			for _, entry := range entries {
				if entry.Record.ID == archiveRec.ID {
					t.Error("unbundle reused the archive record id")
				}
				_, blob, err := svc.GetFileBlob(ctx, entry.Record.ID, "")
				if err != nil {
					t.Fatalf("read ingested %s: %v", entry.Record.Filename, err)
				}
				got[entry.Record.Filename] = string(blob)
			}
			for name, content := range originals {
				if got[name] != content {
					t.Errorf("entry %s = %q, want %q", name, got[name], content)
				}
			}
		})
	}
}

func TestBundleUnknownID(t *testing.T) {
	svc, _, _ := newTestService(t)
	var buf bytes.Buffer
	err := svc.GetCompressFileStream(context.Background(), []string{"missing"}, "", ArchiveZip, &buf)
	if !errs.IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestBundleDuplicateFilenames(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a := mustUpload(t, svc, "same.txt", []byte("first"))
	b := mustUpload(t, svc, "same.txt", []byte("second"))

	archive, err := svc.GetCompressFileBlob(ctx, []string{a.ID, b.ID}, "", ArchiveZip)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("zip entries = %d, want 2", len(zr.File))
	}
	seen := map[string]bool{}
	for _, f := range zr.File {
		if seen[f.Name] {
			t.Errorf("duplicate entry name %q", f.Name)
		}
		seen[f.Name] = true
	}
}

func TestUncompressGlobPattern(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	txt := mustUpload(t, svc, "keep.txt", []byte("keep"))
	bin := mustUpload(t, svc, "skip.bin", []byte("skip"))

	archive, err := svc.GetCompressFileBlob(ctx, []string{txt.ID, bin.ID}, "", ArchiveZip)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	archiveRec, err := svc.UploadToFileSystem(ctx,
		NewBufferSource("mixed.zip", "", "", archive), UploadRequest{})
	if err != nil {
		t.Fatalf("store archive: %v", err)
	}

	entries, err := svc.UncompressFile(ctx, archiveRec.ID, "", ArchiveZip, "*.txt")
	if err != nil {
		t.Fatalf("unbundle: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Record.Filename != "keep.txt" {
		t.Errorf("matched %q, want keep.txt", entries[0].Record.Filename)
	}
	if entries[0].SourcePath != "keep.txt" {
		t.Errorf("source path = %q, want keep.txt", entries[0].SourcePath)
	}
	if entries[0].Record.Mimetype != "text/plain; charset=utf-8" {
		t.Errorf("mimetype = %q, want inferred text/plain", entries[0].Record.Mimetype)
	}
}

func TestUncompressIngestsIntoNamespace(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rec := mustUpload(t, svc, "a.txt", []byte("content"))
	archive, err := svc.GetCompressFileBlob(ctx, []string{rec.ID}, "", ArchiveTarGz)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}

	archiveRec, err := svc.UploadToFileSystem(ctx,
		NewBufferSource("a.tar.gz", "", "", archive), UploadRequest{Namespace: "imports"})
	if err != nil {
		t.Fatalf("store archive: %v", err)
	}

	entries, err := svc.UncompressFile(ctx, archiveRec.ID, "imports", ArchiveTarGz, "")
	if err != nil {
		t.Fatalf("unbundle: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Record.Namespace != "imports" {
		t.Errorf("namespace = %q, want imports", entries[0].Record.Namespace)
	}
}

func TestParseArchiveFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    ArchiveFormat
		wantErr bool
	}{
		{"", ArchiveZip, false},
		{"zip", ArchiveZip, false},
		{"tar.gz", ArchiveTarGz, false},
		{"tgz", ArchiveTarGz, false},
		{"gzip", ArchiveTarGz, false},
		{"rar", "", true},
	}
	for _, tc := range cases {
		got, err := ParseArchiveFormat(tc.in)
		if tc.wantErr {
			if !errs.IsKind(err, errs.KindValidation) {
				t.Errorf("ParseArchiveFormat(%q) error = %v, want validation", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseArchiveFormat(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestCompressStreamMatchesBlob(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	rec := mustUpload(t, svc, "a.txt", []byte("hello"))

	var buf bytes.Buffer
	if err := svc.GetCompressFileStream(ctx, []string{rec.ID}, "", ArchiveZip, &buf); err != nil {
		t.Fatalf("stream: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello" {
		t.Errorf("entry content = %q, want hello", data)
	}
}
