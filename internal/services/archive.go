package services

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
)

// ArchiveFormat names a supported archive container.
type ArchiveFormat string

const (
	ArchiveZip   ArchiveFormat = "zip"
	ArchiveTarGz ArchiveFormat = "tar.gz"
)

// ParseArchiveFormat maps caller-supplied type strings onto a format.
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch strings.ToLower(s) {
	case "", "zip":
		return ArchiveZip, nil
	case "tar.gz", "tgz", "gzip", "tar":
		return ArchiveTarGz, nil
	}
	return "", errs.Validation("unsupported archive type %q", s)
}

type bundleEntry struct {
	name string // entry name inside the archive
	path string // temp file holding the blob bytes
	size int64
}

// GetCompressFileStream bundles the blobs of the given records into one
// archive written to w. Each blob is staged to a per-entry temp file named
// after the record's filename before being added, so backends only need
// their streaming read. Temp files are removed best-effort on every path.
func (s *FileService) GetCompressFileStream(ctx context.Context, ids []string, namespace string, format ArchiveFormat, w io.Writer) error {
	if len(ids) == 0 {
		return errs.Validation("no ids provided")
	}
	ns := s.resolveNamespace(namespace)

	tmpDir, err := os.MkdirTemp("", "fm-bundle-*")
	if err != nil {
		return errs.IO("failed to create bundle staging dir", err)
	}
	defer removeTemp(tmpDir)

	entries := make([]bundleEntry, 0, len(ids))
	taken := make(map[string]bool, len(ids))
	for i, id := range ids {
		rec, err := s.records.FindByID(ctx, id, ns)
		if err != nil {
			return err
		}
		name := rec.Filename
		if taken[name] {
			// identical filenames would clobber each other in the
			// archive; disambiguate with the entry index
			name = fmt.Sprintf("%d-%s", i, rec.Filename)
		}
		taken[name] = true

		entryPath := filepath.Join(tmpDir, fmt.Sprintf("entry-%d", i))
		size, err := s.stageBlob(ctx, rec, entryPath)
		if err != nil {
			return err
		}
		entries = append(entries, bundleEntry{name: name, path: entryPath, size: size})
	}

	switch format {
	case ArchiveTarGz:
		return writeTarGz(w, entries)
	default:
		return writeZip(w, entries)
	}
}

// GetCompressFileBlob bundles into memory instead of a stream.
func (s *FileService) GetCompressFileBlob(ctx context.Context, ids []string, namespace string, format ArchiveFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.GetCompressFileStream(ctx, ids, namespace, format, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stageBlob copies a record's blob into a temp file and returns its size.
func (s *FileService) stageBlob(ctx context.Context, rec models.FileRecord, dst string) (int64, error) {
	backend, err := s.readBackend(rec)
	if err != nil {
		return 0, err
	}
	rc, err := backend.Get(ctx, rec.StorageKey())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errs.NotFoundKey(rec.StorageKey())
		}
		return 0, errs.IO(fmt.Sprintf("failed to read blob %s", rec.StorageKey()), err)
	}
	defer rc.Close()

	f, err := os.Create(dst)
	if err != nil {
		return 0, errs.IO("failed to create bundle entry file", err)
	}
	size, err := io.Copy(f, rc)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, errs.IO(fmt.Sprintf("failed to stage blob %s", rec.StorageKey()), err)
	}
	return size, nil
}

func writeZip(w io.Writer, entries []bundleEntry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		hdr := &zip.FileHeader{Name: entry.name, Method: zip.Deflate}
		hdr.Modified = time.Now()
		ew, err := zw.CreateHeader(hdr)
		if err != nil {
			return errs.IO(fmt.Sprintf("failed to add archive entry %s", entry.name), err)
		}
		if err := copyFileTo(ew, entry.path); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return errs.IO("failed to finalize zip archive", err)
	}
	return nil
}

func writeTarGz(w io.Writer, entries []bundleEntry) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	for _, entry := range entries {
		hdr := &tar.Header{
			Name:    entry.name,
			Mode:    0o644,
			Size:    entry.size,
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return errs.IO(fmt.Sprintf("failed to add archive entry %s", entry.name), err)
		}
		if err := copyFileTo(tw, entry.path); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return errs.IO("failed to finalize tar archive", err)
	}
	if err := gz.Close(); err != nil {
		return errs.IO("failed to finalize gzip stream", err)
	}
	return nil
}

func copyFileTo(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.IO("failed to open bundle entry file", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return errs.IO("failed to write archive entry", err)
	}
	return nil
}

// UncompressFile expands the archive stored under the given record back into
// individually stored files: the blob is extracted to a temp dir, entries
// matching the glob pattern are re-ingested as fresh uploads, one new record
// per entry, with the mimetype inferred from the entry extension. The temp
// dir is removed best-effort even on partial failure.
func (s *FileService) UncompressFile(ctx context.Context, id, namespace string, format ArchiveFormat, pattern string) ([]models.ArchiveEntry, error) {
	ns := s.resolveNamespace(namespace)
	rec, err := s.records.FindByID(ctx, id, ns)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "fm-unbundle-*")
	if err != nil {
		return nil, errs.IO("failed to create extraction dir", err)
	}
	defer removeTemp(tmpDir)

	archivePath := filepath.Join(tmpDir, "archive")
	if _, err := s.stageBlob(ctx, rec, archivePath); err != nil {
		return nil, err
	}

	extractDir := filepath.Join(tmpDir, "entries")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, errs.IO("failed to create extraction dir", err)
	}

	switch format {
	case ArchiveTarGz:
		err = extractTarGz(archivePath, extractDir)
	default:
		err = extractZip(archivePath, extractDir)
	}
	if err != nil {
		return nil, err
	}

	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(extractDir, pattern))
	if err != nil {
		return nil, errs.Validation("invalid glob pattern %q: %v", pattern, err)
	}
	sort.Strings(matches)

	var ingested []models.ArchiveEntry
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		name := filepath.Base(match)
		src := &pathSource{
			path:     match,
			name:     name,
			mimetype: mime.TypeByExtension(filepath.Ext(name)),
		}
		entryRec, err := s.UploadToFileSystem(ctx, src, UploadRequest{Namespace: ns})
		if err != nil {
			return nil, err
		}
		rel, relErr := filepath.Rel(extractDir, match)
		if relErr != nil {
			rel = name
		}
		ingested = append(ingested, models.ArchiveEntry{SourcePath: rel, Record: entryRec})
	}
	return ingested, nil
}

// pathSource streams an extracted archive entry from disk.
type pathSource struct {
	path     string
	name     string
	mimetype string
}

func (p *pathSource) Filename() string { return p.name }
func (p *pathSource) Encoding() string { return "" }
func (p *pathSource) Mimetype() string { return p.mimetype }
func (p *pathSource) Open() (io.ReadCloser, error) {
	return os.Open(p.path)
}

// entryDestination validates an archive member name and resolves it inside
// dir, rejecting absolute names and path traversal.
func entryDestination(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errs.Validation("archive entry %q escapes extraction dir", name)
	}
	return filepath.Join(dir, cleaned), nil
}

func extractZip(archivePath, dir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errs.Validation("not a readable zip archive: %v", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		dst, err := entryDestination(dir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return errs.IO("failed to create entry dir", err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return errs.IO(fmt.Sprintf("failed to open archive entry %s", f.Name), err)
		}
		err = writeEntryFile(dst, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTarGz(archivePath, dir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errs.IO("failed to open archive blob", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errs.Validation("not a readable gzip stream: %v", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errs.Validation("not a readable tar archive: %v", err)
		}
		dst, err := entryDestination(dir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return errs.IO("failed to create entry dir", err)
			}
		case tar.TypeReg:
			if err := writeEntryFile(dst, tr); err != nil {
				return err
			}
		}
	}
}

func writeEntryFile(dst string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errs.IO("failed to create entry dir", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return errs.IO("failed to create entry file", err)
	}
	_, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errs.IO(fmt.Sprintf("failed to extract entry %s", filepath.Base(dst)), err)
	}
	return nil
}
