package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
)

// URLUploadRequest ingests a remote resource. Filename is an optional
// override; when empty the name is resolved from the response and URL.
type URLUploadRequest struct {
	ID        string
	URL       string
	Filename  string
	Namespace string
	Options   map[string]string
}

// UploadFromURL fetches the URL and feeds the response body into the upload
// path as a stream. It holds no storage logic of its own.
func (s *FileService) UploadFromURL(ctx context.Context, req URLUploadRequest) (models.FileRecord, error) {
	if req.URL == "" {
		return models.FileRecord{}, errs.Validation("no url provided")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return models.FileRecord{}, errs.Validation("invalid url %q: %v", req.URL, err)
	}
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return models.FileRecord{}, errs.DownloadFailed(req.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.FileRecord{}, errs.DownloadFailed(req.URL, fmt.Errorf("unexpected status %s", resp.Status))
	}

	name := resolveDownloadFilename(req.Filename, resp, req.URL)
	src := NewStreamSource(name, "", resp.Header.Get("Content-Type"), resp.Body)
	return s.UploadToFileSystem(ctx, src, UploadRequest{
		ID:        req.ID,
		Namespace: req.Namespace,
		Options:   req.Options,
	})
}

// resolveDownloadFilename picks the stored filename, highest precedence
// first: explicit override, Content-Disposition header, "filename" query
// parameter, URL path basename.
func resolveDownloadFilename(override string, resp *http.Response, rawURL string) string {
	if override != "" {
		return override
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if name := u.Query().Get("filename"); name != "" {
			return name
		}
		if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
			return base
		}
	}
	return "download"
}
