package services

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/harborfs/file-manager/internal/errs"
)

// FileSource is an incoming file. Uploads arrive either as a chunked stream
// (multipart part, HTTP response body) or as an eager buffer; both shapes
// sit behind this one contract.
type FileSource interface {
	Filename() string
	Encoding() string
	Mimetype() string
	Open() (io.ReadCloser, error)
}

// MultipartSource wraps a multipart file header.
type MultipartSource struct {
	header *multipart.FileHeader
}

func NewMultipartSource(fh *multipart.FileHeader) *MultipartSource {
	return &MultipartSource{header: fh}
}

func (m *MultipartSource) Filename() string { return m.header.Filename }
func (m *MultipartSource) Encoding() string {
	return m.header.Header.Get("Content-Transfer-Encoding")
}
func (m *MultipartSource) Mimetype() string { return m.header.Header.Get("Content-Type") }
func (m *MultipartSource) Open() (io.ReadCloser, error) {
	return m.header.Open()
}

// BufferSource wraps an eager in-memory payload.
type BufferSource struct {
	name     string
	encoding string
	mimetype string
	data     []byte
}

func NewBufferSource(name, encoding, mimetype string, data []byte) *BufferSource {
	return &BufferSource{name: name, encoding: encoding, mimetype: mimetype, data: data}
}

func (b *BufferSource) Filename() string { return b.name }
func (b *BufferSource) Encoding() string { return b.encoding }
func (b *BufferSource) Mimetype() string { return b.mimetype }
func (b *BufferSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// StreamSource wraps a one-shot byte stream such as an HTTP response body.
type StreamSource struct {
	name     string
	encoding string
	mimetype string
	body     io.ReadCloser
	opened   bool
}

func NewStreamSource(name, encoding, mimetype string, body io.ReadCloser) *StreamSource {
	return &StreamSource{name: name, encoding: encoding, mimetype: mimetype, body: body}
}

func (r *StreamSource) Filename() string { return r.name }
func (r *StreamSource) Encoding() string { return r.encoding }
func (r *StreamSource) Mimetype() string { return r.mimetype }
func (r *StreamSource) Open() (io.ReadCloser, error) {
	if r.opened {
		return nil, errs.Validation("stream source %q was already consumed", r.name)
	}
	r.opened = true
	return r.body, nil
}
