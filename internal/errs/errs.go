// Package errs defines the error kinds the file-manager core surfaces to
// callers. Each failure carries the identifier or capability that the caller
// needs to act on; there are no retries anywhere in the core.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindNotFound: unknown record id, or a local blob missing from disk.
	KindNotFound Kind = iota + 1
	// KindValidation: no file in the request, or an unusable source shape.
	KindValidation
	// KindBackendMisconfigured: the operation needs a remote-backend
	// capability the configured adapter does not provide.
	KindBackendMisconfigured
	// KindDownloadFailed: a remote-fetch URL request was unsuccessful.
	KindDownloadFailed
	// KindIO: underlying disk/stream failure, propagated uninterpreted.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindBackendMisconfigured:
		return "backend misconfigured"
	case KindDownloadFailed:
		return "download failed"
	case KindIO:
		return "io"
	}
	return "unknown"
}

// Error is the tagged failure type of the core.
type Error struct {
	Kind       Kind
	Msg        string
	ID         string // record id, when relevant
	Key        string // storage key, when relevant
	Capability string // missing backend capability, when relevant
	Err        error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundID(id string) *Error {
	return &Error{Kind: KindNotFound, ID: id, Msg: fmt.Sprintf("file record %q not found", id)}
}

func NotFoundKey(key string) *Error {
	return &Error{Kind: KindNotFound, Key: key, Msg: fmt.Sprintf("blob %q not found in local storage", key)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func BackendMisconfigured(capability string) *Error {
	return &Error{
		Kind:       KindBackendMisconfigured,
		Capability: capability,
		Msg:        fmt.Sprintf("remote backend does not provide %q", capability),
	}
}

func DownloadFailed(url string, err error) *Error {
	return &Error{Kind: KindDownloadFailed, Msg: fmt.Sprintf("download %s failed", url), Err: err}
}

func IO(msg string, err error) *Error {
	return &Error{Kind: KindIO, Msg: msg, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }
