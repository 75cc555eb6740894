package services

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"os"
)

// stagedUpload is the result of streaming a source through the hasher:
// the finalized content digest, total bytes seen, and the staging file
// holding those bytes.
type stagedUpload struct {
	Digest string
	Size   int64
	Path   string
}

// stageAndHash streams the source into a staging temp file while feeding
// every chunk through the digest accumulator, so the whole payload is never
// held in memory. On failure the staging file is removed best-effort and the
// original error is returned.
func stageAndHash(src FileSource) (*stagedUpload, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "fm-upload-*")
	if err != nil {
		return nil, err
	}

	hash := md5.New()
	size, err := io.Copy(io.MultiWriter(tmp, hash), rc)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		removeTemp(tmp.Name())
		return nil, err
	}

	return &stagedUpload{
		Digest: hex.EncodeToString(hash.Sum(nil)),
		Size:   size,
		Path:   tmp.Name(),
	}, nil
}

// removeTemp deletes a staging file or directory. Failure here never masks
// the operation's outcome; it is only logged.
func removeTemp(path string) {
	if err := os.RemoveAll(path); err != nil {
		log.Printf("[Files] warning: failed to remove temp path %s: %v", path, err)
	}
}
