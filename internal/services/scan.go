package services

import (
	"context"
	"log"

	clamd "github.com/dutchcoders/go-clamd"

	"github.com/harborfs/file-manager/internal/models"
)

// Scanner checks freshly committed blobs against ClamAV. Scanning is
// advisory: it runs after the upload has committed, and an unreachable
// daemon only logs.
type Scanner struct {
	address string
	svc     *FileService
}

func NewScanner(address string, svc *FileService) *Scanner {
	return &Scanner{address: address, svc: svc}
}

// ScanRecord streams the record's blob through ClamAV. An infected result
// removes the metadata record; the blob itself is left in place because
// content-addressed keys may be shared with clean records.
func (s *Scanner) ScanRecord(ctx context.Context, rec models.FileRecord) {
	if s == nil {
		return
	}

	_, rc, err := s.svc.GetFileStream(ctx, rec.ID, rec.Namespace)
	if err != nil {
		log.Printf("[ClamAV] failed to open %s for scanning: %v", rec.ID, err)
		return
	}
	defer rc.Close()

	c := clamd.NewClamd(s.address)
	results, err := c.ScanStream(rc, make(chan bool))
	if err != nil {
		log.Printf("[ClamAV] scan of %s failed: %v", rec.ID, err)
		return
	}

	for res := range results {
		if res.Status == clamd.RES_FOUND {
			log.Printf("[ClamAV] virus detected in %s: %s", rec.ID, res.Description)
			if err := s.svc.DeleteFiles(ctx, []string{rec.ID}, rec.Namespace); err != nil {
				log.Printf("[ClamAV] failed to remove infected record %s: %v", rec.ID, err)
			}
			return
		}
	}
	log.Printf("[ClamAV] scan finished for %s: clean", rec.ID)
}
