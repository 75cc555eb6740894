package records

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harborfs/file-manager/internal/errs"
	"github.com/harborfs/file-manager/internal/models"
)

// Memory implements Store with an in-process map. Used by tests and by
// single-binary deployments that do not carry a database.
type Memory struct {
	mu   sync.RWMutex
	recs map[string]models.FileRecord
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[string]models.FileRecord)}
}

func (m *Memory) Create(_ context.Context, rec *models.FileRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.ID] = cloneRecord(*rec)
	return nil
}

func (m *Memory) FindByID(_ context.Context, id, namespace string) (models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	if !ok || rec.Namespace != namespace {
		return models.FileRecord{}, errs.NotFoundID(id)
	}
	return cloneRecord(rec), nil
}

func (m *Memory) FindAndCount(_ context.Context, q Query) ([]models.FileRecord, int64, error) {
	m.mu.RLock()
	matched := make([]models.FileRecord, 0, len(m.recs))
	for _, rec := range m.recs {
		if matches(rec, q) {
			matched = append(matched, cloneRecord(rec))
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, total, nil
}

func (m *Memory) Save(_ context.Context, rec *models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.recs[rec.ID]
	if !ok {
		return errs.NotFoundID(rec.ID)
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()
	m.recs[rec.ID] = cloneRecord(*rec)
	return nil
}

func (m *Memory) DestroyByIDs(_ context.Context, ids []string, namespace string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if rec, ok := m.recs[id]; ok && rec.Namespace == namespace {
			delete(m.recs, id)
		}
	}
	return nil
}

func matches(rec models.FileRecord, q Query) bool {
	f := q.Filter
	if q.Namespace != "" {
		if rec.Namespace != q.Namespace {
			return false
		}
	} else if f.Namespace != "" && !strings.Contains(rec.Namespace, f.Namespace) {
		return false
	}
	if f.ID != "" && rec.ID != f.ID {
		return false
	}
	if f.Filename != "" && !strings.Contains(rec.Filename, f.Filename) {
		return false
	}
	if f.Size != nil {
		if f.Size.MinKB != nil && rec.Size <= *f.Size.MinKB*1024 {
			return false
		}
		if f.Size.MaxKB != nil && rec.Size >= *f.Size.MaxKB*1024 {
			return false
		}
	}
	if !inRange(rec.CreatedAt, f.CreatedAt) {
		return false
	}
	if !inRange(rec.UpdatedAt, f.UpdatedAt) {
		return false
	}
	return true
}

func inRange(t time.Time, r *TimeRange) bool {
	if r == nil {
		return true
	}
	if r.StartTime != nil && t.Before(*r.StartTime) {
		return false
	}
	if r.EndTime != nil && t.After(*r.EndTime) {
		return false
	}
	return true
}

func cloneRecord(rec models.FileRecord) models.FileRecord {
	if rec.Options != nil {
		opts := make(map[string]string, len(rec.Options))
		for k, v := range rec.Options {
			opts[k] = v
		}
		rec.Options = opts
	}
	return rec
}
