package postgres

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nlgkit/subjectivity/internal/domain/model"
)

// MemoryRepository is a process-local port.AssessmentRepository used when
// no database is configured. Contents are lost on restart.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*model.TextAssessment
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[uuid.UUID]*model.TextAssessment)}
}

// Save stores the assessment, replacing any older version.
func (r *MemoryRepository) Save(_ context.Context, a *model.TextAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byID[a.ID()]; ok && cur.Version() >= a.Version() {
		return ErrStaleAssessment
	}
	r.byID[a.ID()] = a
	return nil
}

// FindByID returns nil, nil when the assessment is unknown to the tenant.
func (r *MemoryRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.TextAssessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok || a.TenantID() != tenantID {
		return nil, nil
	}
	return a, nil
}

// FindByTenant lists a tenant's assessments, newest first.
func (r *MemoryRepository) FindByTenant(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]*model.TextAssessment, error) {
	r.mu.RLock()
	out := make([]*model.TextAssessment, 0)
	for _, a := range r.byID {
		if a.TenantID() == tenantID {
			out = append(out, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })

	if offset >= len(out) {
		return []*model.TextAssessment{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
