package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"adoptme-adoption-process/internal/domain/processes"
)

// processRepo es el repositorio in-memory para dev y tests.
// Replica la semántica CAS del adapter de Postgres: Save exige que
// Version coincida con lo almacenado.
type processRepo struct {
	mu   sync.RWMutex
	byID map[string]processes.AdoptionProcess
}

func NewProcessRepo() processes.Repository {
	return &processRepo{
		byID: make(map[string]processes.AdoptionProcess),
	}
}

func (r *processRepo) Create(ctx context.Context, p processes.AdoptionProcess) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("process id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("process already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *processRepo) Save(ctx context.Context, p processes.AdoptionProcess) (processes.AdoptionProcess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.byID[p.ID]
	if !exists {
		return processes.AdoptionProcess{}, processes.ErrNotFound
	}
	if stored.Version != p.Version {
		return processes.AdoptionProcess{}, processes.ErrConflict
	}

	p.Version++
	r.byID[p.ID] = p
	return p, nil
}

func (r *processRepo) GetByID(ctx context.Context, id string) (processes.AdoptionProcess, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return processes.AdoptionProcess{}, processes.ErrNotFound
	}
	return p, nil
}

func (r *processRepo) GetBySourceRequest(ctx context.Context, sourceRequestID string) (processes.AdoptionProcess, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byID {
		if p.SourceRequestID == sourceRequestID {
			return p, nil
		}
	}
	return processes.AdoptionProcess{}, processes.ErrNotFound
}

func (r *processRepo) List(ctx context.Context) ([]processes.AdoptionProcess, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]processes.AdoptionProcess, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *processRepo) ListByApplicant(ctx context.Context, applicantID string) ([]processes.AdoptionProcess, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]processes.AdoptionProcess, 0)
	for _, p := range r.byID {
		if p.ApplicantID == applicantID {
			out = append(out, p)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

// Orden estable por created_at asc (solo para consistencia en dev).
func sortByCreatedAt(items []processes.AdoptionProcess) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
