package requirements

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Requirement
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Requirement)}
}

func (r *MemoryRepo) Create(ctx context.Context, req Requirement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[req.ID] = req
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Requirement, error) {
	if err := ctx.Err(); err != nil {
		return Requirement{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.data[id]
	if !ok || req.IsDeleted {
		return Requirement{}, ErrNotFound
	}
	return req, nil
}

// List returns live requirements newest first.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Requirement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	out := make([]Requirement, 0, len(r.data))
	for _, req := range r.data {
		if !req.IsDeleted {
			out = append(out, req)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Requirement{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// SoftDelete flags the requirement; deleting twice reports ErrNotFound.
func (r *MemoryRepo) SoftDelete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.data[id]
	if !ok || req.IsDeleted {
		return ErrNotFound
	}
	req.IsDeleted = true
	r.data[id] = req
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
