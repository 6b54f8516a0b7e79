package requirements

import "context"

// Repo defines persistence operations for requirements. Deleted requirements
// are hidden from every read.
type Repo interface {
	Create(ctx context.Context, r Requirement) error
	GetByID(ctx context.Context, id string) (Requirement, error)
	List(ctx context.Context, limit, offset int) ([]Requirement, error)
	SoftDelete(ctx context.Context, id string) error
}
