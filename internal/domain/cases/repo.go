package cases

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a case listing. Status "all" or "" matches every status;
// Query is a case-insensitive substring matched against the human-readable
// case id and the reporter name.
type Filter struct {
	Status Status
	Query  string
}

// Counts holds the badge counters shown on the assignment dashboard.
type Counts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Case, int, error)
	ListAll(ctx context.Context) ([]*Case, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Case, error)
	Counts(ctx context.Context) (*Counts, error)

	// Assignment fields are owned by the locality matcher; both operations
	// return the updated case.
	Assign(ctx context.Context, id, vetID uuid.UUID, at time.Time) (*Case, error)
	Unassign(ctx context.Context, id uuid.UUID) (*Case, error)
}
