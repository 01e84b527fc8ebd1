package farmers

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Farmer, error)
	// List filters by approval state when approved is non-nil.
	List(ctx context.Context, approved *bool, limit, offset int) ([]*Farmer, int, error)
	ListAll(ctx context.Context) ([]*Farmer, error)
}
