package vets

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a veterinarian listing.
type Filter struct {
	UserType UserType
	Sector   string
	District string
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Veterinarian, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Veterinarian, int, error)
	// ListByLocation returns local vets whose sector or district matches.
	// Retrieval order is deterministic (name, then id) so downstream
	// candidate ordering is stable across polls.
	ListByLocation(ctx context.Context, sector, district string) ([]*Veterinarian, error)
	ListAll(ctx context.Context) ([]*Veterinarian, error)
}
