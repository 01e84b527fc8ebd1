package vets

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetVeterinarian(ctx context.Context, id uuid.UUID) (*Veterinarian, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListVeterinarians(ctx context.Context, f Filter, limit, offset int) ([]*Veterinarian, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// PoolForCase returns the candidate pool for a case reported in the given
// sector/district. When the location-scoped fetch fails the full local-vet
// pool is returned instead of failing the operation.
func (s *Service) PoolForCase(ctx context.Context, sector, district string) ([]*Veterinarian, error) {
	if sector != "" || district != "" {
		pool, err := s.repo.ListByLocation(ctx, sector, district)
		if err == nil {
			return pool, nil
		}
		s.logger.Warn().Err(err).
			Str("sector", sector).
			Str("district", district).
			Msg("location-scoped veterinarian fetch failed, falling back to full pool")
	}

	pool, _, err := s.repo.List(ctx, Filter{UserType: TypeLocalVet}, 1000, 0)
	return pool, err
}
