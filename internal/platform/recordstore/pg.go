package recordstore

import (
	"context"

	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/farmers"
	"github.com/herdwatch/herdwatch/internal/domain/livestock"
	"github.com/herdwatch/herdwatch/internal/domain/vets"
)

// PGStore is the poll source for nodes that own the database: it composes
// the domain repositories into the coordinator's read surface.
type PGStore struct {
	cases     cases.Repository
	vets      vets.Repository
	farmers   farmers.Repository
	livestock livestock.Repository
}

func NewPGStore(c cases.Repository, v vets.Repository, f farmers.Repository, l livestock.Repository) *PGStore {
	return &PGStore{cases: c, vets: v, farmers: f, livestock: l}
}

func (s *PGStore) FetchCases(ctx context.Context) ([]*cases.Case, error) {
	return s.cases.ListAll(ctx)
}

func (s *PGStore) FetchVeterinarians(ctx context.Context) ([]*vets.Veterinarian, error) {
	return s.vets.ListAll(ctx)
}

func (s *PGStore) FetchFarmers(ctx context.Context) ([]*farmers.Farmer, error) {
	return s.farmers.ListAll(ctx)
}

func (s *PGStore) FetchLivestock(ctx context.Context) ([]*livestock.Animal, error) {
	return s.livestock.ListAll(ctx)
}
