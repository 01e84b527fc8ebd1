package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/vets"
)

// ErrAssignmentRejected signals that the target veterinarian cannot take the
// case (wrong type, unavailable, or beaten by a concurrent assignment). It
// is an expected, non-fatal outcome: the caller discards the attempt and
// re-fetches rather than assuming success.
var ErrAssignmentRejected = errors.New("assignment rejected")

// Service is the locality matcher: it builds ordered candidate lists and
// performs assign/reassign/unassign against the record store.
type Service struct {
	caseRepo cases.Repository
	vetSvc   *vets.Service
}

func NewService(caseRepo cases.Repository, vetSvc *vets.Service) *Service {
	return &Service{caseRepo: caseRepo, vetSvc: vetSvc}
}

// Candidates returns the ordered candidate list for a case.
func (s *Service) Candidates(ctx context.Context, caseID uuid.UUID) (*CandidateList, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("case not found: %w", err)
	}

	sector := ""
	if c.ReporterSector != nil {
		sector = *c.ReporterSector
	}
	district := ""
	if c.ReporterDistrict != nil {
		district = *c.ReporterDistrict
	}

	pool, err := s.vetSvc.PoolForCase(ctx, sector, district)
	if err != nil {
		return nil, fmt.Errorf("fetch veterinarian pool: %w", err)
	}

	list := BuildCandidateList(c, pool)
	return &list, nil
}

// Assign sets the case's assignee. It acts as both initial assignment and
// reassignment; the case status is left untouched — status transitions are
// the lifecycle controller's responsibility.
func (s *Service) Assign(ctx context.Context, caseID, vetID uuid.UUID) (*cases.Case, error) {
	v, err := s.vetSvc.GetVeterinarian(ctx, vetID)
	if err != nil {
		return nil, fmt.Errorf("%w: veterinarian not found", ErrAssignmentRejected)
	}
	if v.UserType != vets.TypeLocalVet {
		return nil, fmt.Errorf("%w: %s is not a local veterinarian", ErrAssignmentRejected, v.ID)
	}
	if !v.Assignable() {
		return nil, fmt.Errorf("%w: veterinarian %s is unavailable", ErrAssignmentRejected, v.ID)
	}

	updated, err := s.caseRepo.Assign(ctx, caseID, vetID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssignmentRejected, err)
	}
	return updated, nil
}

// Unassign clears the case's assignee. Calling it on an unassigned case is
// a no-op returning the unchanged case. Status is not reverted: a case may
// legitimately sit in under_review with no assignee pending reassignment.
func (s *Service) Unassign(ctx context.Context, caseID uuid.UUID) (*cases.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("case not found: %w", err)
	}
	if !c.IsAssigned() {
		return c, nil
	}
	return s.caseRepo.Unassign(ctx, caseID)
}
