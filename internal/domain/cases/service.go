package cases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a status change is not permitted by
// the lifecycle state machine.
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Service owns the case lifecycle: it validates status transitions and
// exposes filtered/search queries over the current case set.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return redactCompletion(c), nil
}

func (s *Service) ListCases(ctx context.Context, f Filter, limit, offset int) ([]*Case, int, error) {
	if f.Status != "" && f.Status != "all" && !ValidStatus(f.Status) {
		return nil, 0, fmt.Errorf("invalid status filter: %s", f.Status)
	}
	list, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i, c := range list {
		list[i] = redactCompletion(c)
	}
	return list, total, nil
}

// Transition moves a case to a new status after validating the lifecycle
// rules. With override set, any move between distinct valid statuses is
// accepted; this is the explicit escape hatch for authorized corrections,
// including moving a case backward out of resolved.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status, override bool) (*Case, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("invalid status: %s", to)
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("case not found: %w", err)
	}

	if !override && !CanTransition(c.Status, to) {
		return nil, &ErrInvalidTransition{From: c.Status, To: to}
	}
	if override && c.Status == to {
		return redactCompletion(c), nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	return redactCompletion(updated), nil
}

// Counts returns the pending / in-progress / resolved badge counters.
func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	return s.repo.Counts(ctx)
}

// redactCompletion clears the farmer completion confirmation on statuses
// where it is not meaningful, so a stale flag captured in an earlier state
// never reaches a caller.
func redactCompletion(c *Case) *Case {
	if c == nil || c.CompletionVisible() {
		return c
	}
	cp := *c
	cp.FarmerConfirmedCompletion = false
	cp.FarmerConfirmedAt = nil
	return &cp
}
