package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	cases map[uuid.UUID]*Case
}

func newMockRepo() *mockRepo {
	return &mockRepo{cases: make(map[uuid.UUID]*Case)}
}

func (m *mockRepo) add(c *Case) *Case {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CaseID == "" {
		c.CaseID = "CASE-" + c.ID.String()[:8]
	}
	m.cases[c.ID] = c
	return c
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Case, int, error) {
	var result []*Case
	for _, c := range m.cases {
		if f.Status != "" && f.Status != "all" && c.Status != f.Status {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			name := ""
			if c.ReporterName != nil {
				name = strings.ToLower(*c.ReporterName)
			}
			if !strings.Contains(strings.ToLower(c.CaseID), q) && !strings.Contains(name, q) {
				continue
			}
		}
		result = append(result, c)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListAll(_ context.Context) ([]*Case, error) {
	var result []*Case
	for _, c := range m.cases {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) (*Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return c, nil
}

func (m *mockRepo) Counts(_ context.Context) (*Counts, error) {
	counts := &Counts{}
	for _, c := range m.cases {
		switch c.Status {
		case StatusPending:
			counts.Pending++
		case StatusUnderReview, StatusDiagnosed, StatusTreated:
			counts.InProgress++
		case StatusResolved:
			counts.Resolved++
		}
	}
	return counts, nil
}

func (m *mockRepo) Assign(_ context.Context, id, vetID uuid.UUID, at time.Time) (*Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	c.AssignedVeterinarianID = &vetID
	c.AssignedAt = &at
	return c, nil
}

func (m *mockRepo) Unassign(_ context.Context, id uuid.UUID) (*Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	c.AssignedVeterinarianID = nil
	c.AssignedAt = nil
	return c, nil
}

// -- Tests --

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

func TestTransitionValid(t *testing.T) {
	svc, repo := newTestService()
	c := repo.add(&Case{Status: StatusPending})

	updated, err := svc.Transition(context.Background(), c.ID, StatusUnderReview, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusUnderReview {
		t.Errorf("expected under_review, got %s", updated.Status)
	}
}

func TestTransitionInvalid(t *testing.T) {
	svc, repo := newTestService()
	c := repo.add(&Case{Status: StatusPending})

	_, err := svc.Transition(context.Background(), c.ID, StatusResolved, false)
	if err == nil {
		t.Fatal("expected error for pending -> resolved")
	}
	var invalid *ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Errorf("expected ErrInvalidTransition, got %T", err)
	}
}

func TestTransitionBackwardFromResolvedNeedsOverride(t *testing.T) {
	svc, repo := newTestService()
	c := repo.add(&Case{Status: StatusResolved})

	if _, err := svc.Transition(context.Background(), c.ID, StatusTreated, false); err == nil {
		t.Fatal("expected backward move from resolved to be rejected")
	}

	updated, err := svc.Transition(context.Background(), c.ID, StatusTreated, true)
	if err != nil {
		t.Fatalf("unexpected error with override: %v", err)
	}
	if updated.Status != StatusTreated {
		t.Errorf("expected treated after override, got %s", updated.Status)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	svc, repo := newTestService()
	c := repo.add(&Case{Status: StatusPending})

	if _, err := svc.Transition(context.Background(), c.ID, "bogus", false); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestTransitionEscalate(t *testing.T) {
	svc, repo := newTestService()
	c := repo.add(&Case{Status: StatusDiagnosed})

	updated, err := svc.Transition(context.Background(), c.ID, StatusEscalated, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusEscalated {
		t.Errorf("expected escalated, got %s", updated.Status)
	}
}

func TestListCasesStatusFilter(t *testing.T) {
	svc, repo := newTestService()
	repo.add(&Case{Status: StatusPending})
	repo.add(&Case{Status: StatusResolved})

	list, total, err := svc.ListCases(context.Background(), Filter{Status: StatusPending}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("expected 1 pending case, got %d", total)
	}
	if list[0].Status != StatusPending {
		t.Errorf("expected pending, got %s", list[0].Status)
	}
}

func TestListCasesAll(t *testing.T) {
	svc, repo := newTestService()
	repo.add(&Case{Status: StatusPending})
	repo.add(&Case{Status: StatusResolved})

	_, total, err := svc.ListCases(context.Background(), Filter{Status: "all"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 cases, got %d", total)
	}
}

func TestListCasesInvalidStatus(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.ListCases(context.Background(), Filter{Status: "nope"}, 20, 0); err == nil {
		t.Error("expected error for invalid status filter")
	}
}

func TestListCasesSearch(t *testing.T) {
	svc, repo := newTestService()
	name := "Jean Mugisha"
	repo.add(&Case{Status: StatusPending, CaseID: "CASE-1001", ReporterName: &name})
	repo.add(&Case{Status: StatusPending, CaseID: "CASE-2002"})

	list, _, err := svc.ListCases(context.Background(), Filter{Query: "mugisha"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].CaseID != "CASE-1001" {
		t.Errorf("expected search to match reporter name, got %v", list)
	}
}

func TestCountsBadges(t *testing.T) {
	svc, repo := newTestService()
	repo.add(&Case{Status: StatusPending})
	repo.add(&Case{Status: StatusUnderReview})
	repo.add(&Case{Status: StatusDiagnosed})
	repo.add(&Case{Status: StatusTreated})
	repo.add(&Case{Status: StatusResolved})
	repo.add(&Case{Status: StatusEscalated})

	counts, err := svc.Counts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts.Pending != 1 {
		t.Errorf("expected 1 pending, got %d", counts.Pending)
	}
	if counts.InProgress != 3 {
		t.Errorf("expected 3 in progress, got %d", counts.InProgress)
	}
	if counts.Resolved != 1 {
		t.Errorf("expected 1 resolved, got %d", counts.Resolved)
	}
}

func TestStaleCompletionRedacted(t *testing.T) {
	svc, repo := newTestService()
	confirmedAt := time.Now()
	c := repo.add(&Case{
		Status:                    StatusUnderReview,
		FarmerConfirmedCompletion: true,
		FarmerConfirmedAt:         &confirmedAt,
	})

	got, err := svc.GetCase(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FarmerConfirmedCompletion || got.FarmerConfirmedAt != nil {
		t.Error("stale completion confirmation must not be surfaced before treated")
	}

	// The stored record is untouched; only the returned copy is redacted.
	if !repo.cases[c.ID].FarmerConfirmedCompletion {
		t.Error("redaction must not mutate the stored case")
	}
}

func TestCompletionSurfacedWhenTreated(t *testing.T) {
	svc, repo := newTestService()
	confirmedAt := time.Now()
	c := repo.add(&Case{
		Status:                    StatusTreated,
		FarmerConfirmedCompletion: true,
		FarmerConfirmedAt:         &confirmedAt,
	})

	got, err := svc.GetCase(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.FarmerConfirmedCompletion || got.FarmerConfirmedAt == nil {
		t.Error("completion confirmation must be surfaced for treated cases")
	}
}
