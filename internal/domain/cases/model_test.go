package cases

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestCanTransitionForwardChain(t *testing.T) {
	chain := []Status{StatusPending, StatusUnderReview, StatusDiagnosed, StatusTreated, StatusResolved}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", chain[i], chain[i+1])
		}
	}
}

func TestCanTransitionNoSkipping(t *testing.T) {
	if CanTransition(StatusPending, StatusDiagnosed) {
		t.Error("expected pending -> diagnosed to be rejected")
	}
	if CanTransition(StatusUnderReview, StatusResolved) {
		t.Error("expected under_review -> resolved to be rejected")
	}
}

func TestCanTransitionNoBackward(t *testing.T) {
	if CanTransition(StatusResolved, StatusTreated) {
		t.Error("expected resolved -> treated to be rejected without override")
	}
	if CanTransition(StatusDiagnosed, StatusUnderReview) {
		t.Error("expected diagnosed -> under_review to be rejected")
	}
}

func TestCanTransitionEscalated(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusUnderReview, StatusDiagnosed, StatusTreated} {
		if !CanTransition(from, StatusEscalated) {
			t.Errorf("expected %s -> escalated to be allowed", from)
		}
	}
	if CanTransition(StatusResolved, StatusEscalated) {
		t.Error("expected resolved -> escalated to be rejected")
	}
	if CanTransition(StatusEscalated, StatusEscalated) {
		t.Error("expected escalated -> escalated to be rejected")
	}
}

func TestIsTerminal(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusPending:   false,
		StatusTreated:   false,
		StatusResolved:  true,
		StatusEscalated: true,
	} {
		c := &Case{Status: status}
		if c.IsTerminal() != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, c.IsTerminal(), want)
		}
	}
}

func TestDiseaseKey(t *testing.T) {
	c := &Case{SuspectedDisease: strPtr("FMD")}
	if c.DiseaseKey() != "FMD" {
		t.Errorf("expected FMD, got %s", c.DiseaseKey())
	}

	c = &Case{}
	if c.DiseaseKey() != UnknownDisease {
		t.Errorf("expected %q, got %s", UnknownDisease, c.DiseaseKey())
	}

	c = &Case{SuspectedDisease: strPtr("")}
	if c.DiseaseKey() != UnknownDisease {
		t.Errorf("expected %q for empty string, got %s", UnknownDisease, c.DiseaseKey())
	}
}

func TestCompletionVisible(t *testing.T) {
	now := time.Now()
	c := &Case{Status: StatusUnderReview, FarmerConfirmedCompletion: true, FarmerConfirmedAt: &now}
	if c.CompletionVisible() {
		t.Error("completion must not be visible before treated")
	}
	c.Status = StatusTreated
	if !c.CompletionVisible() {
		t.Error("completion must be visible once treated")
	}
	c.Status = StatusResolved
	if !c.CompletionVisible() {
		t.Error("completion must be visible once resolved")
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(StatusUnderReview) {
		t.Error("expected under_review to be valid")
	}
	if ValidStatus("bogus") {
		t.Error("expected bogus status to be invalid")
	}
}
