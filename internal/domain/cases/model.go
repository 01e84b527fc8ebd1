package cases

import (
	"time"

	"github.com/google/uuid"
)

// Status is the case lifecycle state.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusDiagnosed   Status = "diagnosed"
	StatusTreated     Status = "treated"
	StatusResolved    Status = "resolved"
	StatusEscalated   Status = "escalated"
)

// Urgency is the reporter-declared severity of a case.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// UnknownDisease is the grouping key for cases without a suspected disease.
const UnknownDisease = "Unknown Disease"

// Case maps to the health_case table. A case is a farmer-submitted
// livestock health incident report.
type Case struct {
	ID                        uuid.UUID  `db:"id" json:"id"`
	CaseID                    string     `db:"case_id" json:"case_id"`
	Status                    Status     `db:"status" json:"status"`
	Urgency                   Urgency    `db:"urgency" json:"urgency"`
	SymptomsObserved          string     `db:"symptoms_observed" json:"symptoms_observed"`
	SuspectedDisease          *string    `db:"suspected_disease" json:"suspected_disease,omitempty"`
	ReportedAt                time.Time  `db:"reported_at" json:"reported_at"`
	AssignedVeterinarianID    *uuid.UUID `db:"assigned_veterinarian_id" json:"assigned_veterinarian_id,omitempty"`
	AssignedAt                *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	ReporterID                uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	ReporterName              *string    `db:"reporter_name" json:"reporter_name,omitempty"`
	ReporterSector            *string    `db:"reporter_sector" json:"reporter_sector,omitempty"`
	ReporterDistrict          *string    `db:"reporter_district" json:"reporter_district,omitempty"`
	Sector                    *string    `db:"sector" json:"sector,omitempty"`
	LocationNotes             *string    `db:"location_notes" json:"location_notes,omitempty"`
	FarmerConfirmedCompletion bool       `db:"farmer_confirmed_completion" json:"farmer_confirmed_completion"`
	FarmerConfirmedAt         *time.Time `db:"farmer_confirmed_at" json:"farmer_confirmed_at,omitempty"`
	CreatedAt                 time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time  `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether no further automatic transition is defined for
// the case's status.
func (c *Case) IsTerminal() bool {
	return c.Status == StatusResolved || c.Status == StatusEscalated
}

// IsAssigned reports whether the case currently has an assignee.
func (c *Case) IsAssigned() bool {
	return c.AssignedVeterinarianID != nil
}

// CompletionVisible reports whether the farmer completion confirmation is
// meaningful for the current status. A confirmation captured while the case
// was in an earlier state must not be surfaced.
func (c *Case) CompletionVisible() bool {
	return c.Status == StatusTreated || c.Status == StatusResolved
}

// DiseaseKey returns the disease grouping key: the suspected disease name,
// or UnknownDisease when absent.
func (c *Case) DiseaseKey() string {
	if c.SuspectedDisease == nil || *c.SuspectedDisease == "" {
		return UnknownDisease
	}
	return *c.SuspectedDisease
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusDiagnosed, StatusTreated,
		StatusResolved, StatusEscalated:
		return true
	}
	return false
}

// next holds the forward edge of the lifecycle chain.
var next = map[Status]Status{
	StatusPending:     StatusUnderReview,
	StatusUnderReview: StatusDiagnosed,
	StatusDiagnosed:   StatusTreated,
	StatusTreated:     StatusResolved,
}

// CanTransition reports whether a case may move from one status to another
// without an override. Forward moves follow the chain one step at a time;
// escalation is reachable from any non-terminal state.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	if to == StatusEscalated {
		return from != StatusResolved && from != StatusEscalated
	}
	return next[from] == to
}
