package vets

import (
	"time"

	"github.com/google/uuid"
)

// UserType distinguishes field veterinarians from sector-level supervisors.
type UserType string

const (
	// TypeLocalVet is the only eligible assignment target for
	// farmer-reported cases.
	TypeLocalVet  UserType = "local_vet"
	TypeSectorVet UserType = "sector_vet"
)

// Veterinarian maps to the veterinarian table.
type Veterinarian struct {
	ID       uuid.UUID `db:"id" json:"id"`
	FullName string    `db:"full_name" json:"full_name"`
	Sector   string    `db:"sector" json:"sector"`
	District string    `db:"district" json:"district"`
	// IsAvailable is nil when availability has never been reported.
	IsAvailable *bool     `db:"is_available" json:"is_available,omitempty"`
	UserType    UserType  `db:"user_type" json:"user_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Assignable reports whether the veterinarian can receive farmer-reported
// cases. Unknown availability does not block assignment.
func (v *Veterinarian) Assignable() bool {
	if v.UserType != TypeLocalVet {
		return false
	}
	return v.IsAvailable == nil || *v.IsAvailable
}
