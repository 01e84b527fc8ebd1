package farmers

import (
	"time"

	"github.com/google/uuid"
)

// Farmer maps to the farmer table. Farmers report cases; their profile
// sector/district backs the location fallback chain when a case carries no
// location snapshot of its own.
type Farmer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Sector    string    `db:"sector" json:"sector"`
	District  string    `db:"district" json:"district"`
	Approved  bool      `db:"approved" json:"approved"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
