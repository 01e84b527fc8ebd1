package livestock

import (
	"time"

	"github.com/google/uuid"
)

// Animal maps to the livestock table. Animals are a counting dimension in
// sector analytics and are never mutated by this service.
type Animal struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OwnerID       uuid.UUID `db:"owner_id" json:"owner_id"`
	LivestockType string    `db:"livestock_type" json:"livestock_type"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
