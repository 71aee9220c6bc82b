package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient is one registry entry, keyed by the hospital IP number. Orders
// denormalize patient fields at submission time, so edits here never
// rewrite history.
type Patient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	IPNumber   string    `db:"ip_number" json:"ip_number"`
	Name       string    `db:"name" json:"name"`
	Age        int       `db:"age" json:"age"`
	AgeUnit    string    `db:"ageunit" json:"ageunit"`
	Sex        string    `db:"sex" json:"sex"`
	Department string    `db:"department" json:"department"`
	Unit       string    `db:"unit" json:"unit"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
