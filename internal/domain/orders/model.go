package orders

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. The set is flat: any status may move to any other, and
// pending is the only legal default at creation.
const (
	StatusPending         = "pending"
	StatusAccepted        = "accepted"
	StatusRejected        = "rejected"
	StatusFlagged         = "flagged"
	StatusBilling         = "billing"
	StatusRejectedFromLab = "rejected_from_lab"
)

var validStatuses = map[string]bool{
	StatusPending:         true,
	StatusAccepted:        true,
	StatusRejected:        true,
	StatusFlagged:         true,
	StatusBilling:         true,
	StatusRejectedFromLab: true,
}

// ValidStatus reports whether s is one of the six recognized statuses.
func ValidStatus(s string) bool { return validStatuses[s] }

// LabOrder maps to the lab_order table. OrderID is the human-readable
// requisition number ("OR25-000001"); it is assigned once at creation and
// never changes.
type LabOrder struct {
	ID              uuid.UUID `db:"id" json:"id"`
	OrderID         string    `db:"order_id" json:"order_id"`
	PatientName     string    `db:"patient_name" json:"patient_name"`
	IPNumber        string    `db:"ip_number" json:"ip_number"`
	Age             int       `db:"age" json:"age"`
	AgeUnit         string    `db:"ageunit" json:"ageunit"` // y, m, d
	Sex             string    `db:"sex" json:"sex"`         // M, F
	Department      string    `db:"department" json:"department"`
	Unit            string    `db:"unit" json:"unit"`
	IPOP            string    `db:"ipop" json:"ipop"` // ip, op
	Status          string    `db:"status" json:"status"`
	AllTestsStatus  bool      `db:"all_tests_status" json:"all_tests_status"`
	ClinicalHistory string    `db:"clinical_history" json:"clinical_history"`
	Username        string    `db:"username" json:"username"`
	Role            string    `db:"role" json:"role"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	// Populated on read, not stored on the row itself.
	TestIDs      []int64       `db:"-" json:"tests"`
	TestStatuses []*TestStatus `db:"-" json:"test_statuses,omitempty"`
	Comments     []*LabComment `db:"-" json:"comments,omitempty"`
}

// TestStatus maps to the test_status table: the status of one test within
// one order. The (order, test) pair is unique.
type TestStatus struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderUID  uuid.UUID `db:"order_uid" json:"-"`
	OrderID   string    `db:"order_id" json:"order_id"`
	TestID    int64     `db:"test_id" json:"test_id"`
	Status    string    `db:"status" json:"status"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LabComment maps to the lab_comment table. Comments are append-only audit
// trail entries; they are never edited or deleted.
type LabComment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderUID  uuid.UUID `db:"order_uid" json:"-"`
	OrderID   string    `db:"order_id" json:"order_id"`
	Comment   string    `db:"comment" json:"comment"`
	Username  string    `db:"username" json:"username"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// applyDefaults fills the original system's column defaults for fields the
// caller left empty.
func (o *LabOrder) applyDefaults() {
	if o.PatientName == "" {
		o.PatientName = "NA"
	}
	if o.IPNumber == "" {
		o.IPNumber = "NA"
	}
	if o.AgeUnit == "" {
		o.AgeUnit = "y"
	}
	if o.Sex == "" {
		o.Sex = "M"
	}
	if o.Department == "" {
		o.Department = "GWH"
	}
	if o.Unit == "" {
		o.Unit = "OTHER"
	}
	if o.IPOP == "" {
		o.IPOP = "ip"
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
}

// StatusCounts holds the aggregate order counts exposed by the stats
// endpoint.
type StatusCounts struct {
	Total           int `json:"total_orders"`
	Pending         int `json:"pending_orders"`
	Accepted        int `json:"accepted_orders"`
	Rejected        int `json:"rejected_orders"`
	Flagged         int `json:"flagged_orders"`
	Billing         int `json:"billing_orders"`
	RejectedFromLab int `json:"rejected_from_lab_orders"`
}

// GroupCount is one row of a grouped aggregate (per department, unit, or
// test name).
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Stats is the full aggregate payload for the stats endpoint.
type Stats struct {
	StatusCounts
	Departments []GroupCount `json:"departments"`
	Units       []GroupCount `json:"units"`
	Tests       []GroupCount `json:"tests_ordered"`
}
