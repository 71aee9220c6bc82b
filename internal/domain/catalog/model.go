package catalog

// Privilege levels gate which roles may order a test directly.
const (
	PrivilegeIntern       = 1
	PrivilegePostgraduate = 2
	PrivilegeStaff        = 3
)

// LabTest is one orderable entry in the test catalog. CompID points at a
// composite parent (a panel this test belongs to), or is nil for
// standalone tests.
type LabTest struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Privilege int    `db:"privilege" json:"privilege"`
	VacColor  string `db:"vac_col" json:"vac_col"`
	CompID    *int64 `db:"comp_id" json:"comp_id,omitempty"`
	Section   string `db:"section" json:"section"`
}

// ValidPrivilege reports whether p is one of the three privilege levels.
func ValidPrivilege(p int) bool {
	return p >= PrivilegeIntern && p <= PrivilegeStaff
}
