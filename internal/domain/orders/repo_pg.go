package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labreq/labreq/internal/platform/db"
)

// =========== Order Repository ===========

type orderRepoPG struct{ pool *pgxpool.Pool }

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository {
	return &orderRepoPG{pool: pool}
}

func (r *orderRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const orderCols = `id, order_id, patient_name, ip_number, age, ageunit, sex,
	department, unit, ipop, status, all_tests_status, clinical_history,
	username, role, created_at`

func (r *orderRepoPG) scanOrder(row pgx.Row) (*LabOrder, error) {
	var o LabOrder
	err := row.Scan(&o.ID, &o.OrderID, &o.PatientName, &o.IPNumber, &o.Age, &o.AgeUnit, &o.Sex,
		&o.Department, &o.Unit, &o.IPOP, &o.Status, &o.AllTestsStatus, &o.ClinicalHistory,
		&o.Username, &o.Role, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *orderRepoPG) Create(ctx context.Context, o *LabOrder) error {
	o.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_order (id, order_id, patient_name, ip_number, age, ageunit, sex,
			department, unit, ipop, status, all_tests_status, clinical_history, username, role)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at`,
		o.ID, o.OrderID, o.PatientName, o.IPNumber, o.Age, o.AgeUnit, o.Sex,
		o.Department, o.Unit, o.IPOP, o.Status, o.AllTestsStatus, o.ClinicalHistory,
		o.Username, o.Role).Scan(&o.CreatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateOrderID, o.OrderID)
	}
	return err
}

func (r *orderRepoPG) MaxOrderID(ctx context.Context, prefix string) (string, error) {
	var max string
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT order_id FROM lab_order
		WHERE order_id LIKE $1 || '%'
		ORDER BY order_id DESC
		LIMIT 1`, prefix).Scan(&max)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return max, err
}

func (r *orderRepoPG) OrderIDExists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lab_order WHERE order_id = $1)`, orderID).Scan(&exists)
	return exists, err
}

func (r *orderRepoPG) SetTests(ctx context.Context, orderUID uuid.UUID, testIDs []int64) error {
	for _, tid := range testIDs {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO lab_order_tests (order_uid, test_id)
			VALUES ($1, $2)
			ON CONFLICT (order_uid, test_id) DO NOTHING`, orderUID, tid)
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %d", ErrUnknownTest, tid)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepoPG) GetByOrderID(ctx context.Context, orderID string) (*LabOrder, error) {
	return r.scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM lab_order WHERE order_id = $1`, orderID))
}

func (r *orderRepoPG) GetTestIDs(ctx context.Context, orderUID uuid.UUID) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT test_id FROM lab_order_tests WHERE order_uid = $1 ORDER BY test_id`, orderUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *orderRepoPG) UpdateStatus(ctx context.Context, orderUID uuid.UUID, status string, allTests bool) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_order SET status = $2, all_tests_status = $3
		WHERE id = $1`, orderUID, status, allTests)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepoPG) List(ctx context.Context, limit, offset int) ([]*LabOrder, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_order`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orderCols+` FROM lab_order ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LabOrder
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

// Search mirrors the request layer's filters: patient_name and ip_number
// are OR-combined substring matches, everything else is ANDed.
func (r *orderRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*LabOrder, int, error) {
	where := ``
	var args []interface{}
	idx := 1

	and := func(clause string, value interface{}) {
		where += fmt.Sprintf(` AND `+clause, idx)
		args = append(args, value)
		idx++
	}

	name, ip := params["patient_name"], params["ip_number"]
	switch {
	case name != "" && ip != "":
		where += fmt.Sprintf(` AND (patient_name ILIKE '%%' || $%d || '%%' OR ip_number ILIKE '%%' || $%d || '%%')`, idx, idx+1)
		args = append(args, name, ip)
		idx += 2
	case name != "":
		and(`patient_name ILIKE '%%' || $%d || '%%'`, name)
	case ip != "":
		and(`ip_number ILIKE '%%' || $%d || '%%'`, ip)
	}

	if p := params["department"]; p != "" {
		and(`department ILIKE $%d`, p)
	}
	if p := params["status"]; p != "" {
		and(`status ILIKE $%d`, p)
	}
	if p := params["unit"]; p != "" {
		and(`unit ILIKE $%d`, p)
	}
	if p := params["created_by"]; p != "" {
		and(`username ILIKE '%%' || $%d || '%%'`, p)
	}
	if p := params["date_from"]; p != "" {
		and(`created_at >= $%d`, p)
	}
	if p := params["date_to"]; p != "" {
		and(`created_at <= $%d`, p)
	}
	if p := params["age_min"]; p != "" {
		and(`age >= $%d`, p)
	}
	if p := params["age_max"]; p != "" {
		and(`age <= $%d`, p)
	}
	if p := params["test_name"]; p != "" {
		where += fmt.Sprintf(` AND id IN (
			SELECT lot.order_uid FROM lab_order_tests lot
			JOIN lab_test lt ON lt.id = lot.test_id
			WHERE lt.name ILIKE '%%' || $%d || '%%')`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_order WHERE 1=1`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderCols + ` FROM lab_order WHERE 1=1` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LabOrder
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

func (r *orderRepoPG) Stats(ctx context.Context, dateFrom, dateTo *time.Time) (*Stats, error) {
	where := ``
	var args []interface{}
	idx := 1
	if dateFrom != nil {
		where += fmt.Sprintf(` AND created_at >= $%d`, idx)
		args = append(args, *dateFrom)
		idx++
	}
	if dateTo != nil {
		where += fmt.Sprintf(` AND created_at <= $%d`, idx)
		args = append(args, *dateTo)
		idx++
	}

	var st Stats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'accepted'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'flagged'),
			COUNT(*) FILTER (WHERE status = 'billing'),
			COUNT(*) FILTER (WHERE status = 'rejected_from_lab')
		FROM lab_order WHERE 1=1`+where, args...).
		Scan(&st.Total, &st.Pending, &st.Accepted, &st.Rejected, &st.Flagged, &st.Billing, &st.RejectedFromLab)
	if err != nil {
		return nil, err
	}

	groupCount := func(query string) ([]GroupCount, error) {
		rows, err := r.conn(ctx).Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var groups []GroupCount
		for rows.Next() {
			var g GroupCount
			if err := rows.Scan(&g.Key, &g.Count); err != nil {
				return nil, err
			}
			groups = append(groups, g)
		}
		return groups, rows.Err()
	}

	if st.Departments, err = groupCount(`
		SELECT department, COUNT(*) FROM lab_order WHERE 1=1` + where + `
		GROUP BY department ORDER BY COUNT(*) DESC`); err != nil {
		return nil, err
	}
	if st.Units, err = groupCount(`
		SELECT unit, COUNT(*) FROM lab_order WHERE 1=1` + where + `
		GROUP BY unit ORDER BY COUNT(*) DESC`); err != nil {
		return nil, err
	}
	if st.Tests, err = groupCount(`
		SELECT lt.name, COUNT(*) FROM lab_order o
		JOIN lab_order_tests lot ON lot.order_uid = o.id
		JOIN lab_test lt ON lt.id = lot.test_id
		WHERE 1=1` + where + `
		GROUP BY lt.name ORDER BY COUNT(*) DESC`); err != nil {
		return nil, err
	}
	return &st, nil
}

// =========== TestStatus Repository ===========

type testStatusRepoPG struct{ pool *pgxpool.Pool }

func NewTestStatusRepoPG(pool *pgxpool.Pool) TestStatusRepository {
	return &testStatusRepoPG{pool: pool}
}

func (r *testStatusRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *testStatusRepoPG) Upsert(ctx context.Context, orderUID uuid.UUID, testID int64, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO test_status (id, order_uid, test_id, status, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (order_uid, test_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`,
		uuid.New(), orderUID, testID, status)
	return err
}

func (r *testStatusRepoPG) ListByOrder(ctx context.Context, orderUID uuid.UUID) ([]*TestStatus, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_uid, test_id, status, updated_at
		FROM test_status WHERE order_uid = $1 ORDER BY test_id`, orderUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TestStatus
	for rows.Next() {
		var ts TestStatus
		if err := rows.Scan(&ts.ID, &ts.OrderUID, &ts.TestID, &ts.Status, &ts.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &ts)
	}
	return items, rows.Err()
}

// =========== Comment Repository ===========

type commentRepoPG struct{ pool *pgxpool.Pool }

func NewCommentRepoPG(pool *pgxpool.Pool) CommentRepository {
	return &commentRepoPG{pool: pool}
}

func (r *commentRepoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *commentRepoPG) Create(ctx context.Context, c *LabComment) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_comment (id, order_uid, comment, username, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		c.ID, c.OrderUID, c.Comment, c.Username, c.Role).Scan(&c.CreatedAt)
}

func (r *commentRepoPG) ListByOrder(ctx context.Context, orderUID uuid.UUID) ([]*LabComment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, order_uid, comment, username, role, created_at
		FROM lab_comment WHERE order_uid = $1 ORDER BY created_at DESC`, orderUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LabComment
	for rows.Next() {
		var c LabComment
		if err := rows.Scan(&c.ID, &c.OrderUID, &c.Comment, &c.Username, &c.Role, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
