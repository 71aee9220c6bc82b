package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labreq/labreq/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const testCols = `id, name, privilege, vac_col, comp_id, section`

func scanTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.Name, &t.Privilege, &t.VacColor, &t.CompID, &t.Section)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *LabTest) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_test (name, privilege, vac_col, comp_id, section)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		t.Name, t.Privilege, t.VacColor, t.CompID, t.Section).Scan(&t.ID)
}

func (r *repoPG) Get(ctx context.Context, id int64) (*LabTest, error) {
	return scanTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+testCols+` FROM lab_test WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *LabTest) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lab_test SET name = $2, privilege = $3, vac_col = $4, comp_id = $5, section = $6
		WHERE id = $1`,
		t.ID, t.Name, t.Privilege, t.VacColor, t.CompID, t.Section)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_test WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %d", ErrInUse, id)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, section string, privilege int) ([]*LabTest, error) {
	where := ``
	var args []interface{}
	idx := 1
	if section != "" {
		where += fmt.Sprintf(` AND section = $%d`, idx)
		args = append(args, section)
		idx++
	}
	if privilege != 0 {
		where += fmt.Sprintf(` AND privilege <= $%d`, idx)
		args = append(args, privilege)
		idx++
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+testCols+` FROM lab_test WHERE 1=1`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repoPG) ListByComposite(ctx context.Context, compID int64) ([]*LabTest, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+testCols+` FROM lab_test WHERE comp_id = $1 ORDER BY name`, compID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*LabTest, error) {
	var items []*LabTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
