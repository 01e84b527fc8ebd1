package farmers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const farmerCols = `id, full_name, sector, district, approved, created_at, updated_at`

func scanFarmer(row pgx.Row) (*Farmer, error) {
	var f Farmer
	err := row.Scan(&f.ID, &f.FullName, &f.Sector, &f.District, &f.Approved,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFarmers(rows pgx.Rows) ([]*Farmer, error) {
	var result []*Farmer
	for rows.Next() {
		f, err := scanFarmer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Farmer, error) {
	return scanFarmer(r.pool.QueryRow(ctx, `SELECT `+farmerCols+` FROM farmer WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, approved *bool, limit, offset int) ([]*Farmer, int, error) {
	where := ``
	args := []interface{}{}
	if approved != nil {
		where = ` WHERE approved = $1`
		args = append(args, *approved)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM farmer`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + farmerCols + ` FROM farmer` + where + ` ORDER BY full_name, id`
	if approved != nil {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := collectFarmers(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Farmer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+farmerCols+` FROM farmer ORDER BY full_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFarmers(rows)
}
