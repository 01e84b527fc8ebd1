package vets

import (
	"context"
	"fmt"

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

const vetCols = `id, full_name, sector, district, is_available, user_type, created_at, updated_at`

func scanVet(row pgx.Row) (*Veterinarian, error) {
	var v Veterinarian
	err := row.Scan(&v.ID, &v.FullName, &v.Sector, &v.District, &v.IsAvailable,
		&v.UserType, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVets(rows pgx.Rows) ([]*Veterinarian, error) {
	var result []*Veterinarian
	for rows.Next() {
		v, err := scanVet(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Veterinarian, error) {
	return scanVet(r.pool.QueryRow(ctx, `SELECT `+vetCols+` FROM veterinarian WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Veterinarian, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}

	if f.UserType != "" {
		args = append(args, f.UserType)
		where += fmt.Sprintf(` AND user_type = $%d`, len(args))
	}
	if f.Sector != "" {
		args = append(args, f.Sector)
		where += fmt.Sprintf(` AND sector = $%d`, len(args))
	}
	if f.District != "" {
		args = append(args, f.District)
		where += fmt.Sprintf(` AND district = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM veterinarian `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+vetCols+` FROM veterinarian `+where+
			fmt.Sprintf(` ORDER BY full_name, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := collectVets(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *repoPG) ListByLocation(ctx context.Context, sector, district string) ([]*Veterinarian, error) {
	// Empty parameters must not match vets with a blank sector/district.
	rows, err := r.pool.Query(ctx, `
		SELECT `+vetCols+` FROM veterinarian
		WHERE user_type = 'local_vet'
		  AND (($1 <> '' AND sector = $1) OR ($2 <> '' AND district = $2))
		ORDER BY full_name, id`, sector, district)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVets(rows)
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Veterinarian, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vetCols+` FROM veterinarian ORDER BY full_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVets(rows)
}
