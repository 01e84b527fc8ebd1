package livestock

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Animal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, livestock_type, created_at FROM livestock ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Animal
	for rows.Next() {
		var a Animal
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.LivestockType, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}
