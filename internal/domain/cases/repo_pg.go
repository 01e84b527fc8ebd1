package cases

import (
	"context"
	"fmt"
	"time"

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

const caseCols = `id, case_id, status, urgency, symptoms_observed, suspected_disease,
	reported_at, assigned_veterinarian_id, assigned_at,
	reporter_id, reporter_name, reporter_sector, reporter_district,
	sector, location_notes,
	farmer_confirmed_completion, farmer_confirmed_at, created_at, updated_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(
		&c.ID, &c.CaseID, &c.Status, &c.Urgency, &c.SymptomsObserved, &c.SuspectedDisease,
		&c.ReportedAt, &c.AssignedVeterinarianID, &c.AssignedAt,
		&c.ReporterID, &c.ReporterName, &c.ReporterSector, &c.ReporterDistrict,
		&c.Sector, &c.LocationNotes,
		&c.FarmerConfirmedCompletion, &c.FarmerConfirmedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCases(rows pgx.Rows) ([]*Case, error) {
	var result []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.pool.QueryRow(ctx, `SELECT `+caseCols+` FROM health_case WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Case, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}

	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where += fmt.Sprintf(` AND (case_id ILIKE $%d OR reporter_name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM health_case `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+caseCols+` FROM health_case `+where+
			fmt.Sprintf(` ORDER BY reported_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := collectCases(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Case, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+caseCols+` FROM health_case ORDER BY reported_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCases(rows)
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Case, error) {
	return scanCase(r.pool.QueryRow(ctx, `
		UPDATE health_case SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+caseCols, id, status))
}

func (r *repoPG) Counts(ctx context.Context) (*Counts, error) {
	counts := &Counts{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status IN ('under_review', 'diagnosed', 'treated')),
			COUNT(*) FILTER (WHERE status = 'resolved')
		FROM health_case`).Scan(&counts.Pending, &counts.InProgress, &counts.Resolved)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *repoPG) Assign(ctx context.Context, id, vetID uuid.UUID, at time.Time) (*Case, error) {
	return scanCase(r.pool.QueryRow(ctx, `
		UPDATE health_case SET assigned_veterinarian_id = $2, assigned_at = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+caseCols, id, vetID, at))
}

func (r *repoPG) Unassign(ctx context.Context, id uuid.UUID) (*Case, error) {
	return scanCase(r.pool.QueryRow(ctx, `
		UPDATE health_case SET assigned_veterinarian_id = NULL, assigned_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING `+caseCols, id))
}
