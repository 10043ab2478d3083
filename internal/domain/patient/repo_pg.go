package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, patient_code, patient_name, triage_level, wait_time, department,
	arrival_time, arrival_temp`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.TriageLevel, &p.WaitTime, &p.Department,
		&p.ArrivalTime, &p.ArrivalTemp)
	return &p, err
}

func (r *repoPG) Insert(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	// arrival_time is server-defaulted; read it back so the caller sees the
	// authoritative timestamp.
	return r.pool.QueryRow(ctx, `
		INSERT INTO er_patients_live (id, patient_code, patient_name, triage_level, wait_time, department, arrival_temp)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING arrival_time`,
		p.ID, p.Code, p.Name, p.TriageLevel, p.WaitTime, p.Department, p.ArrivalTemp,
	).Scan(&p.ArrivalTime)
}

func (r *repoPG) DeleteArrivedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM er_patients_live WHERE arrival_time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) ListLive(ctx context.Context, limit int) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM er_patients_live ORDER BY arrival_time DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) ListLivePage(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM er_patients_live`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM er_patients_live ORDER BY arrival_time DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// TryAdvanceGate is a compare-and-swap on the single er_admission_gate row:
// the UPDATE matches only when the stored watermark is stale, so exactly one
// producer wins each interval regardless of how many tick concurrently.
func (r *repoPG) TryAdvanceGate(ctx context.Context, now time.Time, minInterval time.Duration) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE er_admission_gate
		SET last_admission = $1
		WHERE id AND last_admission <= $1 - make_interval(secs => $2)`,
		now, minInterval.Seconds())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
