package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/db"
	"github.com/crudclinic/clinic/pkg/pagination"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool db.Querier
}

func NewPatientRepo(pool db.Querier) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

const patientCols = `id, name, email, COALESCE(phone, ''), created_at`

func (r *patientRepoPG) scanRow(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func patientWriteErr(err error) error {
	switch {
	case db.IsNoRows(err):
		return apperr.NotFound("patient not found")
	case db.IsUniqueViolation(err):
		return apperr.Conflict("email already exists")
	}
	return err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO patients (name, email, phone) VALUES ($1, $2, $3) RETURNING id, created_at`,
		p.Name, p.Email, p.Phone,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return patientWriteErr(err)
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, db.Translate(err, "patient")
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE patients SET name = $2, email = $3, phone = $4 WHERE id = $1 RETURNING created_at`,
		p.ID, p.Name, p.Email, p.Phone,
	).Scan(&p.CreatedAt)
	if err != nil {
		return patientWriteErr(err)
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.Conflict("patient has appointments")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, page pagination.Params) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY id`+page.SQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []*Patient{}
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *patientRepoPG) FindIDByEmail(ctx context.Context, email string) (int64, bool, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT id FROM patients WHERE email = $1`, email).Scan(&id)
	if db.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// -- Doctor Repository --

type doctorRepoPG struct {
	pool db.Querier
}

func NewDoctorRepo(pool db.Querier) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

const doctorCols = `id, name, specialty, created_at`

func (r *doctorRepoPG) scanRow(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO doctors (name, specialty) VALUES ($1, $2) RETURNING id, created_at`,
		d.Name, d.Specialty,
	).Scan(&d.ID, &d.CreatedAt)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
	if err != nil {
		return nil, db.Translate(err, "doctor")
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE doctors SET name = $2, specialty = $3 WHERE id = $1 RETURNING created_at`,
		d.ID, d.Name, d.Specialty,
	).Scan(&d.CreatedAt)
	return db.Translate(err, "doctor")
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.Conflict("doctor has appointments")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context, page pagination.Params) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+` FROM doctors ORDER BY id`+page.SQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := []*Doctor{}
	for rows.Next() {
		d, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (r *doctorRepoPG) FindIDByNameSpecialty(ctx context.Context, name, specialty string) (int64, bool, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id FROM doctors WHERE name = $1 AND specialty = $2 ORDER BY id LIMIT 1`,
		name, specialty,
	).Scan(&id)
	if db.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
