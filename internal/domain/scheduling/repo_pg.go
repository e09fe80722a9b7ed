package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/db"
	"github.com/crudclinic/clinic/pkg/pagination"
)

type appointmentRepoPG struct {
	pool db.Querier
}

func NewAppointmentRepo(pool db.Querier) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// joinedCols reads from an appointment row source aliased "a" followed by
// joins.
const joinedCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date::text, a.appointment_time::text,
	a.status, a.payment_method, a.amount, a.created_at,
	p.name, p.email, d.name, d.specialty`

const joins = ` JOIN patients p ON p.id = a.patient_id JOIN doctors d ON d.id = a.doctor_id`

func (r *appointmentRepoPG) scanRow(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
		&a.Status, &a.PaymentMethod, &a.Amount, &a.CreatedAt,
		&a.PatientName, &a.PatientEmail, &a.DoctorName, &a.Specialty,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// writeErr maps a failed insert/update. Dangling references are the
// caller's fault.
func writeErr(err error) error {
	switch {
	case db.IsNoRows(err):
		return apperr.NotFound("appointment not found")
	case db.IsForeignKeyViolation(err):
		if strings.Contains(db.ConstraintName(err), "doctor") {
			return apperr.BadRequest("doctor does not exist")
		}
		return apperr.BadRequest("patient does not exist")
	}
	return err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	row := r.conn(ctx).QueryRow(ctx, `
		WITH a AS (
			INSERT INTO appointments
				(patient_id, doctor_id, appointment_date, appointment_time, status, payment_method, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT `+joinedCols+` FROM a`+joins,
		a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.PaymentMethod, a.Amount,
	)
	stored, err := r.scanRow(row)
	if err != nil {
		return writeErr(err)
	}
	*a = *stored
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+joinedCols+` FROM appointments a`+joins+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, db.Translate(err, "appointment")
	}
	return a, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	row := r.conn(ctx).QueryRow(ctx, `
		WITH a AS (
			UPDATE appointments SET
				patient_id = $2, doctor_id = $3, appointment_date = $4, appointment_time = $5,
				status = $6, payment_method = $7, amount = $8
			WHERE id = $1
			RETURNING *
		)
		SELECT `+joinedCols+` FROM a`+joins,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.PaymentMethod, a.Amount,
	)
	stored, err := r.scanRow(row)
	if err != nil {
		return writeErr(err)
	}
	*a = *stored
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, page pagination.Params) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+joinedCols+` FROM appointments a`+joins+`
		ORDER BY a.appointment_date DESC, a.appointment_time DESC, a.id DESC`+page.SQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := []*Appointment{}
	for rows.Next() {
		a, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
