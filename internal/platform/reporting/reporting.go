// Package reporting serves the read-only clinic reports.
package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/db"
	"github.com/crudclinic/clinic/internal/platform/validate"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Parameter kinds.
const (
	KindInt  = "integer"
	KindDate = "date"
)

type Param struct {
	Name string `json:"name"`
	Kind string `json:"type"`
}

// Report is one entry of the catalog. Params are bound to $1..$n in order
// and are all required.
type Report struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`
	SQL         string  `json:"-"`
}

var Catalog = []Report{
	{
		ID:          "all-appointments",
		Name:        "All Appointments",
		Description: "Every appointment with patient and doctor details, newest first",
		Params:      []Param{},
		SQL: `SELECT a.id,
       p.name AS patient_name, p.email AS patient_email, p.phone AS patient_phone,
       d.name AS doctor_name, d.specialty,
       a.appointment_date::text AS appointment_date, a.appointment_time::text AS appointment_time,
       a.status, a.payment_method, a.amount
FROM appointments a
JOIN patients p ON p.id = a.patient_id
JOIN doctors d ON d.id = a.doctor_id
ORDER BY a.appointment_date DESC, a.appointment_time DESC`,
	},
	{
		ID:          "appointments-by-doctor",
		Name:        "Appointments by Doctor",
		Description: "Appointments of one doctor within an inclusive date range",
		Params: []Param{
			{Name: "doctorId", Kind: KindInt},
			{Name: "startDate", Kind: KindDate},
			{Name: "endDate", Kind: KindDate},
		},
		SQL: `SELECT a.id, a.appointment_date::text AS appointment_date, a.appointment_time::text AS appointment_time,
       a.status, a.payment_method, a.amount,
       p.name AS patient_name, d.name AS doctor_name, d.specialty
FROM appointments a
JOIN patients p ON p.id = a.patient_id
JOIN doctors d ON d.id = a.doctor_id
WHERE a.doctor_id = $1
  AND a.appointment_date BETWEEN $2::date AND $3::date
ORDER BY a.appointment_date ASC, a.appointment_time ASC`,
	},
	{
		ID:          "patients-with-many-appointments",
		Name:        "Patients with Many Appointments",
		Description: "Patients with more than three appointments",
		Params:      []Param{},
		SQL: `SELECT p.id AS patient_id, p.name AS patient_name, p.email, COUNT(*) AS appointments_count
FROM appointments a
JOIN patients p ON p.id = a.patient_id
GROUP BY p.id, p.name, p.email
HAVING COUNT(*) > 3
ORDER BY appointments_count DESC, p.id`,
	},
	{
		ID:          "doctors-appointments-last-month",
		Name:        "Doctor Appointments Last Month",
		Description: "Appointment counts per doctor from one month ago through today",
		Params:      []Param{},
		SQL: `SELECT d.id AS doctor_id, d.name AS doctor_name, d.specialty, COUNT(*) AS appointments_count
FROM appointments a
JOIN doctors d ON d.id = a.doctor_id
WHERE a.appointment_date >= (CURRENT_DATE - INTERVAL '1 month')
  AND a.appointment_date < CURRENT_DATE + INTERVAL '1 day'
GROUP BY d.id, d.name, d.specialty
ORDER BY appointments_count DESC, d.id`,
	},
	{
		ID:          "income-by-payment",
		Name:        "Income by Payment Method",
		Description: "Total amount and appointment count per payment method within an inclusive date range",
		Params: []Param{
			{Name: "startDate", Kind: KindDate},
			{Name: "endDate", Kind: KindDate},
		},
		SQL: `SELECT payment_method, SUM(amount) AS total_amount, COUNT(*) AS count
FROM appointments
WHERE appointment_date BETWEEN $1::date AND $2::date
GROUP BY payment_method
ORDER BY total_amount DESC, payment_method`,
	},
}

// FindReport looks up a catalog entry by id.
func FindReport(id string) *Report {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}

// Args validates the query values for r and returns them in bind order.
func (r *Report) Args(get func(name string) string) ([]interface{}, error) {
	var missing []string
	for _, p := range r.Params {
		if strings.TrimSpace(get(p.Name)) == "" {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) == 1 {
		return nil, apperr.BadRequest("%s is required", missing[0])
	}
	if len(missing) > 1 {
		return nil, apperr.BadRequest("%s are required", strings.Join(missing, ", "))
	}

	args := make([]interface{}, 0, len(r.Params))
	for _, p := range r.Params {
		raw := strings.TrimSpace(get(p.Name))
		switch p.Kind {
		case KindInt:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 1 {
				return nil, apperr.BadRequest("%s must be a positive integer", p.Name)
			}
			args = append(args, n)
		case KindDate:
			if !validate.IsDate(raw) {
				return nil, apperr.BadRequest("%s must be a date (YYYY-MM-DD)", p.Name)
			}
			args = append(args, raw)
		default:
			args = append(args, raw)
		}
	}
	return args, nil
}

// Table is a query result that keeps the column order of the statement.
// It marshals as an array of objects.
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			var v interface{}
			if j < len(row) {
				v = row[j]
			}
			val, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Runner executes a report statement.
type Runner interface {
	Run(ctx context.Context, sql string, args ...interface{}) (*Table, error)
}

type pgRunner struct {
	pool db.Querier
}

// NewRunner runs statements on the executor bound to ctx, or on pool.
func NewRunner(pool db.Querier) Runner {
	return &pgRunner{pool: pool}
}

func (r *pgRunner) Run(ctx context.Context, sql string, args ...interface{}) (*Table, error) {
	rows, err := db.QuerierFrom(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &Table{Rows: [][]interface{}{}}
	for _, fd := range rows.FieldDescriptions() {
		t.Columns = append(t.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = jsonValue(v)
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// jsonValue turns driver values into ones that marshal cleanly. NUMERIC
// becomes a decimal so sums keep their exact value.
func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		dv, err := x.Value()
		if err != nil {
			return nil
		}
		s, ok := dv.(string)
		if !ok {
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return s
		}
		return d
	case []byte:
		return string(x)
	}
	return v
}
