package bulkimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Columns of an import file, matched by header name.
const (
	ColPatientName     = "patient_name"
	ColPatientEmail    = "patient_email"
	ColPatientPhone    = "patient_phone"
	ColDoctorName      = "doctor_name"
	ColDoctorSpecialty = "doctor_specialty"
	ColDate            = "appointment_date"
	ColTime            = "appointment_time"
	ColStatus          = "status"
	ColPaymentMethod   = "payment_method"
	ColAmount          = "amount"
)

// ErrMalformed marks input that could not be read as CSV.
var ErrMalformed = errors.New("malformed import file")

// Row is one data line of an import file with every field trimmed.
type Row struct {
	PatientName     string
	PatientEmail    string
	PatientPhone    string
	DoctorName      string
	DoctorSpecialty string
	Date            string
	Time            string
	Status          string
	PaymentMethod   string
	Amount          string
}

// Complete reports whether every field but amount is present. Incomplete
// rows are skipped, not rejected.
func (r Row) Complete() bool {
	for _, v := range []string{
		r.PatientName, r.PatientEmail, r.PatientPhone,
		r.DoctorName, r.DoctorSpecialty,
		r.Date, r.Time, r.Status, r.PaymentMethod,
	} {
		if v == "" {
			return false
		}
	}
	return true
}

// AmountValue parses amount; empty or unparseable reads as zero.
func (r Row) AmountValue() decimal.Decimal {
	d, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseCSV reads a header line followed by data lines. Unknown columns are
// ignored and missing ones read as empty.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		rows = append(rows, Row{
			PatientName:     field(ColPatientName),
			PatientEmail:    field(ColPatientEmail),
			PatientPhone:    field(ColPatientPhone),
			DoctorName:      field(ColDoctorName),
			DoctorSpecialty: field(ColDoctorSpecialty),
			Date:            field(ColDate),
			Time:            field(ColTime),
			Status:          field(ColStatus),
			PaymentMethod:   field(ColPaymentMethod),
			Amount:          field(ColAmount),
		})
	}
	return rows, nil
}
