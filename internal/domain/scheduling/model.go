package scheduling

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	DefaultStatus        = "scheduled"
	DefaultPaymentMethod = "cash"
)

// maxAmount is the first value that no longer fits NUMERIC(10,2).
var maxAmount = decimal.New(1, 8)

// Appointment maps to the appointments table. The patient and doctor
// fields are filled from joins on reads and are ignored on writes.
type Appointment struct {
	ID            int64           `db:"id" json:"id"`
	PatientID     int64           `db:"patient_id" json:"patient_id" validate:"required,gt=0"`
	DoctorID      int64           `db:"doctor_id" json:"doctor_id" validate:"required,gt=0"`
	Date          string          `db:"appointment_date" json:"appointment_date" validate:"required,date"`
	Time          string          `db:"appointment_time" json:"appointment_time" validate:"required,clocktime"`
	Status        string          `db:"status" json:"status" validate:"max=30"`
	PaymentMethod string          `db:"payment_method" json:"payment_method" validate:"max=30"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`

	PatientName  string `json:"patient_name,omitempty"`
	PatientEmail string `json:"patient_email,omitempty"`
	DoctorName   string `json:"doctor_name,omitempty"`
	Specialty    string `json:"specialty,omitempty"`
}

// applyDefaults trims free-text fields and fills status, payment method and
// amount when they are absent.
func (a *Appointment) applyDefaults() {
	a.Date = strings.TrimSpace(a.Date)
	a.Time = strings.TrimSpace(a.Time)
	a.Status = strings.TrimSpace(a.Status)
	a.PaymentMethod = strings.TrimSpace(a.PaymentMethod)
	if a.Status == "" {
		a.Status = DefaultStatus
	}
	if a.PaymentMethod == "" {
		a.PaymentMethod = DefaultPaymentMethod
	}
	a.Amount = a.Amount.Round(2)
}
