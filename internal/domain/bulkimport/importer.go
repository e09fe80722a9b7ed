package bulkimport

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/crudclinic/clinic/internal/domain/identity"
	"github.com/crudclinic/clinic/internal/domain/scheduling"
	"github.com/crudclinic/clinic/internal/platform/db"
)

var (
	// ErrUnreadable marks an import file that could not be opened.
	ErrUnreadable = errors.New("import file unreadable")
	// ErrAborted marks a batch that was rolled back.
	ErrAborted = errors.New("import aborted")
)

// Store is what one import row needs from the data layer. Every call runs
// on the transaction carried by ctx.
type Store interface {
	EnsurePatient(ctx context.Context, p *identity.Patient) (int64, error)
	EnsureDoctor(ctx context.Context, d *identity.Doctor) (int64, error)
	InsertAppointment(ctx context.Context, a *scheduling.Appointment) error
}

type store struct {
	*identity.Service
	appts scheduling.AppointmentRepository
}

// NewStore upserts people through the identity service and inserts
// appointments straight through the repository, so row values reach the
// database unvalidated.
func NewStore(people *identity.Service, appts scheduling.AppointmentRepository) Store {
	return &store{Service: people, appts: appts}
}

func (s *store) InsertAppointment(ctx context.Context, a *scheduling.Appointment) error {
	return s.appts.Create(ctx, a)
}

// Result is the response of an import. Inserted counts rows read,
// including skipped ones; Created gives the appointments actually added.
type Result struct {
	Success  bool `json:"success"`
	Inserted int  `json:"inserted"`
	Skipped  int  `json:"skipped"`
}

func (r Result) Created() int { return r.Inserted - r.Skipped }

type Importer struct {
	tx     db.Transactor
	store  Store
	logger zerolog.Logger
}

func NewImporter(tx db.Transactor, store Store, logger zerolog.Logger) *Importer {
	return &Importer{tx: tx, store: store, logger: logger}
}

// Import writes rows in a single transaction. Incomplete rows are skipped;
// any store error rolls back the whole batch, upserts included.
func (im *Importer) Import(ctx context.Context, rows []Row) (Result, error) {
	skipped := 0
	err := im.tx.InTx(ctx, func(ctx context.Context) error {
		skipped = 0
		for i, row := range rows {
			if !row.Complete() {
				skipped++
				continue
			}
			if err := im.importRow(ctx, row); err != nil {
				// Line numbers count the header.
				return fmt.Errorf("line %d: %w", i+2, err)
			}
		}
		return nil
	})
	if err != nil {
		im.logger.Error().Err(err).Int("rows", len(rows)).Msg("csv import rolled back")
		return Result{}, fmt.Errorf("%w: %w", ErrAborted, err)
	}

	res := Result{Success: true, Inserted: len(rows), Skipped: skipped}
	im.logger.Info().
		Int("rows", res.Inserted).
		Int("skipped", res.Skipped).
		Int("created", res.Created()).
		Msg("csv import committed")
	return res, nil
}

func (im *Importer) importRow(ctx context.Context, row Row) error {
	patientID, err := im.store.EnsurePatient(ctx, &identity.Patient{
		Name:  row.PatientName,
		Email: row.PatientEmail,
		Phone: row.PatientPhone,
	})
	if err != nil {
		return fmt.Errorf("upsert patient: %w", err)
	}

	doctorID, err := im.store.EnsureDoctor(ctx, &identity.Doctor{
		Name:      row.DoctorName,
		Specialty: row.DoctorSpecialty,
	})
	if err != nil {
		return fmt.Errorf("upsert doctor: %w", err)
	}

	err = im.store.InsertAppointment(ctx, &scheduling.Appointment{
		PatientID:     patientID,
		DoctorID:      doctorID,
		Date:          row.Date,
		Time:          row.Time,
		Status:        row.Status,
		PaymentMethod: row.PaymentMethod,
		Amount:        row.AmountValue(),
	})
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// ReadFile opens and parses the CSV file at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ImportFile parses the file at path completely before importing it.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	rows, err := ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	return im.Import(ctx, rows)
}
