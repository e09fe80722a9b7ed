package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/crudclinic/clinic/internal/domain/admin"
	"github.com/crudclinic/clinic/internal/domain/identity"
	"github.com/crudclinic/clinic/internal/domain/scheduling"
	"github.com/crudclinic/clinic/internal/platform/db"
)

var (
	adminCredentials = admin.Credentials{Username: "admin", Password: "admin123", Role: "admin"}

	samplePatients = []identity.Patient{
		{Name: "Juan Pérez", Email: "juan@email.com", Phone: "123-456-7890"},
		{Name: "Ana García", Email: "ana@email.com", Phone: "098-765-4321"},
		{Name: "Carlos López", Email: "carlos@email.com", Phone: "555-123-4567"},
	}

	sampleDoctors = []identity.Doctor{
		{Name: "Dr. María Rodríguez", Specialty: "Cardiology"},
		{Name: "Dr. Pedro Sánchez", Specialty: "Dermatology"},
		{Name: "Dr. Laura Torres", Specialty: "Pediatrics"},
	}

	fakeSpecialties = []string{"Cardiology", "Dermatology", "Pediatrics", "Neurology", "Oncology", "General Medicine"}
	fakeStatuses    = []string{"scheduled", "completed", "cancelled"}
	fakePayments    = []string{"cash", "card", "transfer", "insurance"}
)

// seedStore is what seeding needs from the services.
type seedStore interface {
	EnsureUser(ctx context.Context, cred admin.Credentials) (bool, error)
	EnsurePatient(ctx context.Context, p *identity.Patient) (int64, error)
	EnsureDoctor(ctx context.Context, d *identity.Doctor) (int64, error)
	CreateAppointment(ctx context.Context, a *scheduling.Appointment) error
}

type services struct {
	users  *admin.Service
	people *identity.Service
	appts  *scheduling.Service
}

func (s services) EnsureUser(ctx context.Context, cred admin.Credentials) (bool, error) {
	return s.users.EnsureUser(ctx, cred)
}

func (s services) EnsurePatient(ctx context.Context, p *identity.Patient) (int64, error) {
	return s.people.EnsurePatient(ctx, p)
}

func (s services) EnsureDoctor(ctx context.Context, d *identity.Doctor) (int64, error) {
	return s.people.EnsureDoctor(ctx, d)
}

func (s services) CreateAppointment(ctx context.Context, a *scheduling.Appointment) error {
	return s.appts.CreateAppointment(ctx, a)
}

type seedResult struct {
	AdminCreated bool
	Appointments int
}

// seed inserts the admin user and the sample people, skipping whatever
// already exists, then fake appointments between generated people.
func seed(ctx context.Context, store seedStore, fake int, faker *gofakeit.Faker) (seedResult, error) {
	var res seedResult

	created, err := store.EnsureUser(ctx, adminCredentials)
	if err != nil {
		return res, fmt.Errorf("seed admin: %w", err)
	}
	res.AdminCreated = created

	for i := range samplePatients {
		p := samplePatients[i]
		if _, err := store.EnsurePatient(ctx, &p); err != nil {
			return res, fmt.Errorf("seed patient %s: %w", p.Email, err)
		}
	}
	for i := range sampleDoctors {
		d := sampleDoctors[i]
		if _, err := store.EnsureDoctor(ctx, &d); err != nil {
			return res, fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
	}

	now := time.Now()
	for i := 0; i < fake; i++ {
		patientID, err := store.EnsurePatient(ctx, &identity.Patient{
			Name:  faker.Name(),
			Email: faker.Email(),
			Phone: faker.Phone(),
		})
		if err != nil {
			return res, fmt.Errorf("fake patient: %w", err)
		}
		doctorID, err := store.EnsureDoctor(ctx, &identity.Doctor{
			Name:      "Dr. " + faker.Name(),
			Specialty: faker.RandomString(fakeSpecialties),
		})
		if err != nil {
			return res, fmt.Errorf("fake doctor: %w", err)
		}

		a := fakeAppointment(faker, now)
		a.PatientID, a.DoctorID = patientID, doctorID
		if err := store.CreateAppointment(ctx, a); err != nil {
			return res, fmt.Errorf("fake appointment: %w", err)
		}
		res.Appointments++
	}
	return res, nil
}

// fakeAppointment falls within two months either side of now, during
// office hours.
func fakeAppointment(faker *gofakeit.Faker, now time.Time) *scheduling.Appointment {
	day := faker.DateRange(now.AddDate(0, -2, 0), now.AddDate(0, 2, 0))
	return &scheduling.Appointment{
		Date:          day.Format("2006-01-02"),
		Time:          fmt.Sprintf("%02d:%02d", faker.Number(8, 17), faker.RandomInt([]int{0, 15, 30, 45})),
		Status:        faker.RandomString(fakeStatuses),
		PaymentMethod: faker.RandomString(fakePayments),
		Amount:        decimal.NewFromFloat(faker.Price(20, 300)).Round(2),
	}
}

func seedCmd() *cobra.Command {
	var (
		fake     int
		fakeSeed uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the admin user and sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fake < 0 {
				return fmt.Errorf("--fake must not be negative")
			}

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := services{
				users:  admin.NewService(admin.NewUserRepo(pool), cfg.BcryptCost),
				people: identity.NewService(identity.NewPatientRepo(pool), identity.NewDoctorRepo(pool)),
				appts:  scheduling.NewService(scheduling.NewAppointmentRepo(pool)),
			}

			var res seedResult
			err = db.NewTxRunner(pool).InTx(ctx, func(ctx context.Context) error {
				r, err := seed(ctx, store, fake, gofakeit.New(fakeSeed))
				res = r
				return err
			})
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Env)
			logger.Info().
				Bool("admin_created", res.AdminCreated).
				Int("fake_appointments", res.Appointments).
				Msg("seed complete")
			return nil
		},
	}
	cmd.Flags().IntVar(&fake, "fake", 0, "Number of generated appointments to add")
	cmd.Flags().Uint64Var(&fakeSeed, "fake-seed", 0, "Seed for generated data (0 = random)")
	return cmd
}
