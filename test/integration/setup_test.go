package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/crudclinic/clinic/internal/domain/bulkimport"
	"github.com/crudclinic/clinic/internal/domain/identity"
	"github.com/crudclinic/clinic/internal/domain/scheduling"
	"github.com/crudclinic/clinic/internal/platform/db"
	"github.com/crudclinic/clinic/migrations"
)

// testDB holds the shared database infrastructure for integration tests.
type testDB struct {
	Pool    *pgxpool.Pool
	ConnStr string
}

// globalDB is the package-level test database, initialized once in TestMain.
// It stays nil when Docker is unavailable.
var globalDB *testDB

var skipReason string

func TestMain(m *testing.M) {
	ctx := context.Background()

	tdb, cleanup, err := setupPostgres(ctx)
	switch {
	case errors.Is(err, errNoDocker):
		skipReason = err.Error()
		fmt.Fprintf(os.Stderr, "skipping integration tests: %v\n", err)
		os.Exit(m.Run())
	case err != nil:
		fmt.Fprintf(os.Stderr, "failed to setup postgres: %v\n", err)
		os.Exit(1)
	}

	globalDB = tdb
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupPostgres(ctx context.Context) (*testDB, func(), error) {
	connStr, cleanup, err := startPostgres(ctx)
	if err != nil {
		return nil, nil, err
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{URL: connStr, MaxConns: 5})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if _, err := db.NewMigrator(pool, migrations.FS).Up(ctx); err != nil {
		pool.Close()
		cleanup()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	return &testDB{Pool: pool, ConnStr: connStr}, func() {
		pool.Close()
		cleanup()
	}, nil
}

// requireDB skips the test without a database and empties every table.
func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if globalDB == nil {
		t.Skip(skipReason)
	}
	_, err := globalDB.Pool.Exec(context.Background(),
		`TRUNCATE appointments, patients, doctors, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return globalDB.Pool
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// clinic bundles the services wired the way the server wires them.
type clinic struct {
	people   *identity.Service
	appts    *scheduling.Service
	importer *bulkimport.Importer
}

func newClinic(pool *pgxpool.Pool) *clinic {
	people := identity.NewService(identity.NewPatientRepo(pool), identity.NewDoctorRepo(pool))
	apptRepo := scheduling.NewAppointmentRepo(pool)
	return &clinic{
		people:   people,
		appts:    scheduling.NewService(apptRepo),
		importer: bulkimport.NewImporter(db.NewTxRunner(pool), bulkimport.NewStore(people, apptRepo), zerolog.Nop()),
	}
}

func createTestPatient(t *testing.T, c *clinic, name, email string) *identity.Patient {
	t.Helper()
	p := &identity.Patient{Name: name, Email: email, Phone: "555-0100"}
	if err := c.people.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

func createTestDoctor(t *testing.T, c *clinic, name, specialty string) *identity.Doctor {
	t.Helper()
	d := &identity.Doctor{Name: name, Specialty: specialty}
	if err := c.people.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return d
}
