package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/crudclinic/clinic/internal/config"
	"github.com/crudclinic/clinic/internal/domain/bulkimport"
	"github.com/crudclinic/clinic/internal/domain/identity"
	"github.com/crudclinic/clinic/internal/domain/scheduling"
	"github.com/crudclinic/clinic/internal/platform/db"
)

// Exit codes.
const (
	exitOK         = 0
	exitUnreadable = 1
	exitAborted    = 2
)

// importFunc writes one parsed batch.
type importFunc func(ctx context.Context, rows []bulkimport.Row) (bulkimport.Result, error)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, connectImporter))
}

func run(args []string, stdout, stderr io.Writer, open func(ctx context.Context) (importFunc, func(), error)) int {
	code := exitOK
	var file string

	cmd := &cobra.Command{
		Use:           "clinic-import --file=<path>",
		Short:         "Import appointments from a CSV file in one transaction",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Fail on the file before touching the database.
			rows, err := bulkimport.ReadFile(file)
			if err != nil {
				code = exitCode(err)
				return err
			}

			ctx := context.Background()
			importBatch, closeFn, err := open(ctx)
			if err != nil {
				code = exitAborted
				return err
			}
			defer closeFn()

			res, err := importBatch(ctx, rows)
			if err != nil {
				code = exitCode(err)
				return err
			}
			fmt.Fprintln(stdout, res.Created())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path of the CSV file to import")
	_ = cmd.MarkFlagRequired("file")
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if code == exitOK {
			code = exitUnreadable
		}
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, bulkimport.ErrUnreadable), errors.Is(err, bulkimport.ErrMalformed):
		return exitUnreadable
	}
	return exitAborted
}

func connectImporter(ctx context.Context) (importFunc, func(), error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, nil, err
	}

	people := identity.NewService(identity.NewPatientRepo(pool), identity.NewDoctorRepo(pool))
	store := bulkimport.NewStore(people, scheduling.NewAppointmentRepo(pool))
	importer := bulkimport.NewImporter(db.NewTxRunner(pool), store, logger)
	return importer.Import, pool.Close, nil
}
