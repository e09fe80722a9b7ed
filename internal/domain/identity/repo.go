package identity

import (
	"context"

	"github.com/crudclinic/clinic/pkg/pagination"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page pagination.Params) ([]*Patient, error)
	// FindIDByEmail returns the id of the patient with exactly this email.
	FindIDByEmail(ctx context.Context, email string) (int64, bool, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page pagination.Params) ([]*Doctor, error)
	// FindIDByNameSpecialty returns the lowest id among doctors with exactly
	// this name and specialty.
	FindIDByNameSpecialty(ctx context.Context, name, specialty string) (int64, bool, error)
}
