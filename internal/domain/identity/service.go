package identity

import (
	"context"

	"github.com/crudclinic/clinic/internal/platform/validate"
	"github.com/crudclinic/clinic/pkg/pagination"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository) *Service {
	return &Service{patients: patients, doctors: doctors}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	p.normalize()
	if err := validate.Struct(p); err != nil {
		return err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	p.normalize()
	if err := validate.Struct(p); err != nil {
		return err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, page pagination.Params) ([]*Patient, error) {
	return s.patients.List(ctx, page)
}

// EnsurePatient returns the id of the patient with p.Email, inserting p when
// no such patient exists. Callers validate p.
func (s *Service) EnsurePatient(ctx context.Context, p *Patient) (int64, error) {
	id, ok, err := s.patients.FindIDByEmail(ctx, p.Email)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	d.normalize()
	if err := validate.Struct(d); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	d.normalize()
	if err := validate.Struct(d); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, page pagination.Params) ([]*Doctor, error) {
	return s.doctors.List(ctx, page)
}

// EnsureDoctor is EnsurePatient keyed on (name, specialty).
func (s *Service) EnsureDoctor(ctx context.Context, d *Doctor) (int64, error) {
	id, ok, err := s.doctors.FindIDByNameSpecialty(ctx, d.Name, d.Specialty)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return 0, err
	}
	return d.ID, nil
}
