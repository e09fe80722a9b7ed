package scheduling

import (
	"context"

	"github.com/crudclinic/clinic/internal/platform/apperr"
	"github.com/crudclinic/clinic/internal/platform/validate"
	"github.com/crudclinic/clinic/pkg/pagination"
)

type Service struct {
	appts AppointmentRepository
}

func NewService(appts AppointmentRepository) *Service {
	return &Service{appts: appts}
}

func (s *Service) check(a *Appointment) error {
	a.applyDefaults()
	if err := validate.Struct(a); err != nil {
		return err
	}
	if a.Amount.IsNegative() {
		return apperr.BadRequest("amount must not be negative")
	}
	if a.Amount.GreaterThanOrEqual(maxAmount) {
		return apperr.BadRequest("amount is too large")
	}
	return nil
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if err := s.check(a); err != nil {
		return err
	}
	return s.appts.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	if err := s.check(a); err != nil {
		return err
	}
	return s.appts.Update(ctx, a)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.appts.Delete(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, page pagination.Params) ([]*Appointment, error) {
	return s.appts.List(ctx, page)
}
