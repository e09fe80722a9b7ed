package scheduling

import (
	"context"

	"github.com/crudclinic/clinic/pkg/pagination"
)

type AppointmentRepository interface {
	// Create inserts a and fills its generated and joined fields.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
	// List orders by date, time and id, newest first.
	List(ctx context.Context, page pagination.Params) ([]*Appointment, error)
}
