package identity

import (
	"strings"
	"time"
)

type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,max=100"`
	Phone     string    `json:"phone" validate:"required,max=20"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Patient) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
}

type Doctor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Specialty string    `json:"specialty" validate:"required,max=100"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *Doctor) normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Specialty = strings.TrimSpace(d.Specialty)
}
