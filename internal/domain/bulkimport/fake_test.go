package bulkimport

import (
	"context"
	"errors"

	"github.com/crudclinic/clinic/internal/domain/identity"
	"github.com/crudclinic/clinic/internal/domain/scheduling"
)

// memState is the content of the in-memory store.
type memState struct {
	patients map[string]int64
	doctors  map[[2]string]int64
	appts    []scheduling.Appointment
	nextID   int64
}

func (s memState) clone() memState {
	c := memState{
		patients: make(map[string]int64, len(s.patients)),
		doctors:  make(map[[2]string]int64, len(s.doctors)),
		appts:    append([]scheduling.Appointment(nil), s.appts...),
		nextID:   s.nextID,
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	for k, v := range s.doctors {
		c.doctors[k] = v
	}
	return c
}

var errForced = errors.New("forced insert failure")

// memStore is a Store whose writes are undone by memTx on rollback.
type memStore struct {
	memState
	// failAt makes the n-th appointment insert (1-based) fail.
	failAt  int
	inserts int
	inTx    bool
}

func newMemStore() *memStore {
	return &memStore{memState: memState{
		patients: map[string]int64{},
		doctors:  map[[2]string]int64{},
	}}
}

var errNoTx = errors.New("store used outside a transaction")

func (m *memStore) EnsurePatient(_ context.Context, p *identity.Patient) (int64, error) {
	if !m.inTx {
		return 0, errNoTx
	}
	if id, ok := m.patients[p.Email]; ok {
		return id, nil
	}
	m.nextID++
	m.patients[p.Email] = m.nextID
	return m.nextID, nil
}

func (m *memStore) EnsureDoctor(_ context.Context, d *identity.Doctor) (int64, error) {
	if !m.inTx {
		return 0, errNoTx
	}
	key := [2]string{d.Name, d.Specialty}
	if id, ok := m.doctors[key]; ok {
		return id, nil
	}
	m.nextID++
	m.doctors[key] = m.nextID
	return m.nextID, nil
}

func (m *memStore) InsertAppointment(_ context.Context, a *scheduling.Appointment) error {
	if !m.inTx {
		return errNoTx
	}
	m.inserts++
	if m.failAt > 0 && m.inserts == m.failAt {
		return errForced
	}
	m.nextID++
	a.ID = m.nextID
	m.appts = append(m.appts, *a)
	return nil
}

// memTx snapshots the store on begin and restores it on rollback.
type memTx struct {
	store     *memStore
	commits   int
	rollbacks int
}

func (t *memTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.store.memState.clone()
	t.store.inTx = true
	defer func() { t.store.inTx = false }()

	if err := fn(ctx); err != nil {
		t.store.memState = snap
		t.rollbacks++
		return err
	}
	t.commits++
	return nil
}
