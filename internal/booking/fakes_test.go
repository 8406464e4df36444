package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

// fakeClock is a settable Clock for deterministic expiry and fee tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// memStore is an in-memory implementation of every store interface the core
// depends on. It honours the same contracts as the production repositories:
// ErrNotFound for unknown ids, (nil, nil) for normally-absent records, a
// transactional-style capacity re-check on appointment insert, a conditional
// hold insert, and lazy hold expiry against the clock.
type memStore struct {
	services  map[string]*model.Service
	providers map[string]*model.Provider
	weekly    map[string]*model.WeeklyAvailability   // providerID|dayOfWeek
	excs      map[string]*model.AvailabilityException // providerID|date
	appts     map[string]*model.Appointment
	holds     map[string]*model.ReservationHold
	payments  map[string]*model.Payment // by appointment id
	refunded  []string
	clock     *fakeClock
}

func newMemStore(clock *fakeClock) *memStore {
	return &memStore{
		services:  make(map[string]*model.Service),
		providers: make(map[string]*model.Provider),
		weekly:    make(map[string]*model.WeeklyAvailability),
		excs:      make(map[string]*model.AvailabilityException),
		appts:     make(map[string]*model.Appointment),
		holds:     make(map[string]*model.ReservationHold),
		payments:  make(map[string]*model.Payment),
		clock:     clock,
	}
}

func (s *memStore) GetService(ctx context.Context, id string) (*model.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, fmt.Errorf("%w: service %s", ErrNotFound, id)
	}
	cp := *svc
	return &cp, nil
}

func (s *memStore) GetProvider(ctx context.Context, id string) (*model.Provider, error) {
	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s", ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) GetWeekly(ctx context.Context, providerID, dayOfWeek string) (*model.WeeklyAvailability, error) {
	w, ok := s.weekly[providerID+"|"+dayOfWeek]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (s *memStore) GetException(ctx context.Context, providerID string, date schedule.Date) (*model.AvailabilityException, error) {
	e, ok := s.excs[providerID+"|"+date.String()]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, ok := s.appts[id]
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	cp := *a
	return &cp, nil
}

func (s *memStore) ListForDay(ctx context.Context, providerID, serviceID string, date schedule.Date) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range s.appts {
		if a.ProviderID == providerID && a.ServiceID == serviceID && a.Date.Equal(date) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memStore) CreateAppointment(ctx context.Context, appt *model.Appointment, durationMinutes, capacity int) error {
	start := appt.Time
	end := appt.Time.Add(durationMinutes)
	count := 0
	for _, a := range s.appts {
		if a.ProviderID != appt.ProviderID || a.ServiceID != appt.ServiceID || !a.Date.Equal(appt.Date) {
			continue
		}
		if a.Status == model.StatusCancelled {
			continue
		}
		if a.Time < end && a.Time.Add(durationMinutes) > start {
			count++
		}
	}
	if count >= capacity {
		return fmt.Errorf("%w: service capacity reached for this time slot", ErrConflict)
	}
	cp := *appt
	s.appts[appt.ID] = &cp
	return nil
}

func (s *memStore) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	a, ok := s.appts[id]
	if !ok {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	a.Status = status
	return nil
}

func (s *memStore) UpdateNotes(ctx context.Context, id, notes string) error {
	a, ok := s.appts[id]
	if !ok {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	a.Notes = notes
	return nil
}

func (s *memStore) Reschedule(ctx context.Context, id string, date schedule.Date, t schedule.TimeOfDay) error {
	a, ok := s.appts[id]
	if !ok {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	a.Date = date
	a.Time = t
	return nil
}

func (s *memStore) pruneHolds() {
	now := s.clock.Now()
	for id, h := range s.holds {
		if !h.Active(now) {
			delete(s.holds, id)
		}
	}
}

func (s *memStore) GetHold(ctx context.Context, id string) (*model.ReservationHold, error) {
	s.pruneHolds()
	h, ok := s.holds[id]
	if !ok {
		return nil, fmt.Errorf("%w: hold %s", ErrNotFound, id)
	}
	cp := *h
	return &cp, nil
}

func (s *memStore) ListActive(ctx context.Context, providerID, serviceID string, date schedule.Date, t schedule.TimeOfDay) ([]model.ReservationHold, error) {
	s.pruneHolds()
	var out []model.ReservationHold
	for _, h := range s.holds {
		if h.ProviderID == providerID && h.ServiceID == serviceID && h.Date.Equal(date) && h.Time == t {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (s *memStore) InsertHold(ctx context.Context, h *model.ReservationHold) error {
	s.pruneHolds()
	for _, existing := range s.holds {
		if existing.ProviderID == h.ProviderID && existing.ServiceID == h.ServiceID &&
			existing.Date.Equal(h.Date) && existing.Time == h.Time {
			return fmt.Errorf("%w: slot already held", ErrConflict)
		}
	}
	cp := *h
	s.holds[h.ID] = &cp
	return nil
}

func (s *memStore) DeleteHold(ctx context.Context, id string) error {
	if _, ok := s.holds[id]; !ok {
		return fmt.Errorf("%w: hold %s", ErrNotFound, id)
	}
	delete(s.holds, id)
	return nil
}

func (s *memStore) PruneExpired(ctx context.Context) (int64, error) {
	before := len(s.holds)
	s.pruneHolds()
	return int64(before - len(s.holds)), nil
}

func (s *memStore) GetCompletedByAppointment(ctx context.Context, appointmentID string) (*model.Payment, error) {
	p, ok := s.payments[appointmentID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) MarkRefunded(ctx context.Context, id string) error {
	s.refunded = append(s.refunded, id)
	return nil
}

func mustTime(t *testing.T, s string) schedule.TimeOfDay {
	t.Helper()
	v, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return v
}

func timePtr(v schedule.TimeOfDay) *schedule.TimeOfDay { return &v }

// monday is the reference booking date used across the core tests.
var monday = schedule.NewDate(2025, time.June, 16)

// newFixture seeds a provider with a 60 minute, $100 service and a standard
// monday 09:00-17:00 template with a 12:00-13:00 lunch break. The clock
// starts the prior afternoon.
func newFixture(t *testing.T) (*memStore, *fakeClock, *Core) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, time.June, 15, 15, 0, 0, 0, time.UTC)}
	store := newMemStore(clock)
	store.providers["p1"] = &model.Provider{ID: "p1", Name: "Studio One"}
	store.services["s1"] = &model.Service{
		ID:              "s1",
		ProviderID:      "p1",
		Name:            "Deep Tissue Massage",
		DurationMinutes: 60,
		Price:           100,
		Capacity:        1,
		IsActive:        true,
	}
	store.weekly["p1|monday"] = &model.WeeklyAvailability{
		ID:          "w1",
		ProviderID:  "p1",
		DayOfWeek:   "monday",
		StartTime:   mustTime(t, "09:00"),
		EndTime:     mustTime(t, "17:00"),
		Breaks:      []schedule.Range{{Start: mustTime(t, "12:00"), End: mustTime(t, "13:00")}},
		IsAvailable: true,
	}
	core := NewCore(store, store, NewResolver(store), store, store, store, clock)
	return store, clock, core
}
