package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

func TestResolveSlotsFiltersBookedAndHeld(t *testing.T) {
	store, clock, core := newFixture(t)
	ctx := context.Background()

	// A committed booking at 09:00 removes 09:00 and the overlapping 09:30
	// candidate; a hold at 10:00 removes exactly that start time.
	store.appts["a1"] = &model.Appointment{
		ID: "a1", CustomerID: "c9", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "09:00"), Status: model.StatusConfirmed,
	}
	store.holds["h1"] = &model.ReservationHold{
		ID: "h1", ProviderID: "p1", ServiceID: "s1", Date: monday,
		Time: mustTime(t, "10:00"), CustomerID: "c8",
		ExpiresAt: clock.Now().Add(HoldTTL),
	}

	slots, err := core.ResolveSlots(ctx, "p1", "s1", monday, 30)
	if err != nil {
		t.Fatalf("ResolveSlots: %v", err)
	}
	want := []string{"10:30", "11:00", "13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots %v, want %d", len(slots), slots, len(want))
	}
	for i, w := range want {
		if slots[i].String() != w {
			t.Errorf("slot[%d] = %s, want %s", i, slots[i], w)
		}
	}
}

func TestResolveSlotsClosedDayIsEmpty(t *testing.T) {
	_, _, core := newFixture(t)
	tuesday := schedule.NewDate(2025, time.June, 17) // no weekly row

	slots, err := core.ResolveSlots(context.Background(), "p1", "s1", tuesday, 30)
	if err != nil {
		t.Fatalf("ResolveSlots: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Errorf("slots = %v, want empty non-nil", slots)
	}
}

func TestResolveSlotsWrongProvider(t *testing.T) {
	store, _, core := newFixture(t)
	store.providers["p2"] = &model.Provider{ID: "p2"}

	_, err := core.ResolveSlots(context.Background(), "p2", "s1", monday, 30)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestCommitBooking(t *testing.T) {
	store, _, core := newFixture(t)
	ctx := context.Background()

	appt, err := core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "13:00"), Notes: "first visit",
	})
	if err != nil {
		t.Fatalf("CommitBooking: %v", err)
	}
	if appt.ID == "" || appt.Status != model.StatusPending {
		t.Errorf("appt = %+v, want pending with id", appt)
	}
	if appt.Notes != "first visit" {
		t.Errorf("notes = %q", appt.Notes)
	}

	// Capacity 1: the same slot rejects a second customer.
	_, err = core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c2", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "13:00"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second booking err = %v, want ErrConflict", err)
	}

	// An overlapping start time is just as booked.
	_, err = core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c2", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "13:30"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("overlapping booking err = %v, want ErrConflict", err)
	}

	store.services["s1"].IsActive = false
	_, err = core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c3", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "15:00"),
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("inactive service err = %v, want ErrValidation", err)
	}
}

func TestCommitBookingWithHold(t *testing.T) {
	store, _, core := newFixture(t)
	ctx := context.Background()

	hold, err := core.RequestHold(ctx, "p1", "s1", monday, mustTime(t, "14:00"), "c1")
	if err != nil {
		t.Fatalf("RequestHold: %v", err)
	}

	// The hold blocks everyone else, including direct bookings.
	_, err = core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c2", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "14:00"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("booking against foreign hold err = %v, want ErrConflict", err)
	}

	// A different customer cannot ride the hold either.
	_, err = core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c2", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "14:00"), HoldID: hold.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("stolen hold err = %v, want ErrConflict", err)
	}

	// The owner commits through their own hold, which is then consumed.
	appt, err := core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "14:00"), HoldID: hold.ID,
	})
	if err != nil {
		t.Fatalf("CommitBooking with hold: %v", err)
	}
	if appt.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", appt.Status)
	}
	if _, ok := store.holds[hold.ID]; ok {
		t.Error("hold still present after commit")
	}

	// Reusing the consumed hold id fails.
	_, err = core.CommitBooking(ctx, BookingRequest{
		CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "15:00"), HoldID: hold.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("reused hold err = %v, want ErrConflict", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    model.AppointmentStatus
		to      model.AppointmentStatus
		actor   string
		role    Role
		wantErr error
	}{
		{name: "provider confirms pending", from: model.StatusPending, to: model.StatusConfirmed, actor: "p1", role: RoleProvider},
		{name: "customer cannot confirm", from: model.StatusPending, to: model.StatusConfirmed, actor: "c1", role: RoleCustomer, wantErr: ErrForbidden},
		{name: "provider completes confirmed", from: model.StatusConfirmed, to: model.StatusCompleted, actor: "p1", role: RoleProvider},
		{name: "provider completes pending no-show", from: model.StatusPending, to: model.StatusCompleted, actor: "p1", role: RoleProvider},
		{name: "customer cannot complete", from: model.StatusConfirmed, to: model.StatusCompleted, actor: "c1", role: RoleCustomer, wantErr: ErrForbidden},
		{name: "customer cancels", from: model.StatusPending, to: model.StatusCancelled, actor: "c1", role: RoleCustomer},
		{name: "provider cancels", from: model.StatusConfirmed, to: model.StatusCancelled, actor: "p1", role: RoleProvider},
		{name: "cannot confirm twice", from: model.StatusConfirmed, to: model.StatusConfirmed, actor: "p1", role: RoleProvider, wantErr: ErrConflict},
		{name: "terminal rejects everything", from: model.StatusCompleted, to: model.StatusCancelled, actor: "p1", role: RoleProvider, wantErr: ErrConflict},
		{name: "cannot return to pending", from: model.StatusConfirmed, to: model.StatusPending, actor: "p1", role: RoleProvider, wantErr: ErrValidation},
		{name: "unknown status", from: model.StatusPending, to: "archived", actor: "p1", role: RoleProvider, wantErr: ErrValidation},
		{name: "outsider is forbidden", from: model.StatusPending, to: model.StatusCancelled, actor: "c9", role: RoleCustomer, wantErr: ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, core := newFixture(t)
			store.appts["a1"] = &model.Appointment{
				ID: "a1", CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
				Date: monday, Time: mustTime(t, "13:00"), Status: tt.from,
			}
			appt, err := core.UpdateStatus(context.Background(), "a1", tt.actor, tt.role, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if appt.Status != tt.to {
				t.Errorf("status = %s, want %s", appt.Status, tt.to)
			}
		})
	}
}

func TestCancelAppointmentWithLateFee(t *testing.T) {
	store, clock, core := newFixture(t)
	ctx := context.Background()

	store.services["s1"].CancellationPolicy = &model.CancellationPolicy{
		FreeCancelHours:  24,
		LateCancelFeePct: 50,
		NoShowFeePct:     100,
	}
	store.appts["a1"] = &model.Appointment{
		ID: "a1", CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "14:00"), Status: model.StatusConfirmed,
	}
	store.payments["a1"] = &model.Payment{ID: "pay1", AppointmentID: "a1", Amount: 100, Status: "completed"}

	// 5 hours before the appointment: inside the 24 hour window.
	clock.now = time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)

	result, err := core.CancelAppointment(ctx, "a1", "c1", RoleCustomer)
	if err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if result.FeeAmount != 50 || result.RefundAmount != 50 || result.CanCancelFree {
		t.Errorf("result = %+v, want fee 50 refund 50", result)
	}
	if store.appts["a1"].Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", store.appts["a1"].Status)
	}
	if len(store.refunded) != 1 || store.refunded[0] != "pay1" {
		t.Errorf("refunded = %v, want [pay1]", store.refunded)
	}

	// A cancelled appointment cannot be cancelled again.
	if _, err := core.CancelAppointment(ctx, "a1", "c1", RoleCustomer); !errors.Is(err, ErrConflict) {
		t.Errorf("second cancel err = %v, want ErrConflict", err)
	}
}

func TestCancelAppointmentFreeLeavesPaymentAlone(t *testing.T) {
	store, _, core := newFixture(t)

	store.appts["a1"] = &model.Appointment{
		ID: "a1", CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "14:00"), Status: model.StatusPending,
	}
	store.payments["a1"] = &model.Payment{ID: "pay1", AppointmentID: "a1", Amount: 100, Status: "completed"}

	// No policy anywhere: free cancellation, payment untouched.
	result, err := core.CancelAppointment(context.Background(), "a1", "p1", RoleProvider)
	if err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if result.FeeAmount != 0 || result.RefundAmount != 100 || !result.CanCancelFree {
		t.Errorf("result = %+v, want free full refund", result)
	}
	if len(store.refunded) != 0 {
		t.Errorf("refunded = %v, want none", store.refunded)
	}
}

func TestCancelAppointmentForbidden(t *testing.T) {
	store, _, core := newFixture(t)
	store.appts["a1"] = &model.Appointment{
		ID: "a1", CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "14:00"), Status: model.StatusPending,
	}
	if _, err := core.CancelAppointment(context.Background(), "a1", "c2", RoleCustomer); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if _, err := core.CancelAppointment(context.Background(), "a1", "p2", RoleProvider); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestReschedule(t *testing.T) {
	store, _, core := newFixture(t)
	ctx := context.Background()
	store.appts["a1"] = &model.Appointment{
		ID: "a1", CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "13:00"), Status: model.StatusConfirmed,
	}

	appt, err := core.Reschedule(ctx, "a1", "c1", RoleCustomer, monday, mustTime(t, "15:00"))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if appt.Time.String() != "15:00" {
		t.Errorf("time = %s, want 15:00", appt.Time)
	}

	// Rescheduling into the same slot must not collide with itself.
	if _, err := core.Reschedule(ctx, "a1", "c1", RoleCustomer, monday, mustTime(t, "15:00")); err != nil {
		t.Errorf("self reschedule: %v", err)
	}

	// Outside working hours.
	if _, err := core.Reschedule(ctx, "a1", "c1", RoleCustomer, monday, mustTime(t, "08:00")); !errors.Is(err, ErrConflict) {
		t.Errorf("before open err = %v, want ErrConflict", err)
	}
	// Would run past close.
	if _, err := core.Reschedule(ctx, "a1", "c1", RoleCustomer, monday, mustTime(t, "16:30")); !errors.Is(err, ErrConflict) {
		t.Errorf("past close err = %v, want ErrConflict", err)
	}
	// Into the lunch break.
	if _, err := core.Reschedule(ctx, "a1", "c1", RoleCustomer, monday, mustTime(t, "12:00")); !errors.Is(err, ErrConflict) {
		t.Errorf("break err = %v, want ErrConflict", err)
	}

	// Another booking occupies 09:00.
	store.appts["a2"] = &model.Appointment{
		ID: "a2", CustomerID: "c2", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "09:00"), Status: model.StatusPending,
	}
	if _, err := core.Reschedule(ctx, "a1", "c1", RoleCustomer, monday, mustTime(t, "09:00")); !errors.Is(err, ErrConflict) {
		t.Errorf("occupied slot err = %v, want ErrConflict", err)
	}

	// Terminal appointments cannot move.
	store.appts["a1"].Status = model.StatusCompleted
	if _, err := core.Reschedule(ctx, "a1", "c1", RoleCustomer, monday, mustTime(t, "15:00")); !errors.Is(err, ErrConflict) {
		t.Errorf("terminal err = %v, want ErrConflict", err)
	}
}

func TestUpdateNotes(t *testing.T) {
	store, _, core := newFixture(t)
	store.appts["a1"] = &model.Appointment{
		ID: "a1", CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "13:00"), Status: model.StatusPending,
	}

	appt, err := core.UpdateNotes(context.Background(), "a1", "c1", RoleCustomer, "bring records")
	if err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}
	if appt.Notes != "bring records" || store.appts["a1"].Notes != "bring records" {
		t.Errorf("notes not persisted: %q / %q", appt.Notes, store.appts["a1"].Notes)
	}
	if _, err := core.UpdateNotes(context.Background(), "a1", "c2", RoleCustomer, "x"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestGetAppointmentParticipantsOnly(t *testing.T) {
	store, _, core := newFixture(t)
	store.appts["a1"] = &model.Appointment{
		ID: "a1", CustomerID: "c1", ProviderID: "p1", ServiceID: "s1",
		Date: monday, Time: mustTime(t, "13:00"), Status: model.StatusPending,
	}

	for _, actor := range []string{"c1", "p1"} {
		if _, err := core.GetAppointment(context.Background(), "a1", actor); err != nil {
			t.Errorf("GetAppointment as %s: %v", actor, err)
		}
	}
	if _, err := core.GetAppointment(context.Background(), "a1", "c2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if _, err := core.GetAppointment(context.Background(), "missing", "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
