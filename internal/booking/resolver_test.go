package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evlats/bookable/internal/model"
	"github.com/evlats/bookable/internal/schedule"
)

func TestResolveWeeklyTemplate(t *testing.T) {
	store, _, _ := newFixture(t)
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "p1", monday)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !got.Open || got.Start.String() != "09:00" || got.End.String() != "17:00" {
		t.Errorf("schedule = %+v, want open 09:00-17:00", got)
	}
	if len(got.Breaks) != 1 || got.Breaks[0].String() != "12:00-13:00" {
		t.Errorf("breaks = %v, want [12:00-13:00]", got.Breaks)
	}
}

func TestResolveNoTemplateIsClosed(t *testing.T) {
	store, _, _ := newFixture(t)
	r := NewResolver(store)
	tuesday := schedule.NewDate(2025, time.June, 17)

	got, err := r.Resolve(context.Background(), "p1", tuesday)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Open {
		t.Errorf("schedule = %+v, want closed", got)
	}
}

func TestResolveDisabledTemplateIsClosed(t *testing.T) {
	store, _, _ := newFixture(t)
	store.weekly["p1|monday"].IsAvailable = false
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "p1", monday)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Open {
		t.Errorf("schedule = %+v, want closed", got)
	}
}

func TestResolveDayOffExceptionWins(t *testing.T) {
	store, _, _ := newFixture(t)
	// The weekly template says open; the exception closes the day entirely.
	store.excs["p1|"+monday.String()] = &model.AvailabilityException{
		ID: "e1", ProviderID: "p1", Date: monday, IsAvailable: false, Note: "public holiday",
	}
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "p1", monday)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Open {
		t.Errorf("schedule = %+v, want closed on exception day", got)
	}
}

func TestResolveAvailableExceptionReplacesTemplate(t *testing.T) {
	store, _, _ := newFixture(t)
	// Shortened hours for the day; the template's break must not leak in.
	store.excs["p1|"+monday.String()] = &model.AvailabilityException{
		ID: "e1", ProviderID: "p1", Date: monday, IsAvailable: true,
		StartTime: timePtr(mustTime(t, "10:00")),
		EndTime:   timePtr(mustTime(t, "14:00")),
	}
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "p1", monday)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !got.Open || got.Start.String() != "10:00" || got.End.String() != "14:00" {
		t.Errorf("schedule = %+v, want open 10:00-14:00", got)
	}
	if len(got.Breaks) != 0 {
		t.Errorf("breaks = %v, want none from the exception", got.Breaks)
	}
}

func TestResolveExceptionMissingTimes(t *testing.T) {
	store, _, _ := newFixture(t)
	store.excs["p1|"+monday.String()] = &model.AvailabilityException{
		ID: "e1", ProviderID: "p1", Date: monday, IsAvailable: true,
		StartTime: timePtr(mustTime(t, "10:00")), // no end time
	}
	r := NewResolver(store)

	if _, err := r.Resolve(context.Background(), "p1", monday); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
