package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
)

func newTestReservationService() (*ReservationService, *fakeReservationStore, *fakeReminderTrigger) {
	store := newFakeReservationStore()
	trigger := &fakeReminderTrigger{}
	svc := &ReservationService{
		Store:     store,
		Lookups:   testLookups(),
		Reminders: trigger,
	}
	return svc, store, trigger
}

func TestCreateReservation(t *testing.T) {
	svc, _, trigger := newTestReservationService()

	reservation, err := svc.Create(CreateReservationInput{
		AccommodationID: 10,
		GuestID:         1,
		CheckIn:         date(2026, 6, 1),
		CheckOut:        date(2026, 6, 4),
	})
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if reservation.Status != models.ReservationPending {
		t.Errorf("expected status pending, got %s", reservation.Status)
	}
	if reservation.Deleted {
		t.Error("new reservation must not be marked deleted")
	}
	if len(trigger.scheduled) != 1 || trigger.scheduled[0] != reservation.ID {
		t.Errorf("expected reminder scheduling for reservation %d, got %v", reservation.ID, trigger.scheduled)
	}
}

func TestCreateReservationInvalidRange(t *testing.T) {
	svc, _, _ := newTestReservationService()

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"checkOut equals checkIn", date(2026, 6, 1), date(2026, 6, 1)},
		{"checkOut before checkIn", date(2026, 6, 4), date(2026, 6, 1)},
	}

	for _, tc := range cases {
		_, err := svc.Create(CreateReservationInput{
			AccommodationID: 10,
			GuestID:         1,
			CheckIn:         tc.checkIn,
			CheckOut:        tc.checkOut,
		})
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%s: expected ErrInvalidRange, got %v", tc.name, err)
		}
	}
}

func TestCreateReservationUnknownReferences(t *testing.T) {
	svc, _, _ := newTestReservationService()

	_, err := svc.Create(CreateReservationInput{
		AccommodationID: 999,
		GuestID:         1,
		CheckIn:         date(2026, 6, 1),
		CheckOut:        date(2026, 6, 4),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown accommodation: expected ErrNotFound, got %v", err)
	}

	_, err = svc.Create(CreateReservationInput{
		AccommodationID: 10,
		GuestID:         999,
		CheckIn:         date(2026, 6, 1),
		CheckOut:        date(2026, 6, 4),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown guest: expected ErrNotFound, got %v", err)
	}
}

func TestCreateReservationOverlap(t *testing.T) {
	svc, _, _ := newTestReservationService()

	if _, err := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	}); err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}

	_, err := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 3), CheckOut: date(2026, 6, 6),
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("overlapping booking: expected ErrUnavailable, got %v", err)
	}
}

func TestCreateReservationBackToBackStays(t *testing.T) {
	svc, _, _ := newTestReservationService()

	if _, err := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 3, 1), CheckOut: date(2026, 3, 5),
	}); err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}

	// Check-in on the other stay's check-out day: half-open ranges, no overlap
	if _, err := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 3, 5), CheckOut: date(2026, 3, 8),
	}); err != nil {
		t.Errorf("back-to-back booking should succeed, got %v", err)
	}
}

func TestCreateReservationAfterCancellation(t *testing.T) {
	svc, _, _ := newTestReservationService()

	first, err := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	})
	if err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}

	if err := svc.Cancel(first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Cancelled reservations free up their dates
	if _, err := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	}); err != nil {
		t.Errorf("rebooking cancelled dates should succeed, got %v", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, store, trigger := newTestReservationService()

	reservation, err := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Cancel(reservation.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	savesAfterFirst := store.saves

	if err := svc.Cancel(reservation.ID); err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}
	if store.saves != savesAfterFirst {
		t.Errorf("second cancel must not write, saves went %d -> %d", savesAfterFirst, store.saves)
	}

	stored, _ := store.FindByID(reservation.ID)
	if stored.Status != models.ReservationCancelled || !stored.Deleted {
		t.Errorf("expected cancelled+deleted, got status=%s deleted=%v", stored.Status, stored.Deleted)
	}
	if len(trigger.cancelled) != 1 {
		t.Errorf("reminder cancellation should fire exactly once, got %d", len(trigger.cancelled))
	}
}

func TestCancelMissingReservation(t *testing.T) {
	svc, _, _ := newTestReservationService()

	if err := svc.Cancel(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCancelledReservationIsConflict(t *testing.T) {
	svc, _, _ := newTestReservationService()

	reservation, _ := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	})
	if err := svc.Cancel(reservation.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	confirmed := models.ReservationConfirmed
	_, err := svc.Update(reservation.ID, UpdateReservationInput{Status: &confirmed})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("mutating a cancelled reservation: expected ErrConflict, got %v", err)
	}
}

func TestUpdateDates(t *testing.T) {
	svc, store, _ := newTestReservationService()

	reservation, _ := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	})

	// Shifting within its own occupancy must not self-conflict
	newIn, newOut := date(2026, 6, 2), date(2026, 6, 5)
	updated, err := svc.Update(reservation.ID, UpdateReservationInput{CheckIn: &newIn, CheckOut: &newOut})
	if err != nil {
		t.Fatalf("date update failed: %v", err)
	}
	if !updated.CheckIn.Equal(newIn) || !updated.CheckOut.Equal(newOut) {
		t.Errorf("dates not applied: got [%v, %v)", updated.CheckIn, updated.CheckOut)
	}

	// Supplying only one date is a no-op for dates
	lonely := date(2026, 7, 1)
	updated, err = svc.Update(reservation.ID, UpdateReservationInput{CheckIn: &lonely})
	if err != nil {
		t.Fatalf("partial date update failed: %v", err)
	}
	if !updated.CheckIn.Equal(newIn) {
		t.Errorf("single-date update must leave dates untouched, got checkIn %v", updated.CheckIn)
	}

	// Bad range rejected
	badOut := date(2026, 6, 2)
	if _, err := svc.Update(reservation.ID, UpdateReservationInput{CheckIn: &newIn, CheckOut: &badOut}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}

	// Moving onto another reservation's dates rejected
	other, _ := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 10), CheckOut: date(2026, 6, 12),
	})
	_ = other
	clashIn, clashOut := date(2026, 6, 9), date(2026, 6, 11)
	if _, err := svc.Update(reservation.ID, UpdateReservationInput{CheckIn: &clashIn, CheckOut: &clashOut}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	// No-overlap invariant holds across everything stored
	assertNoActiveOverlaps(t, store)
}

func TestUpdateMapsBackstopConflict(t *testing.T) {
	svc, store, _ := newTestReservationService()

	reservation, _ := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	})

	// The database exclusion constraint fires on the write when a
	// concurrent booking took the dates after the availability check
	store.saveErr = storage.ErrDatesTaken

	confirmed := models.ReservationConfirmed
	_, err := svc.Update(reservation.ID, UpdateReservationInput{Status: &confirmed})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("constraint conflict on save: expected ErrUnavailable, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, _, _ := newTestReservationService()

	reservation, _ := svc.Create(CreateReservationInput{
		AccommodationID: 10, GuestID: 1,
		CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 4),
	})

	confirmed := models.ReservationConfirmed
	updated, err := svc.Update(reservation.ID, UpdateReservationInput{Status: &confirmed})
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if updated.Status != models.ReservationConfirmed {
		t.Errorf("expected confirmed, got %s", updated.Status)
	}
}

func assertNoActiveOverlaps(t *testing.T, store *fakeReservationStore) {
	t.Helper()
	var active []*models.Reservation
	for _, r := range store.reservations {
		if r.Active() {
			active = append(active, r)
		}
	}
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if a.AccommodationID == b.AccommodationID &&
				RangesOverlap(a.CheckIn, a.CheckOut, b.CheckIn, b.CheckOut) {
				t.Errorf("active reservations %d and %d overlap", a.ID, b.ID)
			}
		}
	}
}
