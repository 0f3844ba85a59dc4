package services

import (
	"errors"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
	"gorm.io/gorm"
)

// In-memory fakes for the store interfaces so the lifecycle and the
// dispatcher can be exercised without a database.

type fakeReservationStore struct {
	reservations map[uint]*models.Reservation
	nextID       uint
	saves        int
	saveErr      error // injected failure for the next Save
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{reservations: map[uint]*models.Reservation{}, nextID: 1}
}

func (f *fakeReservationStore) FindByID(id uint) (*models.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservationStore) HasOverlap(accommodationID uint, start, end time.Time, excludeID uint) (bool, error) {
	for _, r := range f.reservations {
		if r.AccommodationID != accommodationID || !r.Active() || r.ID == excludeID {
			continue
		}
		if RangesOverlap(start, end, r.CheckIn, r.CheckOut) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationStore) CreateChecked(reservation *models.Reservation) error {
	overlap, _ := f.HasOverlap(reservation.AccommodationID, reservation.CheckIn, reservation.CheckOut, 0)
	if overlap {
		return storage.ErrDatesTaken
	}
	reservation.ID = f.nextID
	f.nextID++
	copied := *reservation
	f.reservations[reservation.ID] = &copied
	return nil
}

func (f *fakeReservationStore) Save(reservation *models.Reservation) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.reservations[reservation.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.saves++
	copied := *reservation
	f.reservations[reservation.ID] = &copied
	return nil
}

type fakeLookups struct {
	accommodations map[uint]*models.Accommodation
	users          map[uint]*models.User
}

func newFakeLookups() *fakeLookups {
	return &fakeLookups{
		accommodations: map[uint]*models.Accommodation{},
		users:          map[uint]*models.User{},
	}
}

func (f *fakeLookups) FindAccommodation(id uint) (*models.Accommodation, error) {
	a, ok := f.accommodations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeLookups) FindUser(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeReminderTrigger struct {
	scheduled []uint
	cancelled []uint
}

func (f *fakeReminderTrigger) ScheduleAllForReservation(reservation *models.Reservation) {
	f.scheduled = append(f.scheduled, reservation.ID)
}

func (f *fakeReminderTrigger) CancelAllForReservation(reservationID uint) {
	f.cancelled = append(f.cancelled, reservationID)
}

type fakeReminderStore struct {
	reminders map[uint]*models.Reminder
	nextID    uint
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: map[uint]*models.Reminder{}, nextID: 1}
}

func (f *fakeReminderStore) ExistsForKind(reservationID uint, kind string) (bool, error) {
	for _, r := range f.reminders {
		if r.ReservationID == reservationID && r.Kind == kind {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReminderStore) FindDueScheduled(before time.Time) ([]models.Reminder, error) {
	var due []models.Reminder
	for _, r := range f.reminders {
		if r.Status == models.ReminderScheduled && !r.ScheduledAt.After(before) {
			due = append(due, *r)
		}
	}
	return due, nil
}

func (f *fakeReminderStore) FindRetryCandidates(before time.Time, maxAttempts int) ([]models.Reminder, error) {
	var candidates []models.Reminder
	for _, r := range f.reminders {
		if r.Status == models.ReminderScheduled && !r.ScheduledAt.After(before) &&
			r.AttemptCount > 0 && r.AttemptCount < maxAttempts {
			candidates = append(candidates, *r)
		}
	}
	return candidates, nil
}

func (f *fakeReminderStore) Create(reminder *models.Reminder) error {
	reminder.ID = f.nextID
	f.nextID++
	copied := *reminder
	f.reminders[reminder.ID] = &copied
	return nil
}

// Save overwrites unconditionally; tests use it to seed reminder state.
func (f *fakeReminderStore) Save(reminder *models.Reminder) error {
	copied := *reminder
	f.reminders[reminder.ID] = &copied
	return nil
}

func (f *fakeReminderStore) SaveOutcome(reminder *models.Reminder) (bool, error) {
	current, ok := f.reminders[reminder.ID]
	if !ok || current.Status != models.ReminderScheduled {
		return false, nil
	}
	copied := *reminder
	f.reminders[reminder.ID] = &copied
	return true, nil
}

func (f *fakeReminderStore) CancelScheduledForReservation(reservationID uint) error {
	for _, r := range f.reminders {
		if r.ReservationID == reservationID && r.Status == models.ReminderScheduled {
			r.Status = models.ReminderCancelled
		}
	}
	return nil
}

type fakeMailer struct {
	failures int // fail this many sends before succeeding
	sent     []string
	attempts int
}

func (f *fakeMailer) Send(to, subject, html string) error {
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testConfig() ReminderConfig {
	return ReminderConfig{
		CheckInHour:   14,
		BeforeLead:    24 * time.Hour,
		DayOfLead:     2 * time.Hour,
		MaxAttempts:   3,
		DueInterval:   30 * time.Minute,
		RetryInterval: 2 * time.Hour,
	}
}

func testLookups() *fakeLookups {
	lookups := newFakeLookups()
	lookups.users[1] = &models.User{Model: gorm.Model{ID: 1}, FirstName: "Lucía", LastName: "Moreno", Email: "lucia@example.com"}
	lookups.users[2] = &models.User{Model: gorm.Model{ID: 2}, FirstName: "Andrés", LastName: "Vega", Email: "andres@example.com"}
	lookups.accommodations[10] = &models.Accommodation{
		Model:  gorm.Model{ID: 10},
		HostID: 2,
		Title:  "Ático en el centro",
		City:   "Valencia",
	}
	return lookups
}
