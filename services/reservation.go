package services

import (
	"errors"
	"log"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
	"gorm.io/gorm"
)

// Reservation lifecycle errors. Routes map these to HTTP status codes.
var (
	ErrNotFound     = errors.New("referenced record does not exist")
	ErrInvalidRange = errors.New("checkOut must be after checkIn")
	ErrUnavailable  = errors.New("requested dates are not available")
	ErrConflict     = errors.New("reservation is cancelled and cannot be modified")
)

// ReservationStore is the persistence surface the lifecycle needs.
// storage.ReservationDB implements it; tests use in-memory fakes.
type ReservationStore interface {
	OverlapChecker
	FindByID(id uint) (*models.Reservation, error)
	CreateChecked(reservation *models.Reservation) error
	Save(reservation *models.Reservation) error
}

// Lookups resolves accommodation and user references.
type Lookups interface {
	FindAccommodation(id uint) (*models.Accommodation, error)
	FindUser(id uint) (*models.User, error)
}

// ReminderTrigger is the reminder-side hook invoked on create/cancel.
// Scheduling is best-effort and never fails the booking flow.
type ReminderTrigger interface {
	ScheduleAllForReservation(reservation *models.Reservation)
	CancelAllForReservation(reservationID uint)
}

// ReservationService owns reservation state transitions and the
// no-double-booking invariant.
type ReservationService struct {
	Store     ReservationStore
	Lookups   Lookups
	Reminders ReminderTrigger
}

// NewReservationService wires the service against the live database.
func NewReservationService() *ReservationService {
	return &ReservationService{
		Store:     storage.NewReservationDB(),
		Lookups:   storage.NewLookupDB(),
		Reminders: NewReminderService(),
	}
}

// CreateReservationInput carries the fields a guest submits when booking.
type CreateReservationInput struct {
	AccommodationID uint
	GuestID         uint
	CheckIn         time.Time
	CheckOut        time.Time
	NumGuests       int
	Note            string
}

func (s *ReservationService) Create(input CreateReservationInput) (*models.Reservation, error) {
	if !input.CheckIn.Before(input.CheckOut) {
		return nil, ErrInvalidRange
	}

	if _, err := s.Lookups.FindAccommodation(input.AccommodationID); err != nil {
		return nil, notFoundOr(err)
	}
	if _, err := s.Lookups.FindUser(input.GuestID); err != nil {
		return nil, notFoundOr(err)
	}

	overlap, err := s.Store.HasOverlap(input.AccommodationID, input.CheckIn, input.CheckOut, 0)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrUnavailable
	}

	reservation := &models.Reservation{
		AccommodationID: input.AccommodationID,
		GuestID:         input.GuestID,
		CheckIn:         input.CheckIn,
		CheckOut:        input.CheckOut,
		NumGuests:       input.NumGuests,
		Status:          models.ReservationPending,
		Note:            input.Note,
	}

	// CreateChecked re-runs the overlap check inside a transaction, so a
	// concurrent booking that slipped in since the read above still fails.
	if err := s.Store.CreateChecked(reservation); err != nil {
		if errors.Is(err, storage.ErrDatesTaken) {
			return nil, ErrUnavailable
		}
		return nil, notFoundOr(err)
	}

	s.Reminders.ScheduleAllForReservation(reservation)

	return reservation, nil
}

// UpdateReservationInput: nil fields are left untouched. Dates follow a
// both-or-neither policy; supplying only one of the two is a date no-op.
type UpdateReservationInput struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   *string
}

func (s *ReservationService) Update(id uint, input UpdateReservationInput) (*models.Reservation, error) {
	reservation, err := s.Store.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if reservation.Status == models.ReservationCancelled || reservation.Deleted {
		return nil, ErrConflict
	}

	if input.CheckIn != nil && input.CheckOut != nil {
		if !input.CheckIn.Before(*input.CheckOut) {
			return nil, ErrInvalidRange
		}
		overlap, err := s.Store.HasOverlap(reservation.AccommodationID, *input.CheckIn, *input.CheckOut, reservation.ID)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, ErrUnavailable
		}
		reservation.CheckIn = *input.CheckIn
		reservation.CheckOut = *input.CheckOut
		// TODO: reschedule reminders when the dates move; they currently
		// keep firing relative to the original check-in.
	}

	if input.Status != nil {
		reservation.Status = *input.Status
	}

	if err := s.Store.Save(reservation); err != nil {
		// Exclusion constraint fired on the write: a concurrent booking
		// took the dates after the availability check above.
		if errors.Is(err, storage.ErrDatesTaken) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	return reservation, nil
}

// Cancel marks the reservation cancelled and soft-deleted, then drops its
// still-scheduled reminders. Idempotent: cancelling twice is a no-op, the
// second call performs no write.
func (s *ReservationService) Cancel(id uint) error {
	reservation, err := s.Store.FindByID(id)
	if err != nil {
		return notFoundOr(err)
	}

	if reservation.Status == models.ReservationCancelled && reservation.Deleted {
		return nil
	}

	reservation.Status = models.ReservationCancelled
	reservation.Deleted = true
	if err := s.Store.Save(reservation); err != nil {
		return err
	}

	s.Reminders.CancelAllForReservation(reservation.ID)

	log.Printf("reservation %d cancelled", reservation.ID)
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
