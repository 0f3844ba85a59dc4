package storage

import (
	"errors"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDatesTaken is returned by CreateChecked when the requested range
// overlaps an active reservation for the same accommodation.
var ErrDatesTaken = errors.New("requested dates overlap an active reservation")

// ReservationDB is the gorm-backed store for reservations.
type ReservationDB struct {
	DB *gorm.DB
}

func NewReservationDB() *ReservationDB {
	return &ReservationDB{DB: DB}
}

func (s *ReservationDB) FindByID(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.DB.First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// HasOverlap reports whether any active reservation for the accommodation
// overlaps the half-open range [start, end). A stay ending exactly when
// another begins is not an overlap. excludeID ignores the reservation's
// own row when re-checking during a date update (0 excludes nothing).
func (s *ReservationDB) HasOverlap(accommodationID uint, start, end time.Time, excludeID uint) (bool, error) {
	var count int64
	q := s.DB.Model(&models.Reservation{}).
		Where("accommodation_id = ? AND status <> ? AND deleted = false AND check_in < ? AND check_out > ?",
			accommodationID, models.ReservationCancelled, end, start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateChecked inserts the reservation after re-running the overlap check
// inside one transaction, holding a row lock on the accommodation so two
// concurrent creates for the same listing serialize instead of both
// passing the check. The database exclusion constraint backstops this.
func (s *ReservationDB) CreateChecked(reservation *models.Reservation) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var accommodation models.Accommodation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&accommodation, reservation.AccommodationID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Reservation{}).
			Where("accommodation_id = ? AND status <> ? AND deleted = false AND check_in < ? AND check_out > ?",
				reservation.AccommodationID, models.ReservationCancelled,
				reservation.CheckOut, reservation.CheckIn).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDatesTaken
		}

		if err := tx.Create(reservation).Error; err != nil {
			if isOverlapViolation(err) {
				return ErrDatesTaken
			}
			return err
		}
		return nil
	})
}

func (s *ReservationDB) Save(reservation *models.Reservation) error {
	if err := s.DB.Save(reservation).Error; err != nil {
		if isOverlapViolation(err) {
			return ErrDatesTaken
		}
		return err
	}
	return nil
}

// isOverlapViolation reports whether err is the reservations_no_overlap
// exclusion constraint firing, SQLSTATE 23P01. The constraint catches
// writes a concurrent transaction slipped past the in-transaction check.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func (s *ReservationDB) FindByAccommodation(accommodationID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.DB.Preload("Guest").
		Where("accommodation_id = ?", accommodationID).
		Order("created_at DESC").
		Find(&reservations).Error
	return reservations, err
}

func (s *ReservationDB) FindByGuest(guestID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.DB.Preload("Accommodation").Preload("Accommodation.Host").
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&reservations).Error
	return reservations, err
}

func (s *ReservationDB) FindByHost(hostID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.DB.
		Joins("JOIN accommodations a ON a.id = reservations.accommodation_id").
		Where("a.host_id = ?", hostID).
		Preload("Accommodation").Preload("Guest").
		Order("reservations.created_at DESC").
		Find(&reservations).Error
	return reservations, err
}
