package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation status values. Cancelled is terminal.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation is a booked [CheckIn, CheckOut) date range for one
// accommodation by one guest. Ranges are half-open: a stay that ends the
// day another begins does not conflict with it.
type Reservation struct {
	gorm.Model
	AccommodationID uint      `json:"accommodationID" gorm:"not null;index"`
	GuestID         uint      `json:"guestID" gorm:"not null;index"`
	CheckIn         time.Time `json:"checkIn" gorm:"not null"`
	CheckOut        time.Time `json:"checkOut" gorm:"not null"`
	NumGuests       int       `json:"numGuests"`
	Status          string    `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, confirmed, cancelled
	Deleted         bool      `json:"deleted" gorm:"default:false;index"`
	Note            string    `json:"note"`

	Accommodation *Accommodation `json:"accommodation,omitempty" gorm:"foreignKey:AccommodationID"`
	Guest         *User          `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}

// Active reports whether the reservation still occupies its date range
// for availability purposes.
func (r *Reservation) Active() bool {
	return r.Status != ReservationCancelled && !r.Deleted
}
