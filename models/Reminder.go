package models

import (
	"time"

	"gorm.io/gorm"
)

// Reminder kind values, one scheduled email per kind per reservation.
const (
	ReminderGuestBeforeCheckIn = "guest_before_checkin"
	ReminderHostBeforeArrival  = "host_before_arrival"
	ReminderGuestDayOfCheckIn  = "guest_day_of_checkin"
	ReminderHostDayOfArrival   = "host_day_of_arrival"
)

// Reminder status values.
const (
	ReminderScheduled = "scheduled"
	ReminderSent      = "sent"
	ReminderError     = "error"
	ReminderCancelled = "cancelled"
)

// Reminder is a scheduled check-in email tied to a reservation. Recipient
// email, subject and body are snapshots taken when the reservation is
// created; later profile edits do not alter in-flight reminders.
type Reminder struct {
	gorm.Model
	ReservationID  uint       `json:"reservationID" gorm:"not null;index"`
	RecipientID    uint       `json:"recipientID" gorm:"not null"`
	RecipientEmail string     `json:"recipientEmail" gorm:"not null"`
	Kind           string     `json:"kind" gorm:"type:varchar(32);not null;index"`
	Status         string     `json:"status" gorm:"type:varchar(16);default:'scheduled';index"`
	ScheduledAt    time.Time  `json:"scheduledAt" gorm:"not null;index"`
	SentAt         *time.Time `json:"sentAt"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body" gorm:"type:text"`
	AttemptCount   int        `json:"attemptCount" gorm:"default:0"`
	LastError      string     `json:"lastError"`

	Reservation *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
}
