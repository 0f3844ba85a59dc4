package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	gorm.Model
	UserID          uint         `json:"userID" gorm:"not null;index"`
	AccommodationID uint         `json:"accommodationID" gorm:"not null;index"`
	ReservationID   *uint        `json:"reservationID" gorm:"index"`
	Body            string       `json:"body" gorm:"type:text"`
	Stars           int          `json:"stars" gorm:"not null;check:stars >= 1 AND stars <= 5"`
	HostReply       string       `json:"hostReply" gorm:"type:text"`
	HostRepliedAt   *time.Time   `json:"hostRepliedAt"`
	User            User         `json:"user" gorm:"foreignKey:UserID"`
	Reservation     *Reservation `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
}
