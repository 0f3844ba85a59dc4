package models

import (
	"time"

	"gorm.io/gorm"
)

type Conversation struct {
	gorm.Model
	GuestID         uint      `json:"guestID" gorm:"not null;index"`
	HostID          uint      `json:"hostID" gorm:"not null;index"`
	AccommodationID uint      `json:"accommodationID" gorm:"index"`
	Messages        []Message `json:"messages"`
	Guest           User      `json:"guest" gorm:"foreignKey:GuestID"`
	Host            User      `json:"host" gorm:"foreignKey:HostID"`
}

type Message struct {
	gorm.Model
	ConversationID uint       `json:"conversationID" gorm:"not null;index"`
	SenderID       uint       `json:"senderID"`
	ReceiverID     uint       `json:"receiverID"`
	Text           string     `json:"text" gorm:"type:text"`
	SeenAt         *time.Time `json:"seenAt"`
}
