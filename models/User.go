package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email" gorm:"uniqueIndex"`
	Password       string          `json:"password"`
	SocialLogin    bool            `json:"socialLogin"`
	SocialProvider string          `json:"socialProvider"`
	AvatarURL      string          `json:"avatarURL"`
	Phone          string          `json:"phone"`
	Bio            string          `json:"bio"`
	Languages      datatypes.JSON  `json:"languages"`
	Accommodations []Accommodation `json:"accommodations" gorm:"foreignKey:HostID;references:ID"`
	Role           string          `json:"role" gorm:"type:varchar(20);default:user;index"` // user, host, admin
}

// Custom JSON marshaling so the Languages JSON column renders as an array
// and the password hash never leaves the server.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Languages []string `json:"languages,omitempty"`
		Password  string   `json:"password,omitempty"`
		*Alias
	}{
		Languages: []string{},
		Alias:     (*Alias)(u),
	}

	if u.Languages != nil {
		var languages []string
		if err := json.Unmarshal(u.Languages, &languages); err == nil {
			aux.Languages = languages
		}
	}

	return json.Marshal(aux)
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
