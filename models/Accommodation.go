package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Accommodation struct {
	gorm.Model
	HostID       uint    `json:"hostID" gorm:"not null;index"`
	Title        string  `json:"title"`
	Description  string  `json:"description" gorm:"type:text"`
	AddressLine  string  `json:"addressLine"`
	City         string  `json:"city" gorm:"index"`
	Country      string  `json:"country"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Capacity     int     `json:"capacity"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    int     `json:"bathrooms"`
	NightlyPrice float32 `json:"nightlyPrice"`
	Currency     string  `json:"currency" gorm:"default:'EUR'"`
	Amenities    string  `json:"amenities"` // JSON array string
	Images       string  `json:"images"`    // JSON array of URLs
	IsActive     *bool   `json:"isActive"`

	Host         User          `json:"host" gorm:"foreignKey:HostID;references:ID"`
	Comments     []Comment     `json:"comments"`
	Reservations []Reservation `json:"reservations"`
}

// Custom JSON marshaling to expose Images and Amenities strings as arrays
func (a *Accommodation) MarshalJSON() ([]byte, error) {
	type Alias Accommodation
	aux := &struct {
		Images    []string `json:"images"`
		Amenities []string `json:"amenities"`
		Host      *User    `json:"host,omitempty"`
		*Alias
	}{
		Images:    []string{},
		Amenities: []string{},
		Alias:     (*Alias)(a),
	}

	if a.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(a.Images), &images); err == nil {
			aux.Images = images
		}
	}

	if a.Amenities != "" {
		var amenities []string
		if err := json.Unmarshal([]byte(a.Amenities), &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	if a.Host.ID != 0 {
		aux.Host = &a.Host
	}

	return json.Marshal(aux)
}
