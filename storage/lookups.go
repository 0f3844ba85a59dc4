package storage

import (
	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"gorm.io/gorm"
)

// LookupDB resolves accommodation and user references by id.
type LookupDB struct {
	DB *gorm.DB
}

func NewLookupDB() *LookupDB {
	return &LookupDB{DB: DB}
}

func (l *LookupDB) FindAccommodation(id uint) (*models.Accommodation, error) {
	var accommodation models.Accommodation
	if err := l.DB.Preload("Host").First(&accommodation, id).Error; err != nil {
		return nil, err
	}
	return &accommodation, nil
}

func (l *LookupDB) FindUser(id uint) (*models.User, error) {
	var user models.User
	if err := l.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
