package storage

import (
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"gorm.io/gorm"
)

// ReminderDB is the gorm-backed store for scheduled reminders.
type ReminderDB struct {
	DB *gorm.DB
}

func NewReminderDB() *ReminderDB {
	return &ReminderDB{DB: DB}
}

func (s *ReminderDB) FindByID(id uint) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := s.DB.First(&reminder, id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (s *ReminderDB) ExistsForKind(reservationID uint, kind string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Reminder{}).
		Where("reservation_id = ? AND kind = ?", reservationID, kind).
		Count(&count).Error
	return count > 0, err
}

func (s *ReminderDB) FindByReservation(reservationID uint) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.DB.Where("reservation_id = ?", reservationID).Find(&reminders).Error
	return reminders, err
}

// FindDueScheduled returns reminders that are still scheduled and whose
// send time has passed.
func (s *ReminderDB) FindDueScheduled(before time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.DB.
		Where("status = ? AND scheduled_at <= ?", models.ReminderScheduled, before).
		Order("scheduled_at").
		Find(&reminders).Error
	return reminders, err
}

// FindRetryCandidates returns past-due scheduled reminders that already
// failed at least once but have attempts left.
func (s *ReminderDB) FindRetryCandidates(before time.Time, maxAttempts int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := s.DB.
		Where("status = ? AND scheduled_at <= ? AND attempt_count > 0 AND attempt_count < ?",
			models.ReminderScheduled, before, maxAttempts).
		Order("scheduled_at").
		Find(&reminders).Error
	return reminders, err
}

func (s *ReminderDB) Create(reminder *models.Reminder) error {
	return s.DB.Create(reminder).Error
}

// SaveOutcome persists a send attempt's result only while the row is
// still scheduled, so a cancellation that lands between the sweep's
// fetch and this write is never overwritten. Reports whether the row
// was updated.
func (s *ReminderDB) SaveOutcome(reminder *models.Reminder) (bool, error) {
	res := s.DB.Model(&models.Reminder{}).
		Where("id = ? AND status = ?", reminder.ID, models.ReminderScheduled).
		Updates(map[string]interface{}{
			"status":        reminder.Status,
			"sent_at":       reminder.SentAt,
			"attempt_count": reminder.AttemptCount,
			"last_error":    reminder.LastError,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CancelScheduledForReservation flips every still-scheduled reminder of
// the reservation to cancelled. Sent and errored reminders keep their
// history untouched.
func (s *ReminderDB) CancelScheduledForReservation(reservationID uint) error {
	return s.DB.Model(&models.Reminder{}).
		Where("reservation_id = ? AND status = ?", reservationID, models.ReminderScheduled).
		Update("status", models.ReminderCancelled).Error
}
