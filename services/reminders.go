package services

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
	"github.com/Am01102007/Proyecto-GoHost-sub000/storage"
)

// ReminderConfig holds the timing knobs for check-in reminders. All of
// them can be overridden through environment variables.
type ReminderConfig struct {
	CheckInHour   int           // local hour of day guests check in
	BeforeLead    time.Duration // lead for the day-before reminders
	DayOfLead     time.Duration // lead for the day-of reminders
	MaxAttempts   int
	DueInterval   time.Duration // due-reminder sweep cadence
	RetryInterval time.Duration // retry sweep cadence
}

// LoadReminderConfig reads REMINDER_* env vars, falling back to defaults:
// check-in 14:00, leads 24h/2h, 3 attempts, sweeps every 30m/2h.
func LoadReminderConfig() ReminderConfig {
	cfg := ReminderConfig{
		CheckInHour:   14,
		BeforeLead:    24 * time.Hour,
		DayOfLead:     2 * time.Hour,
		MaxAttempts:   3,
		DueInterval:   30 * time.Minute,
		RetryInterval: 2 * time.Hour,
	}

	if v, err := strconv.Atoi(os.Getenv("REMINDER_CHECKIN_HOUR")); err == nil && v >= 0 && v < 24 {
		cfg.CheckInHour = v
	}
	if d, err := time.ParseDuration(os.Getenv("REMINDER_BEFORE_LEAD")); err == nil && d > 0 {
		cfg.BeforeLead = d
	}
	if d, err := time.ParseDuration(os.Getenv("REMINDER_DAY_OF_LEAD")); err == nil && d > 0 {
		cfg.DayOfLead = d
	}
	if v, err := strconv.Atoi(os.Getenv("REMINDER_MAX_ATTEMPTS")); err == nil && v > 0 {
		cfg.MaxAttempts = v
	}
	if d, err := time.ParseDuration(os.Getenv("REMINDER_DUE_INTERVAL")); err == nil && d > 0 {
		cfg.DueInterval = d
	}
	if d, err := time.ParseDuration(os.Getenv("REMINDER_RETRY_INTERVAL")); err == nil && d > 0 {
		cfg.RetryInterval = d
	}

	return cfg
}

// reminderKinds in scheduling order.
var reminderKinds = []string{
	models.ReminderGuestBeforeCheckIn,
	models.ReminderHostBeforeArrival,
	models.ReminderGuestDayOfCheckIn,
	models.ReminderHostDayOfArrival,
}

// reminderPlan describes one kind: who gets it, how far ahead of check-in
// it fires, and its templates. The four behaviors live in this table
// instead of scattered switches.
type reminderPlan struct {
	hostRecipient bool
	dayOf         bool
	subject       func(accommodation *models.Accommodation) string
	body          func(guest, host *models.User, accommodation *models.Accommodation, checkIn time.Time) string
}

var reminderPlans = map[string]reminderPlan{
	models.ReminderGuestBeforeCheckIn: {
		subject: func(a *models.Accommodation) string {
			return fmt.Sprintf("Recordatorio: tu estancia en %s es mañana", a.Title)
		},
		body: func(guest, host *models.User, a *models.Accommodation, checkIn time.Time) string {
			return fmt.Sprintf(
				"<p>Hola %s,</p><p>Tu estancia en <b>%s</b> (%s) comienza el %s. Tu anfitrión %s te espera a partir de las %02d:00.</p><p>¡Buen viaje!</p>",
				guest.FirstName, a.Title, a.City, checkIn.Format("02/01/2006"), host.FirstName, checkIn.Hour())
		},
	},
	models.ReminderHostBeforeArrival: {
		hostRecipient: true,
		subject: func(a *models.Accommodation) string {
			return fmt.Sprintf("Recordatorio: llegada de un huésped a %s mañana", a.Title)
		},
		body: func(guest, host *models.User, a *models.Accommodation, checkIn time.Time) string {
			return fmt.Sprintf(
				"<p>Hola %s,</p><p>%s llega a <b>%s</b> (%s) el %s. Recuerda preparar el alojamiento antes de las %02d:00.</p>",
				host.FirstName, guest.FullName(), a.Title, a.City, checkIn.Format("02/01/2006"), checkIn.Hour())
		},
	},
	models.ReminderGuestDayOfCheckIn: {
		dayOf: true,
		subject: func(a *models.Accommodation) string {
			return fmt.Sprintf("¡Hoy es el día! Check-in en %s", a.Title)
		},
		body: func(guest, host *models.User, a *models.Accommodation, checkIn time.Time) string {
			return fmt.Sprintf(
				"<p>Hola %s,</p><p>Hoy comienza tu estancia en <b>%s</b>, %s. El check-in es a las %02d:00. Si necesitas algo, escribe a %s.</p>",
				guest.FirstName, a.Title, a.City, checkIn.Hour(), host.FirstName)
		},
	},
	models.ReminderHostDayOfArrival: {
		hostRecipient: true,
		dayOf:         true,
		subject: func(a *models.Accommodation) string {
			return fmt.Sprintf("Hoy llega un huésped a %s", a.Title)
		},
		body: func(guest, host *models.User, a *models.Accommodation, checkIn time.Time) string {
			return fmt.Sprintf(
				"<p>Hola %s,</p><p>%s llega hoy a <b>%s</b> (%s) a las %02d:00.</p>",
				host.FirstName, guest.FullName(), a.Title, a.City, checkIn.Hour())
		},
	},
}

// ReminderStore is the persistence surface for reminders.
// storage.ReminderDB implements it; tests use in-memory fakes.
type ReminderStore interface {
	ExistsForKind(reservationID uint, kind string) (bool, error)
	FindDueScheduled(before time.Time) ([]models.Reminder, error)
	FindRetryCandidates(before time.Time, maxAttempts int) ([]models.Reminder, error)
	Create(reminder *models.Reminder) error
	SaveOutcome(reminder *models.Reminder) (bool, error)
	CancelScheduledForReservation(reservationID uint) error
}

// ReminderService computes and persists scheduled reminders for
// reservations. Pure timing/template logic lives in the package-level
// functions below so it stays testable without a store.
type ReminderService struct {
	Store   ReminderStore
	Lookups Lookups
	Config  ReminderConfig
}

func NewReminderService() *ReminderService {
	return &ReminderService{
		Store:   storage.NewReminderDB(),
		Lookups: storage.NewLookupDB(),
		Config:  LoadReminderConfig(),
	}
}

// ScheduledTime combines the reservation's check-in date with the
// configured check-in hour and subtracts the kind's lead time.
func ScheduledTime(reservation *models.Reservation, kind string, cfg ReminderConfig) time.Time {
	ci := reservation.CheckIn
	checkInAt := time.Date(ci.Year(), ci.Month(), ci.Day(), cfg.CheckInHour, 0, 0, 0, ci.Location())
	if reminderPlans[kind].dayOf {
		return checkInAt.Add(-cfg.DayOfLead)
	}
	return checkInAt.Add(-cfg.BeforeLead)
}

// RecipientIsHost reports whether the kind notifies the accommodation's
// host rather than the reservation's guest.
func RecipientIsHost(kind string) bool {
	return reminderPlans[kind].hostRecipient
}

// ScheduleAllForReservation persists one scheduled reminder per kind,
// skipping kinds that already have one. Best-effort: a kind that fails to
// schedule is logged and the rest proceed; the booking flow never sees an
// error from here.
func (s *ReminderService) ScheduleAllForReservation(reservation *models.Reservation) {
	accommodation, err := s.Lookups.FindAccommodation(reservation.AccommodationID)
	if err != nil {
		log.Printf("reminders: accommodation %d not found, skipping scheduling: %v", reservation.AccommodationID, err)
		return
	}
	guest, err := s.Lookups.FindUser(reservation.GuestID)
	if err != nil {
		log.Printf("reminders: guest %d not found, skipping scheduling: %v", reservation.GuestID, err)
		return
	}
	host, err := s.Lookups.FindUser(accommodation.HostID)
	if err != nil {
		log.Printf("reminders: host %d not found, skipping scheduling: %v", accommodation.HostID, err)
		return
	}

	checkInAt := time.Date(reservation.CheckIn.Year(), reservation.CheckIn.Month(), reservation.CheckIn.Day(),
		s.Config.CheckInHour, 0, 0, 0, reservation.CheckIn.Location())

	for _, kind := range reminderKinds {
		exists, err := s.Store.ExistsForKind(reservation.ID, kind)
		if err != nil {
			log.Printf("reminders: existence check failed for reservation %d kind %s: %v", reservation.ID, kind, err)
			continue
		}
		if exists {
			continue
		}

		plan := reminderPlans[kind]
		recipient := guest
		if plan.hostRecipient {
			recipient = host
		}

		reminder := &models.Reminder{
			ReservationID:  reservation.ID,
			RecipientID:    recipient.ID,
			RecipientEmail: recipient.Email,
			Kind:           kind,
			Status:         models.ReminderScheduled,
			ScheduledAt:    ScheduledTime(reservation, kind, s.Config),
			Subject:        plan.subject(accommodation),
			Body:           plan.body(guest, host, accommodation, checkInAt),
		}

		if err := s.Store.Create(reminder); err != nil {
			log.Printf("reminders: failed to schedule %s for reservation %d: %v", kind, reservation.ID, err)
			continue
		}
	}
}

// CancelAllForReservation drops the reservation's still-scheduled
// reminders. Sent and errored ones keep their history.
func (s *ReminderService) CancelAllForReservation(reservationID uint) {
	if err := s.Store.CancelScheduledForReservation(reservationID); err != nil {
		log.Printf("reminders: failed to cancel reminders for reservation %d: %v", reservationID, err)
	}
}
