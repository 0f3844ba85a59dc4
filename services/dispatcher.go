package services

import (
	"context"
	"log"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
)

// Clock is the time seam for the dispatcher so sweeps can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// ReminderDispatcher scans the reminder store on two independent timers
// and hands due reminders to the mail sender. A reminder email is a
// best-effort side channel: send failures are recorded on the reminder
// row, retried up to MaxAttempts, and never propagate out of a sweep.
type ReminderDispatcher struct {
	Store  ReminderStore
	Mail   MailSender
	Clock  Clock
	Config ReminderConfig
}

func NewReminderDispatcher(mail MailSender) *ReminderDispatcher {
	svc := NewReminderService()
	return &ReminderDispatcher{
		Store:  svc.Store,
		Mail:   mail,
		Clock:  SystemClock(),
		Config: svc.Config,
	}
}

// Run drives both sweeps until the context is cancelled. The due sweep
// picks up freshly scheduled reminders; the retry sweep re-attempts ones
// that failed earlier but still have attempts left. Retries happen at the
// sweep's own fixed cadence, there is no per-attempt backoff.
func (d *ReminderDispatcher) Run(ctx context.Context) {
	dueTicker := time.NewTicker(d.Config.DueInterval)
	retryTicker := time.NewTicker(d.Config.RetryInterval)
	defer dueTicker.Stop()
	defer retryTicker.Stop()

	// kick immediately so restarts don't sit on overdue reminders
	d.SweepDue()

	for {
		select {
		case <-ctx.Done():
			log.Println("reminder dispatcher stopped")
			return
		case <-dueTicker.C:
			d.SweepDue()
		case <-retryTicker.C:
			d.SweepRetries()
		}
	}
}

// SweepDue sends every scheduled reminder whose time has come.
func (d *ReminderDispatcher) SweepDue() {
	reminders, err := d.Store.FindDueScheduled(d.Clock.Now())
	if err != nil {
		log.Printf("dispatcher: due sweep query failed: %v", err)
		return
	}
	if len(reminders) == 0 {
		return
	}

	log.Printf("📧 dispatcher: %d due reminder(s)", len(reminders))
	sent := 0
	for i := range reminders {
		if d.AttemptSend(&reminders[i]) {
			sent++
		}
	}
	log.Printf("dispatcher: due sweep done, %d/%d sent", sent, len(reminders))
}

// SweepRetries re-attempts past-due reminders that failed a prior send
// but have not exhausted their attempts.
func (d *ReminderDispatcher) SweepRetries() {
	reminders, err := d.Store.FindRetryCandidates(d.Clock.Now(), d.Config.MaxAttempts)
	if err != nil {
		log.Printf("dispatcher: retry sweep query failed: %v", err)
		return
	}

	for i := range reminders {
		d.AttemptSend(&reminders[i])
	}
}

// AttemptSend performs one delivery attempt. Every call increments the
// attempt count exactly once. On success the reminder becomes sent; on
// failure the error is recorded and the reminder becomes terminal error
// once the attempt cap is reached. Never returns an error to the sweep.
func (d *ReminderDispatcher) AttemptSend(reminder *models.Reminder) bool {
	reminder.AttemptCount++

	if err := d.Mail.Send(reminder.RecipientEmail, reminder.Subject, reminder.Body); err != nil {
		reminder.LastError = err.Error()
		if reminder.AttemptCount >= d.Config.MaxAttempts {
			reminder.Status = models.ReminderError
			log.Printf("dispatcher: reminder %d gave up after %d attempts: %v", reminder.ID, reminder.AttemptCount, err)
		} else {
			log.Printf("dispatcher: reminder %d attempt %d failed: %v", reminder.ID, reminder.AttemptCount, err)
		}
		d.persistOutcome(reminder)
		return false
	}

	now := d.Clock.Now()
	reminder.Status = models.ReminderSent
	reminder.SentAt = &now
	reminder.LastError = ""
	d.persistOutcome(reminder)
	return true
}

// persistOutcome writes the attempt back through a status-guarded update.
// A cancellation landing between the sweep's fetch and this write wins:
// the outcome is dropped and the row stays cancelled, out of rotation.
// The guest may still get one email for a just-cancelled booking when the
// send itself already went out.
func (d *ReminderDispatcher) persistOutcome(reminder *models.Reminder) {
	updated, err := d.Store.SaveOutcome(reminder)
	if err != nil {
		log.Printf("dispatcher: failed to persist reminder %d: %v", reminder.ID, err)
		return
	}
	if !updated {
		log.Printf("dispatcher: reminder %d changed mid-sweep, outcome dropped", reminder.ID)
	}
}
