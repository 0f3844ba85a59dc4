package services

import (
	"testing"
	"time"

	"github.com/Am01102007/Proyecto-GoHost-sub000/models"
)

func newTestDispatcher(mailer *fakeMailer, now time.Time) (*ReminderDispatcher, *fakeReminderStore, *fakeClock) {
	store := newFakeReminderStore()
	clock := &fakeClock{now: now}
	dispatcher := &ReminderDispatcher{
		Store:  store,
		Mail:   mailer,
		Clock:  clock,
		Config: testConfig(),
	}
	return dispatcher, store, clock
}

func scheduledReminder(store *fakeReminderStore, at time.Time) *models.Reminder {
	reminder := &models.Reminder{
		ReservationID:  7,
		RecipientID:    1,
		RecipientEmail: "lucia@example.com",
		Kind:           models.ReminderGuestBeforeCheckIn,
		Status:         models.ReminderScheduled,
		ScheduledAt:    at,
		Subject:        "Recordatorio",
		Body:           "<p>Hola</p>",
	}
	store.Create(reminder)
	return store.reminders[reminder.ID]
}

func TestAttemptSendSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)
	reminder := scheduledReminder(store, now.Add(-time.Hour))

	if ok := dispatcher.AttemptSend(reminder); !ok {
		t.Fatal("expected send to succeed")
	}

	stored := store.reminders[reminder.ID]
	if stored.Status != models.ReminderSent {
		t.Errorf("expected sent, got %s", stored.Status)
	}
	if stored.AttemptCount != 1 {
		t.Errorf("expected exactly one attempt, got %d", stored.AttemptCount)
	}
	if stored.SentAt == nil || !stored.SentAt.Equal(now) {
		t.Errorf("sentAt should be the clock's now, got %v", stored.SentAt)
	}
	if stored.LastError != "" {
		t.Errorf("lastError should be cleared on success, got %q", stored.LastError)
	}
}

func TestAttemptSendFailureBelowCap(t *testing.T) {
	mailer := &fakeMailer{failures: 99}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)
	reminder := scheduledReminder(store, now.Add(-time.Hour))

	if ok := dispatcher.AttemptSend(reminder); ok {
		t.Fatal("expected send to fail")
	}

	stored := store.reminders[reminder.ID]
	if stored.Status != models.ReminderScheduled {
		t.Errorf("below the cap the reminder stays scheduled for retry, got %s", stored.Status)
	}
	if stored.AttemptCount != 1 {
		t.Errorf("expected attemptCount 1, got %d", stored.AttemptCount)
	}
	if stored.LastError == "" {
		t.Error("lastError should record the failure")
	}
}

func TestReminderErrorsOutAfterMaxAttempts(t *testing.T) {
	mailer := &fakeMailer{failures: 99}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)
	reminder := scheduledReminder(store, now.Add(-time.Hour))

	for i := 0; i < dispatcher.Config.MaxAttempts; i++ {
		fresh := store.reminders[reminder.ID]
		dispatcher.AttemptSend(fresh)
	}

	stored := store.reminders[reminder.ID]
	if stored.Status != models.ReminderError {
		t.Errorf("expected terminal error status, got %s", stored.Status)
	}
	if stored.AttemptCount != 3 {
		t.Errorf("expected attemptCount 3, got %d", stored.AttemptCount)
	}
	if stored.LastError == "" {
		t.Error("lastError must be non-null after exhausting attempts")
	}
}

func TestSweepDueSendsOnlyDueReminders(t *testing.T) {
	mailer := &fakeMailer{}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)

	due := scheduledReminder(store, now.Add(-time.Minute))
	future := scheduledReminder(store, now.Add(time.Hour))

	dispatcher.SweepDue()

	if store.reminders[due.ID].Status != models.ReminderSent {
		t.Errorf("due reminder should be sent, got %s", store.reminders[due.ID].Status)
	}
	if store.reminders[future.ID].Status != models.ReminderScheduled {
		t.Errorf("future reminder must stay scheduled, got %s", store.reminders[future.ID].Status)
	}
}

func TestSweepDueIsolatesFailures(t *testing.T) {
	// First send fails, the rest succeed: one bad reminder must not
	// abort the batch.
	mailer := &fakeMailer{failures: 1}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)

	scheduledReminder(store, now.Add(-3*time.Minute))
	scheduledReminder(store, now.Add(-2*time.Minute))
	scheduledReminder(store, now.Add(-1*time.Minute))

	dispatcher.SweepDue()

	sent := 0
	for _, r := range store.reminders {
		if r.Status == models.ReminderSent {
			sent++
		}
	}
	if sent != 2 {
		t.Errorf("expected 2 of 3 sent despite one failure, got %d", sent)
	}
	if mailer.attempts != 3 {
		t.Errorf("every due reminder should be attempted, got %d attempts", mailer.attempts)
	}
}

func TestSweepRetriesPicksUpFailedReminders(t *testing.T) {
	mailer := &fakeMailer{failures: 1}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, clock := newTestDispatcher(mailer, now)
	reminder := scheduledReminder(store, now.Add(-time.Minute))

	// Due sweep fails the first attempt
	dispatcher.SweepDue()
	if store.reminders[reminder.ID].Status != models.ReminderScheduled {
		t.Fatalf("expected reminder still scheduled after failed attempt")
	}

	// Retry sweep two hours later succeeds
	clock.now = now.Add(2 * time.Hour)
	dispatcher.SweepRetries()

	stored := store.reminders[reminder.ID]
	if stored.Status != models.ReminderSent {
		t.Errorf("retry should have sent the reminder, got %s", stored.Status)
	}
	if stored.AttemptCount != 2 {
		t.Errorf("expected 2 attempts total, got %d", stored.AttemptCount)
	}
}

func TestCancellationDuringSweepWins(t *testing.T) {
	mailer := &fakeMailer{}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)
	reminder := scheduledReminder(store, now.Add(-time.Minute))

	// The sweep fetches its batch, then the guest cancels the booking
	// before the attempt's outcome is written back
	due, _ := store.FindDueScheduled(now)
	store.CancelScheduledForReservation(reminder.ReservationID)

	dispatcher.AttemptSend(&due[0])

	if got := store.reminders[reminder.ID].Status; got != models.ReminderCancelled {
		t.Errorf("cancellation must win over a concurrent send, got %s", got)
	}
	if stillDue, _ := store.FindDueScheduled(now.Add(24 * time.Hour)); len(stillDue) != 0 {
		t.Errorf("cancelled reminder must leave the sweep rotation, still due: %d", len(stillDue))
	}
}

func TestCancellationDuringSweepWinsOverFailedSend(t *testing.T) {
	mailer := &fakeMailer{failures: 99}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)
	reminder := scheduledReminder(store, now.Add(-time.Minute))

	due, _ := store.FindDueScheduled(now)
	store.CancelScheduledForReservation(reminder.ReservationID)

	dispatcher.AttemptSend(&due[0])

	stored := store.reminders[reminder.ID]
	if stored.Status != models.ReminderCancelled {
		t.Errorf("failed attempt must not resurrect a cancelled reminder, got %s", stored.Status)
	}
	if stored.AttemptCount != 0 {
		t.Errorf("dropped outcome must not touch the stored row, attemptCount %d", stored.AttemptCount)
	}
}

func TestSweepRetriesSkipsExhaustedAndUntouched(t *testing.T) {
	mailer := &fakeMailer{}
	now := time.Date(2026, 6, 9, 14, 0, 0, 0, time.UTC)
	dispatcher, store, _ := newTestDispatcher(mailer, now)

	// Exhausted: at the cap, no longer a retry candidate
	exhausted := scheduledReminder(store, now.Add(-time.Minute))
	exhausted.AttemptCount = dispatcher.Config.MaxAttempts
	store.Save(exhausted)

	// Untouched: zero attempts, belongs to the due sweep instead
	untouched := scheduledReminder(store, now.Add(-time.Minute))

	dispatcher.SweepRetries()

	if mailer.attempts != 0 {
		t.Errorf("retry sweep must only touch partially failed reminders, got %d attempts", mailer.attempts)
	}
	if store.reminders[untouched.ID].Status != models.ReminderScheduled {
		t.Errorf("untouched reminder must stay scheduled")
	}
}
