package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string // recipients, in order
	fail error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func newTestWorker(db *gorm.DB, mailer Mailer, now time.Time) *Worker {
	w := NewWorker(&repo.OutboxRepo{DB: db}, mailer)
	w.now = func() time.Time { return now }
	return w
}

func seedNote(t *testing.T, db *gorm.DB, due time.Time, attempts int) models.Notification {
	t.Helper()

	note := models.Notification{
		ID:            uuid.New(),
		Kind:          models.NotificationOrderConfirmation,
		OrderNumber:   "ORD-000001",
		Recipient:     "jane@example.com",
		Subject:       "Order ORD-000001 confirmed",
		Body:          "Thank you",
		Status:        models.NotificationPending,
		Attempts:      attempts,
		NextAttemptAt: due,
	}
	require.NoError(t, db.Create(&note).Error)
	return note
}

func TestWorker_ProcessDue_Sends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	mailer := &fakeMailer{}
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	w := newTestWorker(db, mailer, now)

	note := seedNote(t, db, now.Add(-time.Minute), 0)
	// Not due yet, must stay untouched.
	future := seedNote(t, db, now.Add(time.Hour), 0)

	assert.Equal(t, 1, w.ProcessDue(ctx))
	assert.Equal(t, []string{"jane@example.com"}, mailer.sentTo())

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", note.ID).Error)
	assert.Equal(t, models.NotificationSent, stored.Status)
	require.NotNil(t, stored.SentAt)
	assert.True(t, stored.SentAt.Equal(now))

	stored = models.Notification{}
	require.NoError(t, db.First(&stored, "id = ?", future.ID).Error)
	assert.Equal(t, models.NotificationPending, stored.Status)
}

func TestWorker_ProcessDue_FailureReschedules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	mailer := &fakeMailer{fail: errors.New("smtp: connection refused")}
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	w := newTestWorker(db, mailer, now)

	note := seedNote(t, db, now.Add(-time.Minute), 0)

	assert.Equal(t, 1, w.ProcessDue(ctx))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", note.ID).Error)
	assert.Equal(t, models.NotificationPending, stored.Status, "first failure is retryable")
	assert.Equal(t, 1, stored.Attempts)
	assert.Contains(t, stored.LastError, "connection refused")
	assert.True(t, stored.NextAttemptAt.After(now), "rescheduled into the future")

	// Still rescheduled ahead of now, so the next pass picks up nothing.
	assert.Equal(t, 0, w.ProcessDue(ctx))
}

func TestWorker_ProcessDue_TerminalAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	mailer := &fakeMailer{fail: errors.New("smtp: 550 mailbox unavailable")}
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	w := newTestWorker(db, mailer, now)

	note := seedNote(t, db, now.Add(-time.Minute), maxAttempts-1)

	assert.Equal(t, 1, w.ProcessDue(ctx))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", note.ID).Error)
	assert.Equal(t, models.NotificationFailed, stored.Status)
	assert.Equal(t, maxAttempts, stored.Attempts)

	// Failed rows are dead, never retried.
	assert.Equal(t, 0, w.ProcessDue(ctx))
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Minute, Backoff(1))
	assert.Equal(t, 2*time.Minute, Backoff(2))
	assert.Equal(t, 4*time.Minute, Backoff(3))
	assert.Equal(t, 16*time.Minute, Backoff(5))
	assert.Equal(t, time.Hour, Backoff(12))
}

func TestClassifySendError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", ClassifySendError(nil))
	assert.Equal(t, "auth", ClassifySendError(errors.New("535 5.7.8 Username and Password not accepted")))
	assert.Equal(t, "connection", ClassifySendError(errors.New("dial tcp: i/o timeout")))
	assert.Equal(t, "other", ClassifySendError(errors.New("message rejected")))
}

func TestBuildOrderConfirmation(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	order := &models.Order{
		OrderNumber:   "ORD-000042",
		CustomerEmail: "jane@example.com",
		CustomerName:  "Jane Doe",
		TotalAmount:   30,
		Items: []models.OrderItem{
			{Name: "Vase", Price: 10, Quantity: 3},
		},
	}

	note, err := BuildOrderConfirmation(order, now)
	require.NoError(t, err)

	assert.Equal(t, models.NotificationOrderConfirmation, note.Kind)
	assert.Equal(t, "jane@example.com", note.Recipient)
	assert.Equal(t, "ORD-000042", note.OrderNumber)
	assert.Contains(t, note.Subject, "ORD-000042")
	assert.Contains(t, note.Body, "Jane Doe")
	assert.Contains(t, note.Body, "Vase x3 @ 10.00")
	assert.Contains(t, note.Body, "Total: 30.00")
	assert.True(t, note.NextAttemptAt.Equal(now), "due immediately")
}

func TestBuildStatusChange(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		OrderNumber:    "ORD-000042",
		CustomerEmail:  "jane@example.com",
		CustomerName:   "Jane Doe",
		Status:         "shipped",
		TrackingNumber: "TRACK-9",
	}

	note, err := BuildStatusChange(order, time.Now())
	require.NoError(t, err)

	assert.Equal(t, models.NotificationStatusChange, note.Kind)
	assert.Contains(t, note.Subject, "shipped")
	assert.Contains(t, note.Body, "now shipped")
	assert.Contains(t, note.Body, "TRACK-9")

	order.TrackingNumber = ""
	bare, err := BuildStatusChange(order, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, bare.Body, "Tracking number")
}
