package notify

import (
	"context"
	"time"

	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
)

const (
	defaultInterval = 15 * time.Second
	defaultBatch    = 20
	maxAttempts     = 5
	baseBackoff     = time.Minute
	maxBackoff      = time.Hour
)

// Worker drains the notification outbox. Delivery failures never touch the
// orders that enqueued the rows; they only reschedule the row itself.
type Worker struct {
	Outbox   *repo.OutboxRepo
	Mailer   Mailer
	Interval time.Duration
	Batch    int

	now func() time.Time
}

func NewWorker(outbox *repo.OutboxRepo, mailer Mailer) *Worker {
	return &Worker{
		Outbox:   outbox,
		Mailer:   mailer,
		Interval: defaultInterval,
		Batch:    defaultBatch,
		now:      time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	l := logging.FromContext(ctx).With("worker", "notify")
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Info("notify_worker_stopped")
			return
		case <-ticker.C:
			w.ProcessDue(ctx)
		}
	}
}

// ProcessDue delivers one batch of due notifications and reports how many
// were attempted.
func (w *Worker) ProcessDue(ctx context.Context) int {
	l := logging.FromContext(ctx).With("worker", "notify")

	notes, err := w.Outbox.Due(ctx, w.now(), w.Batch)
	if err != nil {
		l.Error("outbox_fetch_failed", "error", err)
		return 0
	}

	for i := range notes {
		w.deliver(ctx, &notes[i])
	}
	return len(notes)
}

func (w *Worker) deliver(ctx context.Context, note *models.Notification) {
	l := logging.FromContext(ctx).With("worker", "notify", "notification", note.ID.String(), "kind", string(note.Kind))

	if err := w.Mailer.Send(note.Recipient, note.Subject, note.Body); err != nil {
		attempts := note.Attempts + 1
		terminal := attempts >= maxAttempts
		next := w.now().Add(Backoff(attempts))

		l.Warn("notification_send_failed",
			"reason", ClassifySendError(err),
			"attempts", attempts,
			"terminal", terminal,
			"error", err,
		)

		if err := w.Outbox.MarkRetry(ctx, note.ID, attempts, next, err.Error(), terminal); err != nil {
			l.Error("outbox_update_failed", "error", err)
		}
		return
	}

	if err := w.Outbox.MarkSent(ctx, note.ID, w.now()); err != nil {
		l.Error("outbox_update_failed", "error", err)
		return
	}
	l.Info("notification_sent", "recipient", note.Recipient)
}

// Backoff doubles per attempt starting at one minute, capped at an hour.
func Backoff(attempts int) time.Duration {
	d := baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
