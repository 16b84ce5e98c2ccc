package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
)

// EnqueueBookSale records a sale event in the outbox. The business handler
// only mutates state; the consumer does the push I/O, so a crashed or retried
// handler never double-sends.
func (d *Dispatcher) EnqueueBookSale(ctx context.Context, book *models.Book) error {
	return d.notifications.EnqueueEvent(ctx, &models.OutboxEvent{
		ID:   uuid.NewString(),
		Type: models.EventBookOnSale,
		Payload: map[string]interface{}{
			"bookId": book.ID.Hex(),
		},
	})
}

// DispatchPending consumes every unsent outbox event in order. An event is
// marked sent once handled, even when some recipients failed; per-recipient
// failures are logged, not retried.
func (d *Dispatcher) DispatchPending(ctx context.Context) error {
	events, err := d.notifications.PendingEvents(ctx)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := d.dispatchEvent(ctx, &event); err != nil {
			d.log.Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.Type).
				Msg("outbox event dispatch failed")
			continue
		}
		if err := d.notifications.MarkEventSent(ctx, event.ID); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) dispatchEvent(ctx context.Context, event *models.OutboxEvent) error {
	switch event.Type {
	case models.EventBookOnSale:
		hex, _ := event.Payload["bookId"].(string)
		bookID, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return fmt.Errorf("event %s has bad book id %q: %w", event.ID, hex, err)
		}
		book, err := d.books.GetByID(ctx, bookID)
		if err != nil {
			return err
		}
		if !book.OnSale() {
			// The sale ended before the event was consumed.
			return nil
		}
		succeeded, failed, err := d.SendBookSaleNotification(ctx, book)
		if err != nil {
			return err
		}
		d.log.Info().
			Str("book_id", bookID.Hex()).
			Int("succeeded", len(succeeded)).
			Int("failed", len(failed)).
			Msg("sale notification fan-out finished")
		return nil
	default:
		return fmt.Errorf("unknown outbox event type %q", event.Type)
	}
}

// Start schedules DispatchPending on the given interval and returns the
// running cron so the caller can Stop it on shutdown.
func (d *Dispatcher) Start(every string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(every, func() {
		if err := d.DispatchPending(context.Background()); err != nil {
			d.log.Error().Err(err).Msg("outbox dispatch run failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
