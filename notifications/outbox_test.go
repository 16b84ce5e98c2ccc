package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullybooked/models"
)

func TestDispatchPendingSendsAndMarks(t *testing.T) {
	db, push, d := newFixture(t)
	addUser(t, db, "alice", "token-alice")
	book := addSaleBook(t, db, "Dune", 20, 10)

	require.NoError(t, d.EnqueueBookSale(context.Background(), book))
	require.NoError(t, d.DispatchPending(context.Background()))
	assert.Len(t, push.tokens(), 1)

	pending, err := db.Notifications.PendingEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second run has nothing to do.
	require.NoError(t, d.DispatchPending(context.Background()))
	assert.Len(t, push.tokens(), 1)
}

func TestDispatchPendingSkipsEndedSale(t *testing.T) {
	db, push, d := newFixture(t)
	addUser(t, db, "alice", "token-alice")
	book := addSaleBook(t, db, "Dune", 20, 10)
	require.NoError(t, d.EnqueueBookSale(context.Background(), book))

	book.Tag = models.TagNone
	book.DiscountPrice = nil
	require.NoError(t, db.Books.Update(context.Background(), book))

	require.NoError(t, d.DispatchPending(context.Background()))
	assert.Empty(t, push.tokens())

	// The stale event is consumed, not retried forever.
	pending, err := db.Notifications.PendingEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDispatchPendingKeepsFailedEvent(t *testing.T) {
	db, _, d := newFixture(t)
	require.NoError(t, db.Notifications.EnqueueEvent(context.Background(), &models.OutboxEvent{
		ID:      "evt-1",
		Type:    models.EventBookOnSale,
		Payload: map[string]interface{}{"bookId": "not-a-hex-id"},
	}))

	require.NoError(t, d.DispatchPending(context.Background()))

	pending, err := db.Notifications.PendingEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	_, _, d := newFixture(t)
	_, err := d.Start("not a schedule")
	assert.Error(t, err)
}

func TestStartValidSchedule(t *testing.T) {
	_, _, d := newFixture(t)
	c, err := d.Start("@every 1h")
	require.NoError(t, err)
	c.Stop()
}
