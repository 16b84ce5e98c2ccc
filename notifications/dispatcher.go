// Package notifications turns backend events (order status changes, new
// sales) into per-user notification log entries and push messages.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
	"fullybooked/store"
)

// Dispatcher composes and delivers notifications. Log entries are persisted
// first so the user can browse them offline; the push itself is best-effort.
type Dispatcher struct {
	users         store.UserStore
	books         store.BookStore
	notifications store.NotificationStore
	push          PushClient
	log           zerolog.Logger
	// stagger spaces out catch-up sends so a user logging in after a few
	// sales is not hit with a burst.
	stagger time.Duration
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	users store.UserStore,
	books store.BookStore,
	notifications store.NotificationStore,
	push PushClient,
	logger zerolog.Logger,
	stagger time.Duration,
) *Dispatcher {
	return &Dispatcher{
		users:         users,
		books:         books,
		notifications: notifications,
		push:          push,
		log:           logger,
		stagger:       stagger,
	}
}

// SendOrderStatusNotification logs and pushes a status update for an order.
// The push payload carries {type, orderId, status} for client-side routing.
func (d *Dispatcher) SendOrderStatusNotification(ctx context.Context, user *models.User, order *models.Order, status string) error {
	title := "Order Update"
	if status == models.StatusDelivered {
		title = "Order Completed"
	}
	body := fmt.Sprintf("Your order #%s is now %s.", shortRef(order.ID), status)

	n := &models.Notification{
		UserID: user.ID,
		Title:  title,
		Body:   body,
		Type:   models.NotificationOrderStatusUpdate,
		Data: map[string]interface{}{
			"orderId": order.ID.Hex(),
			"status":  status,
		},
	}
	if err := d.notifications.CreateNotification(ctx, n); err != nil {
		return err
	}
	return d.pushTo(ctx, user, title, body, n.Data)
}

// SendBookSaleNotification records the sale for later catch-up and fans out a
// push plus a log entry to every known user. One recipient's failure does not
// abort the loop; succeeded and failed user ids are both returned.
func (d *Dispatcher) SendBookSaleNotification(ctx context.Context, book *models.Book) (succeeded, failed []string, err error) {
	if !book.OnSale() {
		return nil, nil, fmt.Errorf("book %s is not on sale", book.ID.Hex())
	}

	sb := &models.SaleBook{
		BookID:        book.ID,
		Title:         book.Title,
		Price:         book.Price,
		DiscountPrice: *book.DiscountPrice,
	}
	if err := d.notifications.CreateSaleBook(ctx, sb); err != nil {
		return nil, nil, err
	}

	users, err := d.users.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range users {
		user := &users[i]
		if err := d.notifySale(ctx, user, sb); err != nil {
			d.log.Warn().Err(err).
				Str("user_id", user.ID.Hex()).
				Str("book_id", book.ID.Hex()).
				Msg("sale notification failed")
			failed = append(failed, user.ID.Hex())
			continue
		}
		succeeded = append(succeeded, user.ID.Hex())
	}
	return succeeded, failed, nil
}

// CheckPendingSaleNotifications catches a user up on sales they have not been
// told about, sending staggered notifications and marking the ledger so a
// second call finds nothing pending. Returns how many were sent.
func (d *Dispatcher) CheckPendingSaleNotifications(ctx context.Context, userID primitive.ObjectID) (int, error) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	pending, err := d.notifications.UnnotifiedSaleBooks(ctx, userID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range pending {
		if i > 0 && d.stagger > 0 {
			select {
			case <-time.After(d.stagger):
			case <-ctx.Done():
				return sent, ctx.Err()
			}
		}
		if err := d.notifySale(ctx, user, &pending[i]); err != nil {
			d.log.Warn().Err(err).
				Str("user_id", userID.Hex()).
				Str("book_id", pending[i].BookID.Hex()).
				Msg("catch-up notification failed")
			continue
		}
		sent++
	}
	return sent, nil
}

// notifySale logs and pushes one sale notification, then records the
// (book, user) pair in the idempotency ledger.
func (d *Dispatcher) notifySale(ctx context.Context, user *models.User, sb *models.SaleBook) error {
	percent := 0
	if sb.Price > 0 {
		percent = int((sb.Price - sb.DiscountPrice) / sb.Price * 100)
	}
	title := "Book on Sale!"
	body := fmt.Sprintf("%s is now %d%% off at $%.2f.", sb.Title, percent, sb.DiscountPrice)
	data := map[string]interface{}{
		"bookId":          sb.BookID.Hex(),
		"discountPercent": percent,
	}

	n := &models.Notification{
		UserID: user.ID,
		Title:  title,
		Body:   body,
		Type:   models.NotificationBookSale,
		Data:   data,
	}
	if err := d.notifications.CreateNotification(ctx, n); err != nil {
		return err
	}
	if err := d.pushTo(ctx, user, title, body, data); err != nil {
		return err
	}
	return d.notifications.MarkSaleNotified(ctx, sb.BookID, user.ID)
}

// pushTo delivers a push to the user's device. Users without a registered
// push token only get the log entry.
func (d *Dispatcher) pushTo(ctx context.Context, user *models.User, title, body string, data map[string]interface{}) error {
	if user.PushToken == "" {
		return nil
	}
	return d.push.Send(ctx, PushMessage{
		To:    user.PushToken,
		Title: title,
		Body:  body,
		Data:  data,
	})
}

func shortRef(id primitive.ObjectID) string {
	hex := id.Hex()
	if len(hex) > 8 {
		return hex[len(hex)-8:]
	}
	return hex
}
