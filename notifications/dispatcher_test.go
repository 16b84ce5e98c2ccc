package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullybooked/models"
	"fullybooked/store/memory"
)

type fakePush struct {
	mu   sync.Mutex
	sent []PushMessage
	fail map[string]bool
}

func (f *fakePush) Send(ctx context.Context, msg PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[msg.To] {
		return errors.New("gateway rejected token")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakePush) tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

func newFixture(t *testing.T) (*memory.DB, *fakePush, *Dispatcher) {
	t.Helper()
	db := memory.Open()
	push := &fakePush{fail: map[string]bool{}}
	d := NewDispatcher(db.Users, db.Books, db.Notifications, push, zerolog.Nop(), 0)
	return db, push, d
}

func addUser(t *testing.T, db *memory.DB, name, token string) *models.User {
	t.Helper()
	u := &models.User{
		Username:  name,
		Email:     name + "@example.com",
		Role:      models.RoleCustomer,
		PushToken: token,
	}
	require.NoError(t, db.Users.Create(context.Background(), u))
	return u
}

func addSaleBook(t *testing.T, db *memory.DB, title string, price, discount float64) *models.Book {
	t.Helper()
	b := &models.Book{
		Title:         title,
		Author:        "Author",
		Category:      models.CategoryFiction,
		Price:         price,
		Stock:         5,
		Tag:           models.TagSale,
		DiscountPrice: &discount,
		CoverImages:   []string{"https://img.example.com/c.jpg"},
	}
	require.NoError(t, db.Books.Create(context.Background(), b))
	return b
}

func TestSendBookSaleFanOutIsolatesFailures(t *testing.T) {
	db, push, d := newFixture(t)
	ok := addUser(t, db, "alice", "token-alice")
	bad := addUser(t, db, "bob", "token-bob")
	push.fail["token-bob"] = true
	book := addSaleBook(t, db, "Dune", 20, 10)

	succeeded, failed, err := d.SendBookSaleNotification(context.Background(), book)
	require.NoError(t, err)
	assert.Equal(t, []string{ok.ID.Hex()}, succeeded)
	assert.Equal(t, []string{bad.ID.Hex()}, failed)
	assert.Equal(t, []string{"token-alice"}, push.tokens())

	// The failed recipient stays pending for the next catch-up.
	pending, err := db.Notifications.UnnotifiedSaleBooks(context.Background(), bad.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	pending, err = db.Notifications.UnnotifiedSaleBooks(context.Background(), ok.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSendBookSaleRejectsBookNotOnSale(t *testing.T) {
	db, _, d := newFixture(t)
	b := &models.Book{
		Title:       "Foundation",
		Author:      "Author",
		Category:    models.CategoryFiction,
		Price:       12,
		Stock:       5,
		Tag:         models.TagNone,
		CoverImages: []string{"https://img.example.com/c.jpg"},
	}
	require.NoError(t, db.Books.Create(context.Background(), b))

	_, _, err := d.SendBookSaleNotification(context.Background(), b)
	assert.Error(t, err)
}

func TestCheckPendingSaleNotificationsIsIdempotent(t *testing.T) {
	db, push, d := newFixture(t)
	user := addUser(t, db, "alice", "token-alice")
	book1 := addSaleBook(t, db, "Dune", 20, 10)
	book2 := addSaleBook(t, db, "Foundation", 12, 6)
	_, _, err := d.SendBookSaleNotification(context.Background(), book1)
	require.NoError(t, err)
	_, _, err = d.SendBookSaleNotification(context.Background(), book2)
	require.NoError(t, err)

	// A user created after the fan-out missed both sales.
	late := addUser(t, db, "bob", "token-bob")
	push.sent = nil

	sent, err := d.CheckPendingSaleNotifications(context.Background(), late.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, push.tokens(), 2)

	sent, err = d.CheckPendingSaleNotifications(context.Background(), late.ID)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, push.tokens(), 2)

	// The user who was notified during fan-out has nothing pending either.
	sent, err = d.CheckPendingSaleNotifications(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestUserWithoutPushTokenStillGetsLogEntry(t *testing.T) {
	db, push, d := newFixture(t)
	user := addUser(t, db, "alice", "")
	book := addSaleBook(t, db, "Dune", 20, 10)

	succeeded, failed, err := d.SendBookSaleNotification(context.Background(), book)
	require.NoError(t, err)
	assert.Equal(t, []string{user.ID.Hex()}, succeeded)
	assert.Empty(t, failed)
	assert.Empty(t, push.tokens())

	log, err := db.Notifications.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, models.NotificationBookSale, log[0].Type)
}

func TestOrderStatusNotificationTitles(t *testing.T) {
	db, push, d := newFixture(t)
	user := addUser(t, db, "alice", "token-alice")
	order := &models.Order{UserID: user.ID, Email: user.Email, TotalPrice: 30, Status: models.StatusShipping}
	require.NoError(t, db.Orders.Create(context.Background(), order))

	require.NoError(t, d.SendOrderStatusNotification(context.Background(), user, order, models.StatusShipping))
	require.NoError(t, d.SendOrderStatusNotification(context.Background(), user, order, models.StatusDelivered))

	require.Len(t, push.sent, 2)
	assert.Equal(t, "Order Update", push.sent[0].Title)
	assert.Equal(t, "Order Completed", push.sent[1].Title)
	assert.Equal(t, order.ID.Hex(), push.sent[1].Data["orderId"])
}
