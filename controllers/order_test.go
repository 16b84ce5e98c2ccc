package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullybooked/models"
)

func placeOrder(t *testing.T, env *testEnv, user *models.User, book *models.Book) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:     user.ID,
		Name:       user.Username,
		Email:      user.Email,
		Items:      []models.OrderItem{{BookID: book.ID, Quantity: 1}},
		TotalPrice: book.Price,
		Status:     models.StatusPending,
	}
	require.NoError(t, env.db.Orders.Create(context.Background(), order))
	return order
}

func updateStatus(env *testEnv, orderID, status string) *httptest.ResponseRecorder {
	req := newRequest(http.MethodPut, "/api/orders/update-status/"+orderID,
		map[string]string{"status": status}, nil)
	req = mux.SetURLVars(req, map[string]string{"id": orderID})
	rec := httptest.NewRecorder()
	env.orders.UpdateStatus(rec, req)
	return rec
}

func TestPlaceOrderRequiresItemsAndTotal(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"no items", map[string]interface{}{"totalAmount": 12.5}},
		{"no total", map[string]interface{}{"items": []map[string]interface{}{{"quantity": 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.orders.PlaceOrder(rec, newRequest(http.MethodPost, "/api/orders/place", tc.body, user))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			orders, err := env.db.Orders.ListByUser(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func TestPlaceOrderCreatesPendingAndClearsCart(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)

	require.NoError(t, env.db.Carts.Add(context.Background(),
		&models.CartItem{UserID: user.ID, BookID: book.ID, Quantity: 2}))

	body := map[string]interface{}{
		"items":       []map[string]interface{}{{"book_id": book.ID.Hex(), "quantity": 2}},
		"totalAmount": 30.0,
	}
	rec := httptest.NewRecorder()
	env.orders.PlaceOrder(rec, newRequest(http.MethodPost, "/api/orders/place", body, user))
	require.Equal(t, http.StatusCreated, rec.Code)

	orders, err := env.db.Orders.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusPending, orders[0].Status)
	assert.Equal(t, 30.0, orders[0].TotalPrice)
	assert.False(t, orders[0].NotificationSent)
	assert.Nil(t, orders[0].DeliveredAt)

	cart, err := env.db.Carts.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	rec := updateStatus(env, "64a000000000000000000000", models.StatusProcessing)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	order := placeOrder(t, env, user, book)

	rec := updateStatus(env, order.ID.Hex(), "Completed")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeliveredSetsTimestampOnceAndNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "ExponentPushToken[alice]")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	order := placeOrder(t, env, user, book)

	rec := updateStatus(env, order.ID.Hex(), models.StatusDelivered)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.db.Orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DeliveredAt)
	assert.True(t, got.NotificationSent)
	firstDelivered := *got.DeliveredAt
	assert.Equal(t, 1, env.push.count())

	// A retried update must not re-push or move the timestamp.
	rec = updateStatus(env, order.ID.Hex(), models.StatusDelivered)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err = env.db.Orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, firstDelivered, *got.DeliveredAt)
	assert.True(t, got.NotificationSent)
	assert.Equal(t, 1, env.push.count())

	// The log entry carries the structured payload the client routes on.
	log, err := env.db.Notifications.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, "Order Completed", log[0].Title)
	assert.Equal(t, models.NotificationOrderStatusUpdate, log[0].Type)
	assert.Equal(t, order.ID.Hex(), log[0].Data["orderId"])
}

func TestDeliveredPushFailureStillSavesOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "ExponentPushToken[alice]")
	env.push.fail[user.PushToken] = true
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	order := placeOrder(t, env, user, book)

	rec := updateStatus(env, order.ID.Hex(), models.StatusDelivered)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.db.Orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)
	assert.True(t, got.NotificationSent)
}

func TestIntermediateStatusDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "ExponentPushToken[alice]")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	order := placeOrder(t, env, user, book)

	for _, status := range []string{models.StatusProcessing, models.StatusShipping} {
		rec := updateStatus(env, order.ID.Hex(), status)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	got, err := env.db.Orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, got.NotificationSent)
	assert.Nil(t, got.DeliveredAt)
	assert.Equal(t, 0, env.push.count())
}

func TestAllOrdersNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	first := placeOrder(t, env, user, book)
	second := placeOrder(t, env, user, book)

	req := newRequest(http.MethodGet, "/api/orders/all", nil, nil)
	rec := httptest.NewRecorder()
	env.orders.AllOrders(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	decodeBody(t, rec, &orders)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}

func TestDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	order := placeOrder(t, env, user, book)

	req := newRequest(http.MethodDelete, "/api/orders/"+order.ID.Hex(), nil, nil)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID.Hex()})
	rec := httptest.NewRecorder()
	env.orders.Delete(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = newRequest(http.MethodDelete, "/api/orders/"+order.ID.Hex(), nil, nil)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID.Hex()})
	env.orders.Delete(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
