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

func addToCart(env *testEnv, user *models.User, bookID string, quantity int) *httptest.ResponseRecorder {
	body := map[string]interface{}{"book_id": bookID, "quantity": quantity}
	rec := httptest.NewRecorder()
	env.carts.Add(rec, newRequest(http.MethodPost, "/api/carts", body, user))
	return rec
}

func TestAddToCartMergesQuantity(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)

	require.Equal(t, http.StatusOK, addToCart(env, user, book.ID.Hex(), 2).Code)
	require.Equal(t, http.StatusOK, addToCart(env, user, book.ID.Hex(), 3).Code)

	items, err := env.db.Carts.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddToCartUnknownBook(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	rec := addToCart(env, user, "64a000000000000000000000", 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateQuantityZeroRemovesRow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	require.Equal(t, http.StatusOK, addToCart(env, user, book.ID.Hex(), 2).Code)

	body := map[string]interface{}{"quantity": 0}
	req := newRequest(http.MethodPut, "/api/carts/"+book.ID.Hex(), body, user)
	req = mux.SetURLVars(req, map[string]string{"bookId": book.ID.Hex()})
	rec := httptest.NewRecorder()
	env.carts.UpdateQuantity(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	items, err := env.db.Carts.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetCartPopulatesBooks(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", models.RoleCustomer, "")
	book := env.createBook(t, "Dune", 15, models.TagNone, nil)
	require.Equal(t, http.StatusOK, addToCart(env, user, book.ID.Hex(), 1).Code)

	rec := httptest.NewRecorder()
	env.carts.Get(rec, newRequest(http.MethodGet, "/api/carts", nil, user))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	decodeBody(t, rec, &items)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Book)
	assert.Equal(t, "Dune", items[0].Book.Title)
}
