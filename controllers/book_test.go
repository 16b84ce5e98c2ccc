package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fullybooked/models"
	"fullybooked/store"
)

func createBookMultipart(env *testEnv, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/books/create-book", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.books.Create(rec, req)
	return rec
}

func TestCreateBookWithoutImageFails(t *testing.T) {
	env := newTestEnv(t)
	rec := createBookMultipart(env, map[string]string{
		"title":    "Dune",
		"author":   "Frank Herbert",
		"category": models.CategoryFiction,
		"price":    "15",
		"stock":    "4",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	books, err := env.db.Books.List(context.Background(), store.BookFilter{})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestCreateBookWithImageURL(t *testing.T) {
	env := newTestEnv(t)
	rec := createBookMultipart(env, map[string]string{
		"title":      "Dune",
		"author":     "Frank Herbert",
		"category":   models.CategoryFiction,
		"price":      "15",
		"stock":      "4",
		"image_urls": "https://img.example.com/dune.jpg",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	books, err := env.db.Books.List(context.Background(), store.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, []string{"https://img.example.com/dune.jpg"}, books[0].CoverImages)
	assert.Equal(t, models.TagNone, books[0].Tag)
}

func TestCreateSaleBookWithoutDiscountFails(t *testing.T) {
	env := newTestEnv(t)
	rec := createBookMultipart(env, map[string]string{
		"title":      "Dune",
		"author":     "Frank Herbert",
		"category":   models.CategoryFiction,
		"price":      "15",
		"stock":      "4",
		"tag":        models.TagSale,
		"image_urls": "https://img.example.com/dune.jpg",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSaleBookEnqueuesOutboxEvent(t *testing.T) {
	env := newTestEnv(t)
	rec := createBookMultipart(env, map[string]string{
		"title":          "Dune",
		"author":         "Frank Herbert",
		"category":       models.CategoryFiction,
		"price":          "20",
		"stock":          "4",
		"tag":            models.TagSale,
		"discount_price": "10",
		"image_urls":     "https://img.example.com/dune.jpg",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	events, err := env.db.Notifications.PendingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventBookOnSale, events[0].Type)
}

func updateBook(env *testEnv, bookID string, body map[string]interface{}) *httptest.ResponseRecorder {
	req := newRequest(http.MethodPut, "/api/books/edit/"+bookID, body, nil)
	req = mux.SetURLVars(req, map[string]string{"id": bookID})
	rec := httptest.NewRecorder()
	env.books.Update(rec, req)
	return rec
}

func TestUpdateBookTagDiscountConsistency(t *testing.T) {
	env := newTestEnv(t)
	discount := 10.0
	saleBook := env.createBook(t, "Dune", 20, models.TagSale, &discount)
	plainBook := env.createBook(t, "Foundation", 12, models.TagNone, nil)

	// Dropping the Sale tag while a discount price is set must fail.
	rec := updateBook(env, saleBook.ID.Hex(), map[string]interface{}{"tag": models.TagHot})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Setting the Sale tag without a discount price must fail.
	rec = updateBook(env, plainBook.ID.Hex(), map[string]interface{}{"tag": models.TagSale})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Clearing the discount and the tag together is allowed.
	rec = updateBook(env, saleBook.ID.Hex(), map[string]interface{}{
		"tag":            models.TagHot,
		"discount_price": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := env.db.Books.GetByID(context.Background(), saleBook.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DiscountPrice)
	assert.Equal(t, models.TagHot, got.Tag)
}

func TestUpdateBookPuttingOnSaleEnqueuesEvent(t *testing.T) {
	env := newTestEnv(t)
	book := env.createBook(t, "Dune", 20, models.TagNone, nil)

	rec := updateBook(env, book.ID.Hex(), map[string]interface{}{
		"tag":            models.TagSale,
		"discount_price": 12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	events, err := env.db.Notifications.PendingEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)

	// An unrelated edit to an already-on-sale book must not enqueue again.
	rec = updateBook(env, book.ID.Hex(), map[string]interface{}{"stock": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	events, err = env.db.Notifications.PendingEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestListBooksFilters(t *testing.T) {
	env := newTestEnv(t)
	env.createBook(t, "Dune", 20, models.TagHot, nil)
	discount := 5.0
	sale := env.createBook(t, "Foundation", 12, models.TagSale, &discount)

	req := httptest.NewRequest(http.MethodGet, "/api/books?tag=Sale", nil)
	rec := httptest.NewRecorder()
	env.books.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var books []models.Book
	decodeBody(t, rec, &books)
	require.Len(t, books, 1)
	assert.Equal(t, sale.ID, books[0].ID)
}
