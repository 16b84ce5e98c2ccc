package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
	"fullybooked/notifications"
	"fullybooked/store"
	"fullybooked/utils"
)

// BookController handles catalog requests
type BookController struct {
	books      store.BookStore
	images     utils.ImageStorage
	dispatcher *notifications.Dispatcher
	log        zerolog.Logger
}

// NewBookController creates a new BookController
func NewBookController(books store.BookStore, images utils.ImageStorage, dispatcher *notifications.Dispatcher, logger zerolog.Logger) *BookController {
	return &BookController{books: books, images: images, dispatcher: dispatcher, log: logger}
}

// Create handles adding a new book (admin only). The request is multipart:
// scalar fields plus up to 5 cover images, either uploaded files or
// pre-hosted URLs. A book without at least one image is rejected before
// anything is written.
func (bc *BookController) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}

	book := models.Book{
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Tag:         r.FormValue("tag"),
	}
	if book.Tag == "" {
		book.Tag = models.TagNone
	}
	book.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
	book.Stock, _ = strconv.Atoi(r.FormValue("stock"))
	if v := r.FormValue("discount_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid discount price")
			return
		}
		book.DiscountPrice = &price
	}

	sources := utils.ResolveImageSources(r)
	if len(sources) == 0 {
		respondError(w, http.StatusBadRequest, "At least one cover image is required")
		return
	}
	urls, err := utils.SaveAll(bc.images, sources)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store cover images")
		return
	}
	book.CoverImages = urls

	if err := book.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	if err := bc.books.Create(ctx, &book); err != nil {
		respondError(w, http.StatusInternalServerError, "Error creating book")
		return
	}

	if book.OnSale() {
		if err := bc.dispatcher.EnqueueBookSale(ctx, &book); err != nil {
			bc.log.Warn().Err(err).Str("book_id", book.ID.Hex()).Msg("failed to enqueue sale event")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"book": book})
}

// List retrieves all books, optionally filtered by category or tag.
func (bc *BookController) List(w http.ResponseWriter, r *http.Request) {
	filter := store.BookFilter{
		Category: r.URL.Query().Get("category"),
		Tag:      r.URL.Query().Get("tag"),
	}

	ctx, cancel := dbCtx()
	defer cancel()
	books, err := bc.books.List(ctx, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching books")
		return
	}
	respondJSON(w, http.StatusOK, books)
}

// Get retrieves a single book by ID.
func (bc *BookController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	book, err := bc.books.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, err, "Book not found")
		return
	}
	respondJSON(w, http.StatusOK, book)
}

type updateBookRequest struct {
	Title         *string  `json:"title"`
	Author        *string  `json:"author"`
	Category      *string  `json:"category"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Tag           *string  `json:"tag"`
	Stock         *int     `json:"stock"`
	DiscountPrice *float64 `json:"discount_price"`
	CoverImages   []string `json:"cover_images"`
}

// Update handles editing a book (admin only). Fields absent from the body are
// left untouched. A discount price of 0 or less clears the discount. Putting
// a book on sale enqueues the sale notification event.
func (bc *BookController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	book, err := bc.books.GetByID(ctx, id)
	if err != nil {
		respondStoreError(w, err, "Book not found")
		return
	}
	wasOnSale := book.OnSale()

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.Tag != nil {
		book.Tag = *req.Tag
	}
	if req.Stock != nil {
		book.Stock = *req.Stock
	}
	if req.DiscountPrice != nil {
		if *req.DiscountPrice > 0 {
			book.DiscountPrice = req.DiscountPrice
		} else {
			book.DiscountPrice = nil
		}
	}
	if req.CoverImages != nil {
		book.CoverImages = req.CoverImages
	}

	if err := book.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := bc.books.Update(ctx, book); err != nil {
		respondStoreError(w, err, "Book not found")
		return
	}

	if book.OnSale() && !wasOnSale {
		if err := bc.dispatcher.EnqueueBookSale(ctx, book); err != nil {
			bc.log.Warn().Err(err).Str("book_id", book.ID.Hex()).Msg("failed to enqueue sale event")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"book": book})
}

// Delete handles deleting a book (admin only).
func (bc *BookController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	if err := bc.books.Delete(ctx, id); err != nil {
		respondStoreError(w, err, "Book not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}
