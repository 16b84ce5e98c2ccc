package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/middleware"
	"fullybooked/models"
	"fullybooked/store"
)

// CartController handles cart-related requests
type CartController struct {
	carts store.CartStore
	books store.BookStore
}

// NewCartController creates a new CartController
func NewCartController(carts store.CartStore, books store.BookStore) *CartController {
	return &CartController{carts: carts, books: books}
}

func (cc *CartController) currentUserID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

type addToCartRequest struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

// Add puts a book in the user's cart. Adding a book already in the cart
// increments its quantity rather than inserting a second row.
func (cc *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if _, err := cc.books.GetByID(ctx, bookID); err != nil {
		respondStoreError(w, err, "Book not found")
		return
	}

	item := models.CartItem{UserID: userID, BookID: bookID, Quantity: req.Quantity}
	if err := cc.carts.Add(ctx, &item); err != nil {
		respondError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item added to cart"})
}

// Get retrieves the user's cart with book details populated.
func (cc *CartController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	items, err := cc.carts.ListByUser(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching cart")
		return
	}
	for i := range items {
		if book, err := cc.books.GetByID(ctx, items[i].BookID); err == nil {
			items[i].Book = book
		}
	}
	respondJSON(w, http.StatusOK, items)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets the quantity of a cart row; zero or less removes it.
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["bookId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if req.Quantity <= 0 {
		if err := cc.carts.Remove(ctx, userID, bookID); err != nil {
			respondStoreError(w, err, "Cart item not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
		return
	}
	if err := cc.carts.SetQuantity(ctx, userID, bookID, req.Quantity); err != nil {
		respondStoreError(w, err, "Cart item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart updated"})
}

// Remove deletes a book from the user's cart.
func (cc *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["bookId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if err := cc.carts.Remove(ctx, userID, bookID); err != nil {
		respondStoreError(w, err, "Cart item not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}
