package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/middleware"
	"fullybooked/models"
	"fullybooked/store"
)

// ReviewController handles review requests
type ReviewController struct {
	reviews store.ReviewStore
	books   store.BookStore
	orders  store.OrderStore
	log     zerolog.Logger
}

// NewReviewController creates a new ReviewController
func NewReviewController(reviews store.ReviewStore, books store.BookStore, orders store.OrderStore, logger zerolog.Logger) *ReviewController {
	return &ReviewController{reviews: reviews, books: books, orders: orders, log: logger}
}

// ValidatePurchase reports whether the given email has an order containing
// the book. Pure read; the client uses it to decide whether to show the
// review form.
func (rc *ReviewController) ValidatePurchase(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookID, err := primitive.ObjectIDFromHex(vars["bookId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}
	email := vars["email"]

	ctx, cancel := dbCtx()
	defer cancel()
	ok, err := rc.orders.ExistsWithBook(ctx, email, bookID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"canReview": ok})
}

type submitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Email   string `json:"email"`
}

// Submit creates a review and folds its rating into the book's average as an
// incremental running mean: newAverage = (oldAverage*n + rating) / (n+1).
// Submission requires an order by the same email containing the book.
func (rc *ReviewController) Submit(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["bookId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	book, err := rc.books.GetByID(ctx, bookID)
	if err != nil {
		respondStoreError(w, err, "Book not found")
		return
	}

	purchased, err := rc.orders.ExistsWithBook(ctx, req.Email, bookID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !purchased {
		respondError(w, http.StatusForbidden, "You can only review books you have purchased")
		return
	}

	review := models.Review{
		BookID:  bookID,
		Email:   req.Email,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := review.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "Rating must be between 0 and 5")
		return
	}
	if err := rc.reviews.Create(ctx, &review); err != nil {
		respondError(w, http.StatusInternalServerError, "Error creating review")
		return
	}

	book.ReviewIDs = append(book.ReviewIDs, review.ID)
	n := float64(len(book.ReviewIDs))
	book.AverageRating = (book.AverageRating*(n-1) + float64(req.Rating)) / n
	if err := rc.books.Update(ctx, book); err != nil {
		respondError(w, http.StatusInternalServerError, "Error updating book rating")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"review": review})
}

// ListByBook retrieves all reviews for a book, newest first.
func (rc *ReviewController) ListByBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := primitive.ObjectIDFromHex(mux.Vars(r)["bookId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid book ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()
	reviews, err := rc.reviews.ListByBook(ctx, bookID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// Update edits a review (owner or admin) and recomputes the book's average
// rating from scratch so the stored mean cannot drift.
func (rc *ReviewController) Update(w http.ResponseWriter, r *http.Request) {
	reviewID, err := primitive.ObjectIDFromHex(mux.Vars(r)["reviewId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var req updateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	review, err := rc.reviews.GetByID(ctx, reviewID)
	if err != nil {
		respondStoreError(w, err, "Review not found")
		return
	}
	if !rc.canModify(r, review) {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	if err := review.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "Rating must be between 0 and 5")
		return
	}
	if err := rc.reviews.Update(ctx, review); err != nil {
		respondStoreError(w, err, "Review not found")
		return
	}
	if err := rc.recomputeAverage(ctx, review.BookID); err != nil {
		rc.log.Warn().Err(err).Str("book_id", review.BookID.Hex()).Msg("failed to recompute average rating")
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"review": review})
}

// Delete removes a review (owner or admin), detaches it from the book and
// recomputes the average from scratch.
func (rc *ReviewController) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, err := primitive.ObjectIDFromHex(mux.Vars(r)["reviewId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid review ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	review, err := rc.reviews.GetByID(ctx, reviewID)
	if err != nil {
		respondStoreError(w, err, "Review not found")
		return
	}
	if !rc.canModify(r, review) {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}
	if err := rc.reviews.Delete(ctx, reviewID); err != nil {
		respondStoreError(w, err, "Review not found")
		return
	}

	if book, err := rc.books.GetByID(ctx, review.BookID); err == nil {
		kept := book.ReviewIDs[:0]
		for _, id := range book.ReviewIDs {
			if id != reviewID {
				kept = append(kept, id)
			}
		}
		book.ReviewIDs = kept
		if err := rc.books.Update(ctx, book); err != nil {
			rc.log.Warn().Err(err).Str("book_id", book.ID.Hex()).Msg("failed to detach review from book")
		}
	}
	if err := rc.recomputeAverage(ctx, review.BookID); err != nil {
		rc.log.Warn().Err(err).Str("book_id", review.BookID.Hex()).Msg("failed to recompute average rating")
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

// canModify allows the review's author or an admin.
func (rc *ReviewController) canModify(r *http.Request, review *models.Review) bool {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == models.RoleAdmin || claims.Email == review.Email
}

// recomputeAverage derives the book's average rating from its current
// reviews instead of adjusting the running mean.
func (rc *ReviewController) recomputeAverage(ctx context.Context, bookID primitive.ObjectID) error {
	book, err := rc.books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	reviews, err := rc.reviews.ListByBook(ctx, bookID)
	if err != nil {
		return err
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	if len(reviews) == 0 {
		book.AverageRating = 0
	} else {
		book.AverageRating = float64(sum) / float64(len(reviews))
	}
	return rc.books.Update(ctx, book)
}
