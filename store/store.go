// Package store defines the persistence interfaces the controllers and the
// notification dispatcher depend on. The mongodb subpackage is the production
// implementation; the memory subpackage backs tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// BookFilter narrows List results. Zero values mean no filtering.
type BookFilter struct {
	Category string
	Tag      string
}

// BookStore persists the catalog.
type BookStore interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	List(ctx context.Context, filter BookFilter) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAuthUID(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderStore persists orders.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ExistsWithBook reports whether any order by the given email contains
	// the book. Backs review eligibility.
	ExistsWithBook(ctx context.Context, email string, bookID primitive.ObjectID) (bool, error)
}

// CartStore persists cart rows, one per (user, book) pair.
type CartStore interface {
	// Add increments the quantity of an existing (user, book) row or
	// inserts a new one.
	Add(ctx context.Context, item *models.CartItem) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	SetQuantity(ctx context.Context, userID, bookID primitive.ObjectID, quantity int) error
	Remove(ctx context.Context, userID, bookID primitive.ObjectID) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// ReviewStore persists reviews.
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListByBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// NotificationStore persists the per-user notification log, the sale-book
// catch-up table, the per-(book,user) notified ledger and the outbox.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error

	CreateSaleBook(ctx context.Context, sb *models.SaleBook) error
	// UnnotifiedSaleBooks returns the sale books the user has not been told
	// about yet, i.e. sale_books minus the user's ledger rows.
	UnnotifiedSaleBooks(ctx context.Context, userID primitive.ObjectID) ([]models.SaleBook, error)
	MarkSaleNotified(ctx context.Context, bookID, userID primitive.ObjectID) error

	EnqueueEvent(ctx context.Context, e *models.OutboxEvent) error
	PendingEvents(ctx context.Context) ([]models.OutboxEvent, error)
	MarkEventSent(ctx context.Context, id string) error
}
