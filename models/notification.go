package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types carried in push payloads and the per-user log.
const (
	NotificationOrderStatusUpdate = "ORDER_STATUS_UPDATE"
	NotificationBookSale          = "BOOK_SALE"
)

// Outbox event types.
const (
	EventBookOnSale = "BOOK_ON_SALE"
)

// Notification is one entry in a user's notification log. The log is what
// the client renders offline; the push message is the immediate delivery.
type Notification struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID     `bson:"user_id" json:"user_id"`
	Title     string                 `bson:"title" json:"title"`
	Body      string                 `bson:"body" json:"body"`
	Type      string                 `bson:"type" json:"type"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool                   `bson:"read" json:"read"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

// SaleBook records a book that went on sale, kept so users who were offline
// when the sale started can be caught up on login.
type SaleBook struct {
	BookID        primitive.ObjectID `bson:"book_id" json:"book_id"`
	Title         string             `bson:"title" json:"title"`
	Price         float64            `bson:"price" json:"price"`
	DiscountPrice float64            `bson:"discount_price" json:"discount_price"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// SaleBookNotification is the idempotency ledger: one row per (book, user)
// that has already been told about the sale.
type SaleBookNotification struct {
	BookID    primitive.ObjectID `bson:"book_id" json:"book_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Notified  bool               `bson:"notified" json:"notified"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// OutboxEvent decouples business-state mutation from side-effecting push I/O:
// handlers record an event once, the dispatcher consumes it and marks it sent.
type OutboxEvent struct {
	ID        string                 `bson:"_id" json:"id"`
	Type      string                 `bson:"type" json:"type"`
	Payload   map[string]interface{} `bson:"payload" json:"payload"`
	Sent      bool                   `bson:"sent" json:"sent"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
	SentAt    *time.Time             `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}
