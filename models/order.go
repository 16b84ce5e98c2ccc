package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses, in their intended forward-only progression.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipping   = "Shipping"
	StatusDelivered  = "Delivered"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipping, StatusDelivered:
		return true
	}
	return false
}

// OrderItem represents one line of an order. Book is populated on read for
// customer-facing listings and never persisted.
type OrderItem struct {
	BookID   primitive.ObjectID `bson:"book_id" json:"book_id"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Book     *Book              `bson:"-" json:"book,omitempty"`
}

// Order represents a placed order
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID           primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address          Address            `bson:"address" json:"address"`
	Items            []OrderItem        `bson:"items" json:"items"`
	TotalPrice       float64            `bson:"total_price" json:"total_price"`
	Status           string             `bson:"status" json:"status"`
	CourierRef       string             `bson:"courier_ref,omitempty" json:"courier_ref,omitempty"`
	DeliveredAt      *time.Time         `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	NotificationSent bool               `bson:"notification_sent" json:"notification_sent"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}
