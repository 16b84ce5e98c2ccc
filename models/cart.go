package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one row of a user's cart. There is at most one row per
// (user, book) pair; a repeated add increments Quantity instead of
// inserting a duplicate.
type CartItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	BookID   primitive.ObjectID `bson:"book_id" json:"book_id"`
	Quantity int                `bson:"quantity" json:"quantity"`
	AddedAt  time.Time          `bson:"added_at" json:"added_at"`
	Book     *Book              `bson:"-" json:"book,omitempty"`
}
