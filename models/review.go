package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review represents a customer review of a book. Submission is gated on an
// order by the same email containing the book.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BookID    primitive.ObjectID `bson:"book_id" json:"book_id"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Rating    int                `bson:"rating" json:"rating" validate:"min=0,max=5"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Validate checks the review's struct tags.
func (r *Review) Validate() error {
	return validate.Struct(r)
}
