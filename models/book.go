package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book categories form a closed set; anything else is rejected at validation.
const (
	CategoryFiction    = "fiction"
	CategoryNonFiction = "non-fiction"
	CategoryChildren   = "children"
	CategoryScience    = "science"
	CategoryHistory    = "history"
	CategoryBusiness   = "business"
	CategoryRomance    = "romance"
	CategoryMystery    = "mystery"
)

// Book tags drive storefront badges and sale notifications.
const (
	TagNew  = "New"
	TagSale = "Sale"
	TagHot  = "Hot"
	TagNone = "None"
)

// MaxCoverImages is the upper bound on cover images per book.
const MaxCoverImages = 5

// Book represents a book in the catalog
type Book struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Title         string               `bson:"title" json:"title" validate:"required"`
	Author        string               `bson:"author" json:"author" validate:"required"`
	Category      string               `bson:"category" json:"category" validate:"required,oneof=fiction non-fiction children science history business romance mystery"`
	Description   string               `bson:"description" json:"description"`
	Price         float64              `bson:"price" json:"price" validate:"required,gt=0"`
	Tag           string               `bson:"tag" json:"tag" validate:"omitempty,oneof=New Sale Hot None"`
	Stock         int                  `bson:"stock" json:"stock" validate:"gte=0"`
	DiscountPrice *float64             `bson:"discount_price,omitempty" json:"discount_price,omitempty"`
	CoverImages   []string             `bson:"cover_images" json:"cover_images"`
	AverageRating float64              `bson:"average_rating" json:"average_rating"`
	ReviewIDs     []primitive.ObjectID `bson:"review_ids,omitempty" json:"review_ids,omitempty"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}

var (
	ErrNoCoverImage         = errors.New("at least one cover image is required")
	ErrTooManyCoverImages   = errors.New("a book can have at most 5 cover images")
	ErrDiscountRequiresSale = errors.New("discount price is only allowed when tag is Sale")
	ErrSaleRequiresDiscount = errors.New("a discount price is required when tag is Sale")
)

// Validate checks struct tags plus the rules that cut across fields:
// discount price is set if and only if the tag is Sale, and there is
// at least one cover image.
func (b *Book) Validate() error {
	if err := validate.Struct(b); err != nil {
		return err
	}
	if len(b.CoverImages) == 0 {
		return ErrNoCoverImage
	}
	if len(b.CoverImages) > MaxCoverImages {
		return ErrTooManyCoverImages
	}
	if b.Tag == TagSale && b.DiscountPrice == nil {
		return ErrSaleRequiresDiscount
	}
	if b.Tag != TagSale && b.DiscountPrice != nil {
		return ErrDiscountRequiresSale
	}
	return nil
}

// OnSale reports whether the book currently carries a sale discount.
func (b *Book) OnSale() bool {
	return b.Tag == TagSale && b.DiscountPrice != nil
}

// DiscountPercent returns the rounded-down discount percentage, 0 if not on sale.
func (b *Book) DiscountPercent() int {
	if !b.OnSale() || b.Price <= 0 {
		return 0
	}
	return int((b.Price - *b.DiscountPrice) / b.Price * 100)
}
