package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBook() Book {
	return Book{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Category:    CategoryFiction,
		Price:       20,
		Stock:       5,
		Tag:         TagNone,
		CoverImages: []string{"https://img.example.com/dune.jpg"},
	}
}

func TestBookValidate(t *testing.T) {
	discount := 10.0
	tests := []struct {
		name   string
		mutate func(b *Book)
		want   error
	}{
		{"valid", func(b *Book) {}, nil},
		{"no cover image", func(b *Book) { b.CoverImages = nil }, ErrNoCoverImage},
		{"too many cover images", func(b *Book) {
			b.CoverImages = make([]string, MaxCoverImages+1)
			for i := range b.CoverImages {
				b.CoverImages[i] = "https://img.example.com/c.jpg"
			}
		}, ErrTooManyCoverImages},
		{"sale without discount", func(b *Book) { b.Tag = TagSale }, ErrSaleRequiresDiscount},
		{"discount without sale", func(b *Book) { b.DiscountPrice = &discount }, ErrDiscountRequiresSale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBook()
			tt.mutate(&b)
			err := b.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestBookValidateStructTags(t *testing.T) {
	b := validBook()
	b.Category = "cooking"
	assert.Error(t, b.Validate())

	b = validBook()
	b.Price = 0
	assert.Error(t, b.Validate())

	b = validBook()
	b.Tag = "Discounted"
	assert.Error(t, b.Validate())
}

func TestDiscountPercent(t *testing.T) {
	b := validBook()
	assert.Zero(t, b.DiscountPercent())

	discount := 15.0
	b.Tag = TagSale
	b.DiscountPrice = &discount
	assert.Equal(t, 25, b.DiscountPercent())

	third := 13.34
	b.DiscountPrice = &third
	assert.Equal(t, 33, b.DiscountPercent())
}
