package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fullybooked/models"
	"fullybooked/store"
)

// BookStore persists books in the "books" collection.
type BookStore struct {
	coll *mongo.Collection
}

// NewBookStore creates a BookStore.
func NewBookStore(db *DB) *BookStore {
	return &BookStore{coll: db.collection("books")}
}

func (s *BookStore) Create(ctx context.Context, book *models.Book) error {
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now
	res, err := s.coll.InsertOne(ctx, book)
	if err != nil {
		return err
	}
	book.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *BookStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookStore) List(ctx context.Context, filter store.BookFilter) ([]models.Book, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Tag != "" {
		query["tag"] = filter.Tag
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var books []models.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *BookStore) Update(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now().UTC()
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": book.ID}, book)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *BookStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
