package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fullybooked/models"
	"fullybooked/store"
)

// CartStore persists cart rows in the "carts" collection, one document per
// (user, book) pair.
type CartStore struct {
	coll *mongo.Collection
}

// NewCartStore creates a CartStore.
func NewCartStore(db *DB) *CartStore {
	return &CartStore{coll: db.collection("carts")}
}

// Add upserts on (user_id, book_id): an existing row gets its quantity
// incremented, otherwise a new row is inserted.
func (s *CartStore) Add(ctx context.Context, item *models.CartItem) error {
	filter := bson.M{"user_id": item.UserID, "book_id": item.BookID}
	update := bson.M{
		"$inc": bson.M{"quantity": item.Quantity},
		"$setOnInsert": bson.M{
			"user_id":  item.UserID,
			"book_id":  item.BookID,
			"added_at": time.Now().UTC(),
		},
	}
	_, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (s *CartStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *CartStore) SetQuantity(ctx context.Context, userID, bookID primitive.ObjectID, quantity int) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "book_id": bookID},
		bson.M{"$set": bson.M{"quantity": quantity}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *CartStore) Remove(ctx context.Context, userID, bookID primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID, "book_id": bookID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
