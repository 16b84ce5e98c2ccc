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

// NotificationStore persists the notification log, the sale-book table, the
// per-(book,user) notified ledger and the outbox.
type NotificationStore struct {
	notifications *mongo.Collection
	saleBooks     *mongo.Collection
	saleLedger    *mongo.Collection
	outbox        *mongo.Collection
}

// NewNotificationStore creates a NotificationStore.
func NewNotificationStore(db *DB) *NotificationStore {
	return &NotificationStore{
		notifications: db.collection("notifications"),
		saleBooks:     db.collection("sale_books"),
		saleLedger:    db.collection("sale_book_notifications"),
		outbox:        db.collection("outbox"),
	}
}

func (s *NotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now().UTC()
	res, err := s.notifications.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	n.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.notifications.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Notification
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.notifications.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *NotificationStore) CreateSaleBook(ctx context.Context, sb *models.SaleBook) error {
	sb.CreatedAt = time.Now().UTC()
	// Re-listing the same book replaces the previous sale entry.
	_, err := s.saleBooks.ReplaceOne(ctx, bson.M{"book_id": sb.BookID}, sb,
		options.Replace().SetUpsert(true))
	return err
}

func (s *NotificationStore) UnnotifiedSaleBooks(ctx context.Context, userID primitive.ObjectID) ([]models.SaleBook, error) {
	cursor, err := s.saleBooks.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var all []models.SaleBook
	if err := cursor.All(ctx, &all); err != nil {
		return nil, err
	}

	ledgerCursor, err := s.saleLedger.Find(ctx, bson.M{"user_id": userID, "notified": true})
	if err != nil {
		return nil, err
	}
	defer ledgerCursor.Close(ctx)

	var ledger []models.SaleBookNotification
	if err := ledgerCursor.All(ctx, &ledger); err != nil {
		return nil, err
	}
	notified := make(map[primitive.ObjectID]bool, len(ledger))
	for _, row := range ledger {
		notified[row.BookID] = true
	}

	var pending []models.SaleBook
	for _, sb := range all {
		if !notified[sb.BookID] {
			pending = append(pending, sb)
		}
	}
	return pending, nil
}

func (s *NotificationStore) MarkSaleNotified(ctx context.Context, bookID, userID primitive.ObjectID) error {
	_, err := s.saleLedger.UpdateOne(ctx,
		bson.M{"book_id": bookID, "user_id": userID},
		bson.M{"$set": bson.M{"notified": true}, "$setOnInsert": bson.M{"created_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *NotificationStore) EnqueueEvent(ctx context.Context, e *models.OutboxEvent) error {
	e.CreatedAt = time.Now().UTC()
	_, err := s.outbox.InsertOne(ctx, e)
	return err
}

func (s *NotificationStore) PendingEvents(ctx context.Context) ([]models.OutboxEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.outbox.Find(ctx, bson.M{"sent": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.OutboxEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *NotificationStore) MarkEventSent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := s.outbox.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"sent": true, "sent_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
