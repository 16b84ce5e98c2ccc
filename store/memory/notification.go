package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
	"fullybooked/store"
)

type ledgerKey struct {
	book primitive.ObjectID
	user primitive.ObjectID
}

// NotificationStore keeps the notification log, sale books, the notified
// ledger and the outbox in memory.
type NotificationStore struct {
	mu            sync.Mutex
	notifications []models.Notification
	saleBooks     []models.SaleBook
	ledger        map[ledgerKey]bool
	outbox        []models.OutboxEvent
}

func (s *NotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *NotificationStore) CreateSaleBook(ctx context.Context, sb *models.SaleBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb.CreatedAt = time.Now().UTC()
	for i := range s.saleBooks {
		if s.saleBooks[i].BookID == sb.BookID {
			s.saleBooks[i] = *sb
			return nil
		}
	}
	s.saleBooks = append(s.saleBooks, *sb)
	return nil
}

func (s *NotificationStore) UnnotifiedSaleBooks(ctx context.Context, userID primitive.ObjectID) ([]models.SaleBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SaleBook
	for _, sb := range s.saleBooks {
		if !s.ledger[ledgerKey{book: sb.BookID, user: userID}] {
			out = append(out, sb)
		}
	}
	return out, nil
}

func (s *NotificationStore) MarkSaleNotified(ctx context.Context, bookID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledger == nil {
		s.ledger = make(map[ledgerKey]bool)
	}
	s.ledger[ledgerKey{book: bookID, user: userID}] = true
	return nil
}

func (s *NotificationStore) EnqueueEvent(ctx context.Context, e *models.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.CreatedAt = time.Now().UTC()
	s.outbox = append(s.outbox, *e)
	return nil
}

func (s *NotificationStore) PendingEvents(ctx context.Context) ([]models.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OutboxEvent
	for _, e := range s.outbox {
		if !e.Sent {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *NotificationStore) MarkEventSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].ID == id {
			now := time.Now().UTC()
			s.outbox[i].Sent = true
			s.outbox[i].SentAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}
