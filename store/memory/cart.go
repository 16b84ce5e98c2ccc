package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
	"fullybooked/store"
)

// CartStore keeps one row per (user, book) pair.
type CartStore struct {
	mu    sync.Mutex
	items []models.CartItem
}

func (s *CartStore) Add(ctx context.Context, item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].UserID == item.UserID && s.items[i].BookID == item.BookID {
			s.items[i].Quantity += item.Quantity
			return nil
		}
	}
	item.ID = primitive.NewObjectID()
	item.AddedAt = time.Now().UTC()
	s.items = append(s.items, *item)
	return nil
}

func (s *CartStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CartItem
	for _, item := range s.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *CartStore) SetQuantity(ctx context.Context, userID, bookID primitive.ObjectID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].UserID == userID && s.items[i].BookID == bookID {
			s.items[i].Quantity = quantity
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *CartStore) Remove(ctx context.Context, userID, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].UserID == userID && s.items[i].BookID == bookID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *CartStore) Clear(ctx context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return nil
}
