package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
	"fullybooked/store"
)

// OrderStore keeps orders in insertion order; listings return newest first.
type OrderStore struct {
	mu     sync.Mutex
	orders []models.Order
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders = append(s.orders, *order)
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			order := s.orders[i]
			return &order, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *OrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.UserID == userID }), nil
}

func (s *OrderStore) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.Email == email }), nil
}

func (s *OrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.filter(func(*models.Order) bool { return true }), nil
}

func (s *OrderStore) filter(keep func(*models.Order) bool) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for i := len(s.orders) - 1; i >= 0; i-- {
		if keep(&s.orders[i]) {
			out = append(out, s.orders[i])
		}
	}
	return out
}

func (s *OrderStore) Update(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == order.ID {
			order.UpdatedAt = time.Now().UTC()
			s.orders[i] = *order
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *OrderStore) ExistsWithBook(ctx context.Context, email string, bookID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].Email != email {
			continue
		}
		for _, item := range s.orders[i].Items {
			if item.BookID == bookID {
				return true, nil
			}
		}
	}
	return false, nil
}
