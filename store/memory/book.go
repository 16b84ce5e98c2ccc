package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
	"fullybooked/store"
)

// BookStore keeps books in insertion order.
type BookStore struct {
	mu    sync.Mutex
	books []models.Book
}

func (s *BookStore) Create(ctx context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	book.ID = primitive.NewObjectID()
	book.CreatedAt = now
	book.UpdatedAt = now
	s.books = append(s.books, *book)
	return nil
}

func (s *BookStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == id {
			book := s.books[i]
			return &book, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *BookStore) List(ctx context.Context, filter store.BookFilter) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Book
	for i := len(s.books) - 1; i >= 0; i-- {
		b := s.books[i]
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if filter.Tag != "" && b.Tag != filter.Tag {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *BookStore) Update(ctx context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == book.ID {
			book.UpdatedAt = time.Now().UTC()
			s.books[i] = *book
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *BookStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.books {
		if s.books[i].ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
