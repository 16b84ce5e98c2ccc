package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/models"
	"fullybooked/store"
)

// ReviewStore keeps reviews in insertion order; listings return newest first.
type ReviewStore struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (s *ReviewStore) Create(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now
	s.reviews = append(s.reviews, *review)
	return nil
}

func (s *ReviewStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			review := s.reviews[i]
			return &review, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *ReviewStore) ListByBook(ctx context.Context, bookID primitive.ObjectID) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Review
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].BookID == bookID {
			out = append(out, s.reviews[i])
		}
	}
	return out, nil
}

func (s *ReviewStore) Update(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == review.ID {
			review.UpdatedAt = time.Now().UTC()
			s.reviews[i] = *review
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *ReviewStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			s.reviews = append(s.reviews[:i], s.reviews[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
