package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"fullybooked/middleware"
	"fullybooked/models"
	"fullybooked/notifications"
	"fullybooked/store/memory"
	"fullybooked/utils"
)

// stubPush records every push and can be told to fail for specific tokens.
type stubPush struct {
	mu   sync.Mutex
	sent []notifications.PushMessage
	fail map[string]bool
}

func (s *stubPush) Send(ctx context.Context, msg notifications.PushMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[msg.To] {
		return context.DeadlineExceeded
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *stubPush) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type testEnv struct {
	db         *memory.DB
	push       *stubPush
	dispatcher *notifications.Dispatcher

	orders        *OrderController
	books         *BookController
	carts         *CartController
	reviews       *ReviewController
	users         *UserController
	notifications *NotificationController
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memory.Open()
	push := &stubPush{fail: map[string]bool{}}
	logger := zerolog.Nop()
	dispatcher := notifications.NewDispatcher(db.Users, db.Books, db.Notifications, push, logger, 0)
	return &testEnv{
		db:            db,
		push:          push,
		dispatcher:    dispatcher,
		orders:        NewOrderController(db.Orders, db.Books, db.Users, db.Carts, dispatcher, nil, logger),
		books:         NewBookController(db.Books, noopImages{}, dispatcher, logger),
		carts:         NewCartController(db.Carts, db.Books),
		reviews:       NewReviewController(db.Reviews, db.Books, db.Orders, logger),
		users:         NewUserController(db.Users, dispatcher, logger),
		notifications: NewNotificationController(db.Notifications, dispatcher),
	}
}

// noopImages passes remote URLs through and names uploads after their file.
type noopImages struct{}

func (noopImages) Save(src utils.ImageSource) (string, error) {
	if src.Kind == utils.ImageRemoteURL {
		return src.URL, nil
	}
	return "/uploads/covers/" + src.Filename, nil
}

func (env *testEnv) createUser(t *testing.T, username, email, role, pushToken string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     email,
		Role:      role,
		PushToken: pushToken,
	}
	if err := env.db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return user
}

func (env *testEnv) createBook(t *testing.T, title string, price float64, tag string, discount *float64) *models.Book {
	t.Helper()
	book := &models.Book{
		Title:         title,
		Author:        "Test Author",
		Category:      models.CategoryFiction,
		Price:         price,
		Tag:           tag,
		Stock:         10,
		DiscountPrice: discount,
		CoverImages:   []string{"https://img.example.com/cover.jpg"},
	}
	if err := env.db.Books.Create(context.Background(), book); err != nil {
		t.Fatalf("createBook() failed: %v", err)
	}
	return book
}

// newRequest builds a JSON request authenticated as the given user.
func newRequest(method, path string, body interface{}, user *models.User) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		claims := &utils.Claims{ID: user.ID.Hex(), Email: user.Email, Role: user.Role}
		ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
		req = req.WithContext(ctx)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}
