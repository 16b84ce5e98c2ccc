// controllers/order.go
package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/middleware"
	"fullybooked/models"
	"fullybooked/notifications"
	"fullybooked/store"
	"fullybooked/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	orders     store.OrderStore
	books      store.BookStore
	users      store.UserStore
	carts      store.CartStore
	dispatcher *notifications.Dispatcher
	email      *utils.EmailService
	log        zerolog.Logger
}

// NewOrderController creates a new OrderController. The email service may be
// nil when no mail provider is configured.
func NewOrderController(
	orders store.OrderStore,
	books store.BookStore,
	users store.UserStore,
	carts store.CartStore,
	dispatcher *notifications.Dispatcher,
	email *utils.EmailService,
	logger zerolog.Logger,
) *OrderController {
	return &OrderController{
		orders:     orders,
		books:      books,
		users:      users,
		carts:      carts,
		dispatcher: dispatcher,
		email:      email,
		log:        logger,
	}
}

type placeOrderRequest struct {
	Items       []models.OrderItem `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
	Name        string             `json:"name"`
	Phone       string             `json:"phone"`
	Address     models.Address     `json:"address"`
}

// PlaceOrder creates a new Pending order for the authenticated user and
// clears their cart.
func (oc *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 || req.TotalAmount <= 0 {
		respondError(w, http.StatusBadRequest, "Items and total amount are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := oc.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		respondStoreError(w, err, "User not found")
		return
	}

	name := req.Name
	if name == "" {
		name = user.Username
	}
	order := &models.Order{
		UserID:     user.ID,
		Name:       name,
		Email:      user.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Items:      req.Items,
		TotalPrice: req.TotalAmount,
		Status:     models.StatusPending,
	}
	if err := oc.orders.Create(ctx, order); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	if err := oc.carts.Clear(ctx, user.ID); err != nil {
		oc.log.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to clear cart after checkout")
	}

	if oc.email != nil {
		go func(email string, ord models.Order) {
			if err := oc.email.SendOrderConfirmationEmail(email, ord); err != nil {
				oc.log.Warn().Err(err).Str("email", email).Msg("failed to send confirmation email")
			}
		}(user.Email, *order)
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"order": order})
}

type updateStatusRequest struct {
	Status     string `json:"status"`
	CourierRef string `json:"courier_ref"`
}

// UpdateStatus sets an order's status. The first transition to Delivered
// stamps delivered_at and dispatches the completion notification exactly
// once, guarded by the notification_sent flag so retried updates never
// double-push. The push itself is best-effort: a send failure is logged and
// the order save proceeds.
func (oc *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	order, err := oc.orders.GetByID(ctx, orderID)
	if err != nil {
		respondStoreError(w, err, "Order not found")
		return
	}

	order.Status = req.Status
	if req.CourierRef != "" {
		order.CourierRef = req.CourierRef
	}
	if req.Status == models.StatusDelivered && order.DeliveredAt == nil {
		now := time.Now().UTC()
		order.DeliveredAt = &now
	}

	if req.Status == models.StatusDelivered && !order.NotificationSent {
		if user, err := oc.users.GetByID(ctx, order.UserID); err != nil {
			oc.log.Warn().Err(err).Str("order_id", orderID.Hex()).Msg("no user for completion notification")
		} else if err := oc.dispatcher.SendOrderStatusNotification(ctx, user, order, req.Status); err != nil {
			oc.log.Warn().Err(err).Str("order_id", orderID.Hex()).Msg("completion notification failed")
		}
		order.NotificationSent = true
	}

	if err := oc.orders.Update(ctx, order); err != nil {
		respondStoreError(w, err, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// MyOrders retrieves all orders for the authenticated user, newest first,
// with book details populated into the line items.
func (oc *OrderController) MyOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	orders, err := oc.orders.ListByUser(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	oc.populateBooks(orders)
	respondJSON(w, http.StatusOK, orders)
}

// AllOrders retrieves every order, newest first (admin view).
func (oc *OrderController) AllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbCtx()
	defer cancel()

	orders, err := oc.orders.ListAll(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// ByEmail retrieves all orders matching a purchaser email, newest first.
// Supports guest/email-based lookup.
func (oc *OrderController) ByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	ctx, cancel := dbCtx()
	defer cancel()

	orders, err := oc.orders.ListByEmail(ctx, email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	oc.populateBooks(orders)
	respondJSON(w, http.StatusOK, orders)
}

// Delete removes an order.
func (oc *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if err := oc.orders.Delete(ctx, orderID); err != nil {
		respondStoreError(w, err, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

// populateBooks attaches book documents to order line items. A missing book
// leaves the item as-is rather than failing the listing.
func (oc *OrderController) populateBooks(orders []models.Order) {
	ctx, cancel := dbCtx()
	defer cancel()
	for i := range orders {
		for j := range orders[i].Items {
			book, err := oc.books.GetByID(ctx, orders[i].Items[j].BookID)
			if err != nil {
				continue
			}
			orders[i].Items[j].Book = book
		}
	}
}
