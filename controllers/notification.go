package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fullybooked/middleware"
	"fullybooked/notifications"
	"fullybooked/store"
)

// NotificationController serves the per-user notification log.
type NotificationController struct {
	notifications store.NotificationStore
	dispatcher    *notifications.Dispatcher
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(store store.NotificationStore, dispatcher *notifications.Dispatcher) *NotificationController {
	return &NotificationController{notifications: store, dispatcher: dispatcher}
}

func (nc *NotificationController) currentUserID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// List retrieves the authenticated user's notifications, newest first.
func (nc *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := nc.currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	list, err := nc.notifications.ListByUser(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error fetching notifications")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// MarkRead flags one notification as read.
func (nc *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := nc.currentUserID(r); !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	if err := nc.notifications.MarkRead(ctx, id); err != nil {
		respondStoreError(w, err, "Notification not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// CheckPending triggers a catch-up pass over sales the user has not been
// notified about yet. Responds with how many notifications were sent; a
// repeat call finds nothing pending.
func (nc *NotificationController) CheckPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := nc.currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sent, err := nc.dispatcher.CheckPendingSaleNotifications(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error sending pending notifications")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
