// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"fullybooked/controllers"
	"fullybooked/middleware"
	"fullybooked/models"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	guard *middleware.RoleGuard,
	userController *controllers.UserController,
	bookController *controllers.BookController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	reviewController *controllers.ReviewController,
	notificationController *controllers.NotificationController,
	uploadDir, uploadPrefix string,
) {
	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/users/register", userController.Register).Methods("POST")
	api.HandleFunc("/users/login", userController.Login).Methods("POST")
	api.HandleFunc("/users/admin", userController.LoginAdmin).Methods("POST")
	api.HandleFunc("/users/firebase-login", userController.FederatedLogin).Methods("POST")

	// Catalog reads are public
	api.HandleFunc("/books", bookController.List).Methods("GET")
	api.HandleFunc("/books/{id}", bookController.Get).Methods("GET")
	api.HandleFunc("/reviews/validate-purchase/{bookId}/{email}", reviewController.ValidatePurchase).Methods("GET")
	api.HandleFunc("/reviews/{bookId}", reviewController.ListByBook).Methods("GET")
	api.HandleFunc("/orders/by-email/{email}", orderController.ByEmail).Methods("GET")

	// Admin catalog management
	adminBooks := api.PathPrefix("/books").Subrouter()
	adminBooks.Use(middleware.AuthMiddleware)
	adminBooks.Use(guard.Require(models.RoleAdmin))
	adminBooks.HandleFunc("/create-book", bookController.Create).Methods("POST")
	adminBooks.HandleFunc("/edit/{id}", bookController.Update).Methods("PUT")
	adminBooks.HandleFunc("/{id}", bookController.Delete).Methods("DELETE")

	// Customer order routes
	customerOrders := api.PathPrefix("/orders").Subrouter()
	customerOrders.Use(middleware.AuthMiddleware)
	customerOrders.Use(guard.Require(models.RoleCustomer, models.RoleAdmin))
	customerOrders.HandleFunc("/place", orderController.PlaceOrder).Methods("POST")
	customerOrders.HandleFunc("/my-orders", orderController.MyOrders).Methods("GET")

	// Admin order routes
	adminOrders := api.PathPrefix("/orders").Subrouter()
	adminOrders.Use(middleware.AuthMiddleware)
	adminOrders.Use(guard.Require(models.RoleAdmin))
	adminOrders.HandleFunc("/all", orderController.AllOrders).Methods("GET")
	adminOrders.HandleFunc("/update-status/{id}", orderController.UpdateStatus).Methods("PUT")
	adminOrders.HandleFunc("/{id}", orderController.Delete).Methods("DELETE")

	// Review writes require authentication
	reviews := api.PathPrefix("/reviews").Subrouter()
	reviews.Use(middleware.AuthMiddleware)
	reviews.HandleFunc("/{bookId}", reviewController.Submit).Methods("POST")
	reviews.HandleFunc("/{reviewId}", reviewController.Update).Methods("PUT")
	reviews.HandleFunc("/{reviewId}", reviewController.Delete).Methods("DELETE")

	// Cart routes
	carts := api.PathPrefix("/carts").Subrouter()
	carts.Use(middleware.AuthMiddleware)
	carts.HandleFunc("", cartController.Add).Methods("POST")
	carts.HandleFunc("", cartController.Get).Methods("GET")
	carts.HandleFunc("/{bookId}", cartController.UpdateQuantity).Methods("PUT")
	carts.HandleFunc("/{bookId}", cartController.Remove).Methods("DELETE")

	// Notification routes
	notifs := api.PathPrefix("/notifications").Subrouter()
	notifs.Use(middleware.AuthMiddleware)
	notifs.HandleFunc("", notificationController.List).Methods("GET")
	notifs.HandleFunc("/check-pending", notificationController.CheckPending).Methods("POST")
	notifs.HandleFunc("/{id}/read", notificationController.MarkRead).Methods("PUT")

	// Courier application (self-service submit, admin review)
	courier := api.PathPrefix("/users").Subrouter()
	courier.Use(middleware.AuthMiddleware)
	courier.HandleFunc("/{id}/courier-application", userController.ApplyCourier).Methods("POST")

	// Admin user management
	adminUsers := api.PathPrefix("/users").Subrouter()
	adminUsers.Use(middleware.AuthMiddleware)
	adminUsers.Use(guard.Require(models.RoleAdmin))
	adminUsers.HandleFunc("", userController.AdminCreate).Methods("POST")
	adminUsers.HandleFunc("", userController.List).Methods("GET")
	adminUsers.HandleFunc("/{id}", userController.Get).Methods("GET")
	adminUsers.HandleFunc("/{id}", userController.Update).Methods("PUT")
	adminUsers.HandleFunc("/{id}", userController.Delete).Methods("DELETE")
	adminUsers.HandleFunc("/{id}/courier-application", userController.ReviewCourier).Methods("PUT")

	// Uploaded cover images
	router.PathPrefix(uploadPrefix + "/").Handler(
		http.StripPrefix(uploadPrefix+"/", http.FileServer(http.Dir(uploadDir))))
}
