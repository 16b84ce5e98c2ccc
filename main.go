// main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"fullybooked/config"
	"fullybooked/controllers"
	"fullybooked/middleware"
	"fullybooked/notifications"
	"fullybooked/routes"
	"fullybooked/store/mongodb"
	"fullybooked/utils"
)

func main() {
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Set the JWT secret key
	utils.JwtKey = []byte(cfg.JWTSecret)

	// Connect to MongoDB
	db, err := mongodb.Open(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	// Stores
	books := mongodb.NewBookStore(db)
	users := mongodb.NewUserStore(db)
	orders := mongodb.NewOrderStore(db)
	carts := mongodb.NewCartStore(db)
	reviews := mongodb.NewReviewStore(db)
	notificationStore := mongodb.NewNotificationStore(db)

	// Services
	var emailService *utils.EmailService
	if cfg.SendgridAPIKey != "" {
		emailService = utils.NewEmailService(cfg.SendgridAPIKey, cfg.EmailSender)
	}
	imageStorage, err := utils.NewLocalImageStorage(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize image storage")
	}
	push := notifications.NewGatewayClient(cfg.PushGatewayURL)
	dispatcher := notifications.NewDispatcher(users, books, notificationStore, push, logger, cfg.SaleCatchupStagger)

	// Outbox consumer
	dispatchCron, err := dispatcher.Start(fmt.Sprintf("@every %s", cfg.DispatchEvery))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start outbox dispatcher")
	}
	defer dispatchCron.Stop()

	// Initialize controllers
	userController := controllers.NewUserController(users, dispatcher, logger)
	bookController := controllers.NewBookController(books, imageStorage, dispatcher, logger)
	cartController := controllers.NewCartController(carts, books)
	orderController := controllers.NewOrderController(orders, books, users, carts, dispatcher, emailService, logger)
	reviewController := controllers.NewReviewController(reviews, books, orders, logger)
	notificationController := controllers.NewNotificationController(notificationStore, dispatcher)

	// Set up the router
	router := mux.NewRouter()
	guard := middleware.NewRoleGuard(users)
	routes.RegisterRoutes(router, guard,
		userController, bookController, cartController,
		orderController, reviewController, notificationController,
		cfg.UploadDir, cfg.UploadBaseURL)

	// Start the server
	logger.Info().Str("port", cfg.Port).Msg("server is running")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
