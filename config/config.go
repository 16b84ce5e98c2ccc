// Package config loads settings from environment variables with local-dev
// defaults. Production deployments override everything via env.
package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	JWTSecret      string
	PushGatewayURL string
	SendgridAPIKey string
	EmailSender    string
	UploadDir      string
	UploadBaseURL  string
	// DispatchEvery is the outbox consumer interval.
	DispatchEvery time.Duration
	// SaleCatchupStagger spaces out on-login catch-up notifications.
	SaleCatchupStagger time.Duration
}

// Load reads .env if present, then the environment, falling back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	v := viper.New()
	v.SetDefault("PORT", "8000")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "fullybooked")
	v.SetDefault("JWT_SECRET", "fullybooked_dev_secret")
	v.SetDefault("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("EMAIL_SENDER", "noreply@fullybooked.local")
	v.SetDefault("UPLOAD_DIR", "uploads/covers")
	v.SetDefault("UPLOAD_BASE_URL", "/uploads/covers")
	v.SetDefault("DISPATCH_EVERY", 30*time.Second)
	v.SetDefault("SALE_CATCHUP_STAGGER", 2*time.Second)
	v.AutomaticEnv()

	return &Config{
		Port:               v.GetString("PORT"),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDatabase:      v.GetString("MONGO_DATABASE"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		PushGatewayURL:     v.GetString("PUSH_GATEWAY_URL"),
		SendgridAPIKey:     v.GetString("SENDGRID_API_KEY"),
		EmailSender:        v.GetString("EMAIL_SENDER"),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		UploadBaseURL:      v.GetString("UPLOAD_BASE_URL"),
		DispatchEvery:      v.GetDuration("DISPATCH_EVERY"),
		SaleCatchupStagger: v.GetDuration("SALE_CATCHUP_STAGGER"),
	}
}
