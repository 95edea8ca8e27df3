package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	otpapp "github.com/go-otp-api/internal/application/otp"
	"github.com/go-otp-api/internal/config"
	"github.com/go-otp-api/internal/infrastructure/brevo"
	"github.com/go-otp-api/internal/infrastructure/dynamo"
	"github.com/go-otp-api/internal/infrastructure/memstore"
	"github.com/go-otp-api/internal/infrastructure/redisstore"
	"github.com/go-otp-api/internal/infrastructure/smtp"
	"github.com/go-otp-api/internal/metrics"
	transporthttp "github.com/go-otp-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	if err := metrics.Register(nil); err != nil {
		log.Fatalf("register metrics: %v", err)
	}

	// Credential store backend. Memory is the default; the record store is
	// then process-local, so a horizontally scaled deployment needs redis
	// or dynamo.
	var store otpapp.Store
	switch cfg.OTPStore {
	case "redis":
		store = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "dynamo":
		client := dynamo.NewClient(cfg)
		dynamo.Bootstrap(context.Background(), client, cfg.DynamoTableOTP)
		store = dynamo.NewOTPStore(client, cfg.DynamoTableOTP)
	default:
		store = memstore.New()
	}

	// Delivery transport, fixed for the lifetime of the process.
	var sender otpapp.Sender
	switch cfg.EmailProvider {
	case "brevo":
		sender = brevo.NewSender(cfg)
	default: // "smtp" ("gmail" accepted as an alias)
		sender = smtp.NewSender(cfg)
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{Store: store, Sender: sender})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("OTP backend running on :%s (env=%s, provider=%s, store=%s)", cfg.AppPort, cfg.AppEnv, cfg.EmailProvider, cfg.OTPStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
