package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	otpapp "github.com/go-otp-api/internal/application/otp"
	"github.com/go-otp-api/internal/config"
	"github.com/go-otp-api/internal/transport/http/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	otpSvc := otpapp.NewService(deps.Store, deps.Sender, time.Duration(cfg.OTPExpirySeconds)*time.Second)

	otpH := handler.NewOTPHandler(otpSvc, cfg.ReturnOTPInResponse)
	healthH := handler.NewHealthHandler()

	r.Post("/send-otp", otpH.Send)
	r.Post("/verify-otp", otpH.Verify)
	r.Get("/health-check/{action}", healthH.Ping)
	r.Handle("/metrics", promhttp.Handler())

	// Dev-only listing of pending codes; never mount in production.
	if cfg.DebugEndpoints {
		r.Get("/__debug/otps", otpH.DebugList)
	}

	return r
}
