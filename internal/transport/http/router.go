package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/noor-otp-service/internal/application/otp"
	"github.com/noor-otp-service/internal/config"
	"github.com/noor-otp-service/internal/infrastructure/smtp"
	"github.com/noor-otp-service/internal/transport/http/handler"
	appmiddleware "github.com/noor-otp-service/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds the infrastructure dependencies for the router. Store is an
// interface so the same wiring serves the in-memory backend and the
// DynamoDB one.
type Deps struct {
	Store  otp.Store
	Mailer smtp.Mailer
}

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

	// 1 request/second with a burst of 5 per client — only the endpoints
	// that trigger an outbound email are throttled.
	issueRL := appmiddleware.NewRateLimiter(rate.Limit(1), 5)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:       deps.Store,
		Mailer:      deps.Mailer,
		TTL:         cfg.OTPTTL,
		SendTimeout: cfg.SendTimeout,
	})

	otpH := handler.NewOTPHandler(otpSvc)
	healthH := handler.NewHealthHandler(deps.Mailer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Status)
		r.Get("/test-smtp", healthH.TestSMTP)

		r.With(issueRL.Limit).Post("/send-otp", otpH.Send)
		r.Post("/verify-otp", otpH.Verify)
		r.With(issueRL.Limit).Post("/forgot-password", otpH.ForgotPassword)
		r.Post("/reset-password", otpH.ResetPassword)
	})

	return r
}
