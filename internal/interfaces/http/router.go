package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/manorfm/scholarship-auth/docs"
	"github.com/manorfm/scholarship-auth/internal/application"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/config"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/handlers"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/middleware/auth"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/middleware/ratelimit"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pinger reports whether backing storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the application services the router exposes.
type Services struct {
	Issuer        *application.CodeIssuer
	Registration  *application.RegistrationService
	PasswordReset *application.PasswordResetService
	Auth          *application.AuthService
	Users         *application.UserService
	RateLimiter   *application.RateLimiterService
	JWT           domain.JWTService
	// Storage is nil for the in-memory driver.
	Storage Pinger
}

type Router struct {
	router *chi.Mux
}

// NewRouter builds the HTTP surface. Background work started here stops with ctx.
func NewRouter(ctx context.Context, cfg *config.Config, svc *Services, logger *zap.Logger) *Router {
	authMiddleware := auth.NewAuthMiddleware(svc.JWT, logger)
	scoped := ratelimit.NewScopedLimiter(svc.RateLimiter, logger)

	// Initialize handlers
	verificationHandler := handlers.NewVerificationHandler(svc.Issuer, logger)
	registrationHandler := handlers.NewRegistrationHandler(svc.Registration, logger)
	authHandler := handlers.NewAuthHandler(svc.Auth, logger)
	resetHandler := handlers.NewPasswordResetHandler(svc.PasswordReset, logger)
	userHandler := handlers.NewUserHandler(svc.Users, logger)

	// Create router with middleware
	router := createRouter(cfg)

	rateLimiter := ratelimit.NewRateLimiter(rate.Limit(cfg.RateLimit.GlobalRate), cfg.RateLimit.GlobalBurst, 3*time.Minute)
	rateLimiter.Start(ctx, time.Minute)
	router.Use(rateLimiter.Middleware)

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if svc.Storage != nil {
				if err := svc.Storage.Ping(r.Context()); err != nil {
					logger.Error("Database health check failed", zap.Error(err))
					w.WriteHeader(http.StatusServiceUnavailable)
					w.Write([]byte("Database connection failed"))
					return
				}
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})
	})

	// Swagger UI configuration
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.DeepLinking(true),
		httpSwagger.PersistAuthorization(true),
	))

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(docs.SwaggerJSON)
	})

	router.Route("/api/auth", func(r chi.Router) {
		// Code issuance, keyed by IP and email domain
		r.Group(func(r chi.Router) {
			r.Use(scoped.Limit(domain.ScopeEmailVerification))
			r.Post("/verification-codes", verificationHandler.RequestCodeHandler)
			r.Post("/verification-codes/resend", verificationHandler.ResendCodeHandler)
			r.Post("/verification-codes/redeliver", verificationHandler.RedeliverCodeHandler)
			r.Post("/password-reset/request", resetHandler.RequestHandler)
			r.Post("/password-reset/resend", resetHandler.ResendHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(scoped.Limit(domain.ScopeRegistration))
			r.Post("/registration", registrationHandler.RegisterHandler)
			r.Post("/verification-codes/verify", registrationHandler.VerifyCodeHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(scoped.Limit(domain.ScopeLogin))
			r.Post("/login", authHandler.LoginHandler)
			r.Post("/token/refresh", authHandler.RefreshHandler)
			r.Post("/password-reset/confirm", resetHandler.ConfirmHandler)
		})

		r.Post("/token/verify", authHandler.VerifyHandler)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Verifier, authMiddleware.Authenticator)
			r.Get("/me", authHandler.MeHandler)
			r.Put("/me", userHandler.UpdateProfileHandler)
			r.Patch("/me", userHandler.UpdateProfileHandler)
			r.Post("/me/password", userHandler.ChangePasswordHandler)
		})
	})

	return &Router{router: router}
}

func createRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	// Add middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(ratelimit.RealIP(cfg.TrustedProxies))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
