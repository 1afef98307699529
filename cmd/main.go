package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manorfm/scholarship-auth/internal/application"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/config"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/database"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/email"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/jwt"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/password"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/repository"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/repository/memory"
	httprouter "github.com/manorfm/scholarship-auth/internal/interfaces/http"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// storage bundles the repositories for one STORAGE_DRIVER.
type storage struct {
	users      domain.UserRepository
	codes      domain.VerificationCodeRepository
	rateLimits domain.RateLimitRepository
	tx         domain.Transactor
	pinger     httprouter.Pinger
	close      func()
}

// @title Scholarship Auth API
// @version 1.0
// @description OTP-gated registration and JWT authentication
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.close()

	// Initialize services
	strategy, err := jwt.NewLocalStrategy(&domain.LocalConfig{
		KeyPath:         cfg.JWTKeyPath,
		AccessDuration:  cfg.JWTAccessDuration,
		RefreshDuration: cfg.JWTRefreshDuration,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize JWT strategy", zap.Error(err))
	}
	jwtService := jwt.NewJWTService(strategy, logger)

	sender, err := email.NewSender(&cfg.Email, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email sender", zap.Error(err))
	}
	dispatcher := email.NewDispatcher(sender, cfg.Email.FromName, cfg.OTP, logger)

	hasher := password.NewHasher(bcrypt.DefaultCost)
	policy := domain.DefaultPasswordPolicy()
	codeStore := application.NewCodeStore(store.codes, store.tx, cfg.OTP, logger)
	issuer := application.NewCodeIssuer(codeStore, store.users, dispatcher, cfg.OTP, logger)

	registration := application.NewRegistrationService(codeStore, store.users, store.tx, hasher, jwtService, dispatcher, policy, cfg.OTP, logger)

	services := &httprouter.Services{
		Issuer:        issuer,
		Registration:  registration,
		PasswordReset: application.NewPasswordResetService(issuer, codeStore, store.users, store.tx, hasher, policy, cfg.OTP, logger),
		Auth:          application.NewAuthService(store.users, hasher, jwtService, logger),
		Users:         application.NewUserService(store.users, hasher, policy, logger),
		RateLimiter:   application.NewRateLimiterService(store.rateLimits, cfg.RateLimit.Rules, logger),
		JWT:           jwtService,
		Storage:       store.pinger,
	}

	// Schedule expired rate limit counter cleanup
	cleanup := application.NewRateLimitCleanup(store.rateLimits, logger)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RateLimit.CleanupCron, func() { cleanup.Run(ctx) }); err != nil {
		logger.Fatal("Invalid rate limit cleanup schedule", zap.String("cron", cfg.RateLimit.CleanupCron), zap.Error(err))
	}
	scheduler.Start()

	// Create router
	router := httprouter.NewRouter(ctx, cfg, services, logger)

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.Int("port", cfg.ServerPort),
			zap.String("storage", cfg.StorageDriver),
			zap.String("email_provider", cfg.Email.Provider),
			zap.Int("trusted_proxies", len(cfg.TrustedProxies)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	// Let in-flight email deliveries finish before storage goes away.
	issuer.Wait()
	registration.Wait()
	stop()

	logger.Info("Server exited properly")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			users:      memory.NewUserRepository(),
			codes:      memory.NewVerificationCodeRepository(),
			rateLimits: memory.NewRateLimitRepository(),
			tx:         memory.NewTransactor(),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	return &storage{
		users:      repository.NewUserRepository(db, logger),
		codes:      repository.NewVerificationCodeRepository(db, logger),
		rateLimits: repository.NewRateLimitRepository(db, logger),
		tx:         db,
		pinger:     db,
		close:      db.Close,
	}, nil
}
