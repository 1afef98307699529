package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/manorfm/scholarship-auth/internal/domain"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	EmailProviderSMTP     = "smtp"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderLog      = "log"
)

// SMTPConfig holds the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// UseTLS selects implicit TLS. Without it STARTTLS is used when offered.
	UseTLS   bool
}

// EmailConfig selects and configures the email provider.
type EmailConfig struct {
	Provider        string
	From            string
	FromName        string
	SendGridAPIKey  string
	SendGridSandbox bool
	SMTP            SMTPConfig
}

// RateLimitConfig holds per-scope quotas and the global burst limiter.
type RateLimitConfig struct {
	Rules       map[domain.RateLimitScope]domain.RateLimitRule
	GlobalRate  float64
	GlobalBurst int
	CleanupCron string
}

// Config holds the application configuration
type Config struct {
	Environment   string
	StorageDriver string

	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT configuration
	JWTAccessDuration  time.Duration
	JWTRefreshDuration time.Duration
	JWTKeyPath         string

	OTP       domain.OTPSettings
	RateLimit RateLimitConfig
	Email     EmailConfig

	CORSAllowedOrigins []string
	// TrustedProxies are the peers allowed to set X-Forwarded-For and
	// X-Real-IP. Empty means forwarding headers are ignored.
	TrustedProxies []*net.IPNet

	// Server configuration
	ServerPort int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Environment:   "development",
		StorageDriver: StorageDriverPostgres,

		DBPort:    5432,
		DBSSLMode: "disable",

		JWTAccessDuration:  domain.DefaultAccessTokenDuration,
		JWTRefreshDuration: domain.DefaultRefreshTokenDuration,

		OTP: domain.DefaultOTPSettings(),
		RateLimit: RateLimitConfig{
			Rules:       DefaultRateLimitRules(),
			GlobalRate:  100,
			GlobalBurst: 200,
			CleanupCron: "10 3 * * *",
		},
		Email: EmailConfig{
			Provider: EmailProviderLog,
			FromName: "Scholarship Portal",
			SMTP:     SMTPConfig{Port: 587},
		},

		CORSAllowedOrigins: []string{"http://localhost:3000"},
		ServerPort:         8080,
	}
}

// DefaultRateLimitRules returns the per-scope quotas used when none are configured.
func DefaultRateLimitRules() map[domain.RateLimitScope]domain.RateLimitRule {
	return map[domain.RateLimitScope]domain.RateLimitRule{
		domain.ScopeLogin:             {Limit: 10, Window: time.Minute},
		domain.ScopeRegistration:      {Limit: 5, Window: time.Minute},
		domain.ScopeEmailVerification: {Limit: 5, Window: 10 * time.Minute},
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	cfg := NewConfig()
	var err error

	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.StorageDriver = getEnv("STORAGE_DRIVER", cfg.StorageDriver)
	if cfg.StorageDriver != StorageDriverPostgres && cfg.StorageDriver != StorageDriverMemory {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.DBPort, err = strconv.Atoi(getEnv("DB_PORT", "5432")); err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBUser = getEnv("DB_USER", "owner")
	cfg.DBPassword = getEnv("DB_PASSWORD", "ownerTest")
	cfg.DBName = getEnv("DB_NAME", "scholarships")
	cfg.DBSSLMode = getEnv("DB_SSLMODE", cfg.DBSSLMode)

	if cfg.JWTAccessDuration, err = getEnvDuration("JWT_ACCESS_TOKEN_DURATION", cfg.JWTAccessDuration); err != nil {
		return nil, err
	}
	if cfg.JWTRefreshDuration, err = getEnvDuration("JWT_REFRESH_TOKEN_DURATION", cfg.JWTRefreshDuration); err != nil {
		return nil, err
	}
	cfg.JWTKeyPath = getEnv("JWT_KEY_PATH", "")

	if err := loadOTP(&cfg.OTP); err != nil {
		return nil, err
	}
	if err := loadRateLimits(&cfg.RateLimit); err != nil {
		return nil, err
	}
	loadEmail(&cfg.Email)

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}

	if cfg.TrustedProxies, err = ParseTrustedProxies(getEnv("TRUSTED_PROXIES", "")); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	if cfg.ServerPort, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return cfg, nil
}

func loadOTP(otp *domain.OTPSettings) error {
	var err error
	otp.Length = getEnvInt("OTP_LENGTH", otp.Length)
	if otp.Length < 4 || otp.Length > 10 {
		return fmt.Errorf("OTP_LENGTH must be between 4 and 10, got %d", otp.Length)
	}
	if otp.Expiry, err = getEnvDuration("OTP_EXPIRY", otp.Expiry); err != nil {
		return err
	}
	if otp.Cooldown, err = getEnvDuration("OTP_COOLDOWN", otp.Cooldown); err != nil {
		return err
	}
	if otp.ResendCooldown, err = getEnvDuration("OTP_RESEND_COOLDOWN", otp.ResendCooldown); err != nil {
		return err
	}
	if otp.DeliveryTimeout, err = getEnvDuration("NOTIFICATION_TIMEOUT", otp.DeliveryTimeout); err != nil {
		return err
	}
	return nil
}

func loadRateLimits(rl *RateLimitConfig) error {
	envs := map[domain.RateLimitScope]string{
		domain.ScopeLogin:             "RATE_LIMIT_LOGIN",
		domain.ScopeRegistration:      "RATE_LIMIT_REGISTRATION",
		domain.ScopeEmailVerification: "RATE_LIMIT_EMAIL_VERIFICATION",
	}
	for scope, key := range envs {
		value, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		rule, err := ParseRateLimitRule(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		rl.Rules[scope] = rule
	}

	if v := getEnv("GLOBAL_RATE_LIMIT", ""); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GLOBAL_RATE_LIMIT: %w", err)
		}
		rl.GlobalRate = rate
	}
	rl.GlobalBurst = getEnvInt("GLOBAL_RATE_BURST", rl.GlobalBurst)
	rl.CleanupCron = getEnv("RATE_LIMIT_CLEANUP_CRON", rl.CleanupCron)
	return nil
}

func loadEmail(e *EmailConfig) {
	e.Provider = getEnv("EMAIL_PROVIDER", e.Provider)
	e.From = getEnv("EMAIL_FROM", "no-reply@scholarships.local")
	e.FromName = getEnv("EMAIL_FROM_NAME", e.FromName)
	e.SendGridAPIKey = getEnv("SENDGRID_API_KEY", "")
	e.SendGridSandbox = getEnvBool("SENDGRID_SANDBOX", false)
	e.SMTP.Host = getEnv("SMTP_HOST", "localhost")
	e.SMTP.Port = getEnvInt("SMTP_PORT", e.SMTP.Port)
	e.SMTP.Username = getEnv("SMTP_USERNAME", "")
	e.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	e.SMTP.UseTLS = getEnvBool("SMTP_USE_TLS", e.SMTP.UseTLS)
}

// ParseRateLimitRule parses "N/window", for example "5/1m" or "100/1h".
func ParseRateLimitRule(value string) (domain.RateLimitRule, error) {
	parts := strings.SplitN(strings.TrimSpace(value), "/", 2)
	if len(parts) != 2 {
		return domain.RateLimitRule{}, fmt.Errorf("expected N/window, got %q", value)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || limit <= 0 {
		return domain.RateLimitRule{}, fmt.Errorf("invalid request count %q", parts[0])
	}
	window, err := time.ParseDuration(strings.TrimSpace(parts[1]))
	if err != nil || window <= 0 {
		return domain.RateLimitRule{}, fmt.Errorf("invalid window %q", parts[1])
	}
	return domain.RateLimitRule{Limit: limit, Window: window}, nil
}

// ParseTrustedProxies parses a comma separated list of CIDRs. A bare address
// is taken as a single host.
func ParseTrustedProxies(value string) ([]*net.IPNet, error) {
	var out []*net.IPNet
	for _, item := range splitList(value) {
		if !strings.Contains(item, "/") {
			ip := net.ParseIP(item)
			if ip == nil {
				return nil, fmt.Errorf("invalid address %q", item)
			}
			bits := 128
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(item)
		if err != nil {
			return nil, err
		}
		out = append(out, network)
	}
	return out, nil
}

// DatabaseURL returns the postgres URL used by migrations.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
