package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	RedisURL      string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	SessionTTL        time.Duration

	// BankAccountCode is the credit-side account frozen into every journal
	// snapshot (the municipal treasury account).
	BankAccountCode string
	BankAccountName string

	// IntegrationsMode selects "mock" or "live" implementations of the
	// external credit-lookup and contractor-registry services.
	IntegrationsMode        string
	CreditLookupBaseURL     string
	ContractorRegistryURL   string
	IntegrationsHTTPTimeout time.Duration

	RateLimitRPM int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "municipal-budget-app")
	viper.SetDefault("SESSION_TTL", "8h")
	viper.SetDefault("BANK_ACCOUNT_CODE", "1101")
	viper.SetDefault("BANK_ACCOUNT_NAME", "Municipal Treasury Account")
	viper.SetDefault("INTEGRATIONS_MODE", "mock")
	viper.SetDefault("CREDIT_LOOKUP_BASE_URL", "")
	viper.SetDefault("CONTRACTOR_REGISTRY_URL", "")
	viper.SetDefault("INTEGRATIONS_HTTP_TIMEOUT", "10s")
	viper.SetDefault("RATE_LIMIT_RPM", 300)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}

	jwtIssuer := viper.GetString("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "municipal-budget-app"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", jwtIssuer)
	}

	sessionTTLStr := viper.GetString("SESSION_TTL")
	sessionTTL, err := time.ParseDuration(sessionTTLStr)
	if err != nil {
		sessionTTL = 8 * time.Hour
		if sessionTTLStr != "" {
			log.Printf("Warning: Invalid value for SESSION_TTL ('%s'). Defaulting to %s.\n", sessionTTLStr, sessionTTL.String())
		}
	}
	// The session must outlive the token it backs, never the other way around.
	if sessionTTL < jwtExpiryDuration {
		sessionTTL = jwtExpiryDuration
	}

	httpTimeoutStr := viper.GetString("INTEGRATIONS_HTTP_TIMEOUT")
	httpTimeout, err := time.ParseDuration(httpTimeoutStr)
	if err != nil {
		httpTimeout = 10 * time.Second
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.JWTSecret = jwtSecret
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = jwtIssuer
	cfg.SessionTTL = sessionTTL
	cfg.BankAccountCode = viper.GetString("BANK_ACCOUNT_CODE")
	cfg.BankAccountName = viper.GetString("BANK_ACCOUNT_NAME")
	cfg.IntegrationsMode = viper.GetString("INTEGRATIONS_MODE")
	cfg.CreditLookupBaseURL = viper.GetString("CREDIT_LOOKUP_BASE_URL")
	cfg.ContractorRegistryURL = viper.GetString("CONTRACTOR_REGISTRY_URL")
	cfg.IntegrationsHTTPTimeout = httpTimeout
	cfg.RateLimitRPM = viper.GetInt("RATE_LIMIT_RPM")

	if cfg.IntegrationsMode == "live" && cfg.CreditLookupBaseURL == "" {
		log.Println("Warning: INTEGRATIONS_MODE is live but CREDIT_LOOKUP_BASE_URL is not set.")
	}

	return cfg, nil
}
