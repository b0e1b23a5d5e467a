package config

import (
	"errors"
	"sync"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppPort               int    `mapstructure:"APP_PORT"`
	BcryptCost            int    `mapstructure:"BCRYPT_COST"`
	SignInRatePerMin      int    `mapstructure:"SIGNIN_RATE_PER_MIN"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	LogFormat             string `mapstructure:"LOG_FORMAT"`
	MongoURI              string `mapstructure:"MONGO_URI"`
	MongoDBName           string `mapstructure:"MONGO_DB_NAME"`
	JWTSecret             string `mapstructure:"JWT_SECRET"`
	AccessTokenMinutes    int    `mapstructure:"ACCESS_TOKEN_MINUTES"`
	DevMode               bool   `mapstructure:"DEV_MODE"`
	RedisAddr             string `mapstructure:"REDIS_ADDR"`
	RedisPassword         string `mapstructure:"REDIS_PASSWORD"`
	RedisDB               int    `mapstructure:"REDIS_DB"`
	ViewDedupHours        int    `mapstructure:"VIEW_DEDUP_HOURS"`
	AIBaseURL             string `mapstructure:"AI_BASE_URL"`
	AIAPIKey              string `mapstructure:"AI_API_KEY"`
	AIModel               string `mapstructure:"AI_MODEL"`
	AIMaxFileMB           int    `mapstructure:"AI_MAX_FILE_MB"`
	WSMaxSessionSec       int    `mapstructure:"WS_MAX_SESSION_SEC"`
	WSOutboxBuffer        int    `mapstructure:"WS_OUTBOX_BUFFER"`
	RouteMetricsEnabled   bool   `mapstructure:"ROUTE_METRICS_ENABLED"`
	RequestLoggingEnabled bool   `mapstructure:"REQUEST_LOGGING_ENABLED"`
	PyroscopeAddr         string `mapstructure:"PYROSCOPE_ADDR"`
}

// Validation errors.
var (
	ErrAppPortRange         = errors.New("APP_PORT must be between 1 and 65535")
	ErrBcryptCostRange      = errors.New("BCRYPT_COST must be between 8 and 16")
	ErrSignInRate           = errors.New("SIGNIN_RATE_PER_MIN must be greater than or equal to 1")
	ErrLogLevelEmpty        = errors.New("LOG_LEVEL cannot be empty")
	ErrLogFormatEmpty       = errors.New("LOG_FORMAT cannot be empty")
	ErrMongoURIEmpty        = errors.New("MONGO_URI cannot be empty")
	ErrMongoDBNameEmpty     = errors.New("MONGO_DB_NAME cannot be empty")
	ErrJWTSecretRequired    = errors.New("JWT_SECRET is required unless DEV_MODE=true")
	ErrJWTSecretTooShort    = errors.New("JWT_SECRET must be at least 32 characters")
	ErrAccessTokenMinutes   = errors.New("ACCESS_TOKEN_MINUTES must be greater than 0")
	ErrViewDedupHours       = errors.New("VIEW_DEDUP_HOURS must be greater than 0")
	ErrAIMaxFileMB          = errors.New("AI_MAX_FILE_MB must be greater than 0")
	ErrWSMaxSessionSec      = errors.New("WS_MAX_SESSION_SEC must be greater than 0")
	ErrWSOutboxBuffer       = errors.New("WS_OUTBOX_BUFFER must be greater than 0")
)

// devJWTSecret is only used when DEV_MODE=true and no secret was supplied.
const devJWTSecret = "dev-mode-jwt-secret-do-not-use-in-production"

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file
// It caches the result for subsequent calls
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check in case another goroutine loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SIGNIN_RATE_PER_MIN", 5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://mongo:27017")
	v.SetDefault("MONGO_DB_NAME", "noteshare")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_MINUTES", 60)
	v.SetDefault("DEV_MODE", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("VIEW_DEDUP_HOURS", 24)
	v.SetDefault("AI_BASE_URL", "")
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_MAX_FILE_MB", 200)
	v.SetDefault("WS_MAX_SESSION_SEC", 900)
	v.SetDefault("WS_OUTBOX_BUFFER", 256)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("REQUEST_LOGGING_ENABLED", true)
	v.SetDefault("PYROSCOPE_ADDR", "")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// A missing .env is fine
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// SigningSecret returns the HS256 key, substituting a fixed key in dev mode.
func (c Config) SigningSecret() string {
	if c.JWTSecret == "" && c.DevMode {
		return devJWTSecret
	}
	return c.JWTSecret
}

// AIEnabled reports whether an assistant backend is configured.
func (c Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return ErrAppPortRange
	}
	if c.BcryptCost < 8 || c.BcryptCost > 16 {
		return ErrBcryptCostRange
	}
	if c.SignInRatePerMin < 1 {
		return ErrSignInRate
	}
	if c.LogLevel == "" {
		return ErrLogLevelEmpty
	}
	if c.LogFormat == "" {
		return ErrLogFormatEmpty
	}
	if c.MongoURI == "" {
		return ErrMongoURIEmpty
	}
	if c.MongoDBName == "" {
		return ErrMongoDBNameEmpty
	}
	if c.JWTSecret == "" && !c.DevMode {
		return ErrJWTSecretRequired
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return ErrJWTSecretTooShort
	}
	if c.AccessTokenMinutes <= 0 {
		return ErrAccessTokenMinutes
	}
	if c.ViewDedupHours <= 0 {
		return ErrViewDedupHours
	}
	if c.AIMaxFileMB <= 0 {
		return ErrAIMaxFileMB
	}
	if c.WSMaxSessionSec <= 0 {
		return ErrWSMaxSessionSec
	}
	if c.WSOutboxBuffer <= 0 {
		return ErrWSOutboxBuffer
	}
	return nil
}
