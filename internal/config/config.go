// ==============================================
// Configuration for the soulcare API
// Environment driven, no config files
// ==============================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ==============================================
// Main Configuration Structure
// ==============================================

type Config struct {
	App      AppConfig
	Server   ServerConfig
	MongoDB  MongoConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Chat     ChatConfig
	Storage  StorageConfig
	Voice    VoiceConfig
	Logging  LoggingConfig
}

// ==============================================
// Application Configuration
// ==============================================

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Port        string
	// Timezone used to derive mood check-in time_of_day and date.
	Timezone string
}

// Location resolves the configured timezone, falling back to local time.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" || strings.EqualFold(a.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// ==============================================
// Server Configuration
// ==============================================

type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORS            CORSConfig
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// ==============================================
// Database Configuration
// ==============================================

type MongoConfig struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	OperationTimeout       time.Duration
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// ==============================================
// Security Configuration
// ==============================================

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

type SecurityConfig struct {
	SigninMaxFailures int
	SigninLockWindow  time.Duration
	MessageRateLimit  int
	MessageRateWindow time.Duration
	CallRateLimit     int
	CallRateWindow    time.Duration
	APIRateLimit      int
	APIRateWindow     time.Duration
}

// ==============================================
// Feature Configuration
// ==============================================

type ChatConfig struct {
	DefaultLimit int
	MaxLimit     int
	MaxTextLen   int
}

type StorageConfig struct {
	Region     string
	Bucket     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PublicBase string
	PresignTTL time.Duration
}

// Enabled reports whether avatar uploads can be presigned.
func (s StorageConfig) Enabled() bool {
	return s.Region != "" && s.Bucket != ""
}

type VoiceConfig struct {
	PublicKey   string
	AssistantID string
}

type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ==============================================
// Load Configuration
// ==============================================

func Load() *Config {
	return &Config{
		App:      loadAppConfig(),
		Server:   loadServerConfig(),
		MongoDB:  loadMongoConfig(),
		Redis:    loadRedisConfig(),
		JWT:      loadJWTConfig(),
		Security: loadSecurityConfig(),
		Chat:     loadChatConfig(),
		Storage:  loadStorageConfig(),
		Voice:    loadVoiceConfig(),
		Logging:  loadLoggingConfig(),
	}
}

func loadAppConfig() AppConfig {
	return AppConfig{
		Name:        getEnv("APP_NAME", "soulcare"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		Timezone:    getEnv("APP_TIMEZONE", "Local"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", "15s"),
		WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", "15s"),
		IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s"),
		ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", "10s"),
		CORS: CORSConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
		},
	}
}

func loadMongoConfig() MongoConfig {
	return MongoConfig{
		URI:                    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:               getEnv("MONGODB_DATABASE", "soulcare"),
		MaxPoolSize:            getEnvAsUint64("MONGODB_MAX_POOL_SIZE", 100),
		MinPoolSize:            getEnvAsUint64("MONGODB_MIN_POOL_SIZE", 5),
		MaxConnIdleTime:        getEnvAsDuration("MONGODB_MAX_CONN_IDLE_TIME", "30m"),
		ConnectTimeout:         getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", "10s"),
		ServerSelectionTimeout: getEnvAsDuration("MONGODB_SERVER_SELECTION_TIMEOUT", "5s"),
		OperationTimeout:       getEnvAsDuration("MONGODB_OPERATION_TIMEOUT", "10s"),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
		Password:  getEnv("REDIS_PASSWORD", ""),
		DB:        getEnvAsInt("REDIS_DB", 0),
		KeyPrefix: getEnv("REDIS_KEY_PREFIX", "soulcare"),
	}
}

func loadJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:   getEnv("JWT_SECRET", ""),
		Issuer:   getEnv("JWT_ISSUER", "soulcare-api"),
		Audience: getEnv("JWT_AUDIENCE", "soulcare-web"),
		Expiry:   getEnvAsDuration("JWT_EXPIRY", "24h"),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		SigninMaxFailures: getEnvAsInt("SIGNIN_MAX_FAILURES", 5),
		SigninLockWindow:  getEnvAsDuration("SIGNIN_LOCK_WINDOW", "15m"),
		MessageRateLimit:  getEnvAsInt("MESSAGE_RATE_LIMIT", 20),
		MessageRateWindow: getEnvAsDuration("MESSAGE_RATE_WINDOW", "1m"),
		CallRateLimit:     getEnvAsInt("CALL_RATE_LIMIT", 5),
		CallRateWindow:    getEnvAsDuration("CALL_RATE_WINDOW", "10m"),
		APIRateLimit:      getEnvAsInt("API_RATE_LIMIT", 300),
		APIRateWindow:     getEnvAsDuration("API_RATE_WINDOW", "1m"),
	}
}

func loadChatConfig() ChatConfig {
	return ChatConfig{
		DefaultLimit: getEnvAsInt("CHAT_DEFAULT_LIMIT", 50),
		MaxLimit:     getEnvAsInt("CHAT_MAX_LIMIT", 200),
		MaxTextLen:   getEnvAsInt("CHAT_MAX_TEXT_LENGTH", 2000),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Region:     getEnv("S3_REGION", ""),
		Bucket:     getEnv("S3_BUCKET", ""),
		Endpoint:   getEnv("S3_ENDPOINT", ""),
		AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		SecretKey:  getEnv("S3_SECRET_KEY", ""),
		PublicBase: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		PresignTTL: getEnvAsDuration("S3_PRESIGN_TTL", "15m"),
	}
}

func loadVoiceConfig() VoiceConfig {
	return VoiceConfig{
		PublicKey:   getEnv("VAPI_PUBLIC_KEY", ""),
		AssistantID: getEnv("VAPI_ASSISTANT_ID", ""),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
		Output: getEnv("LOG_OUTPUT", "stdout"),
	}
}

// ==============================================
// Helper Functions
// ==============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsSlice(key string, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ==============================================
// Configuration Validation
// ==============================================

func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		if c.App.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			c.JWT.Secret = "dev-only-insecure-secret"
		}
	}
	if c.JWT.Expiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
		errs = append(errs, errors.New("MONGODB_URI and MONGODB_DATABASE are required"))
	}
	if c.Chat.DefaultLimit <= 0 || c.Chat.MaxLimit < c.Chat.DefaultLimit {
		errs = append(errs, fmt.Errorf("invalid chat limits: default=%d max=%d", c.Chat.DefaultLimit, c.Chat.MaxLimit))
	}
	if c.App.Timezone != "" && !strings.EqualFold(c.App.Timezone, "local") {
		if _, err := time.LoadLocation(c.App.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err))
		}
	}

	return errors.Join(errs...)
}
