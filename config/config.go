package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // REWARD_TIMEZONE must resolve in minimal images

	"rewarder/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP API configuration
	HTTPAddr  string
	JWTSecret string
	JWTTTL    time.Duration

	// Reward rules
	MaxRewardAmount int64
	RewardDelay     time.Duration
	RewardLocation  *time.Location // Calendar used for the once-per-day request window

	// Scheduler configuration
	RewardRunInterval time.Duration
	SchedulerEnabled  bool

	// Optional integrations, disabled when empty
	RedisAddr           string // Distributed lock for scheduler passes
	NATSServers         string // Event export (comma-separated servers)
	DiscordWebhookID    string
	DiscordWebhookToken string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from the environment, reading a .env file first when one exists
func load() (*Config, error) {
	// Missing .env is not an error
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		HTTPAddr:  getEnvWithDefault("HTTP_ADDR", ":8000"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    24 * time.Hour,

		// Rewards
		MaxRewardAmount: 100,
		RewardDelay:     5 * time.Minute,
		RewardLocation:  time.UTC,

		// Scheduler
		RewardRunInterval: time.Minute,
		SchedulerEnabled:  getEnvWithDefault("SCHEDULER_ENABLED", "true") == "true",

		// Integrations
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		NATSServers:         os.Getenv("NATS_SERVERS"),
		DiscordWebhookID:    os.Getenv("DISCORD_WEBHOOK_ID"),
		DiscordWebhookToken: os.Getenv("DISCORD_WEBHOOK_TOKEN"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if maxAmount := os.Getenv("MAX_REWARD_AMOUNT"); maxAmount != "" {
		parsed, err := strconv.ParseInt(maxAmount, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("MAX_REWARD_AMOUNT must be a positive integer, got %q", maxAmount)
		}
		config.MaxRewardAmount = parsed
	}

	var err error
	if config.RewardDelay, err = getDurationWithDefault("REWARD_DELAY", config.RewardDelay); err != nil {
		return nil, err
	}
	if config.RewardRunInterval, err = getDurationWithDefault("REWARD_RUN_INTERVAL", config.RewardRunInterval); err != nil {
		return nil, err
	}
	if config.JWTTTL, err = getDurationWithDefault("JWT_TTL", config.JWTTTL); err != nil {
		return nil, err
	}

	if tz := os.Getenv("REWARD_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid REWARD_TIMEZONE %q: %w", tz, err)
		}
		config.RewardLocation = loc
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:       "test",
		HTTPAddr:          ":0",
		JWTSecret:         "test-secret",
		JWTTTL:            time.Hour,
		MaxRewardAmount:   100,
		RewardDelay:       5 * time.Minute,
		RewardLocation:    time.UTC,
		RewardRunInterval: time.Minute,
		LogLevel:          "debug",
	}
}
