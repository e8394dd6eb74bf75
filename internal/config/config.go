package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Catalog      CatalogConfig
	Feedback     FeedbackConfig
	Search       SearchConfig
	Ranking      RankingConfig
	Logging      LoggingConfig
	PostgreSQL   PostgreSQLConfig
	Redis        RedisConfig
	SynonymsFile string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
	StaticDir      string // site files served in development builds
	FeedbackRate   int    // feedback requests per client per minute, 0 disables the limit
}

// CatalogConfig describes where the property feed comes from and how it is cached.
// URLs are tried in order; File wins over URLs when set.
type CatalogConfig struct {
	BaseURL    string   // relative URLs are resolved against it
	URLs       []string
	File       string
	CacheFile  string
	CacheTTL   time.Duration
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// FeedbackConfig selects the click feedback backend.
type FeedbackConfig struct {
	Backend string // memory, file, sqlite, postgres, redis
	Path    string // file or sqlite path
	Key     string // namespaced key for file and redis backends
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	MaxSuggestions int
	MinChars       int
	Debounce       time.Duration
	PageSize       int
	LogSearches    bool
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightTitle        float64
	WeightNeighborhood float64
	WeightCity         float64
	WeightID           float64
	WeightType         float64
	WeightFeatures     float64
	WeightFeatureMatch float64
	WeightTypeMatch    float64
	WeightOverlap      float64
	WeightBeds         float64
	WeightBaths        float64
	WeightParking      float64
	WeightPrice        float64
	WeightPopularity   float64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

const DefaultClickKey = "altorra:ssrc:clicks"

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
			StaticDir:      getEnv("STATIC_DIR", "."),
			FeedbackRate:   getEnvAsInt("FEEDBACK_RATE_LIMIT", 60),
		},
		Catalog: CatalogConfig{
			BaseURL:    getEnv("CATALOG_BASE_URL", "https://altorrainmobiliaria.github.io"),
			URLs:       getEnvAsList("CATALOG_URL", []string{"/properties/data.json", "properties/data.json"}),
			File:       getEnv("CATALOG_FILE", ""),
			CacheFile:  getEnv("CATALOG_CACHE_FILE", ""),
			CacheTTL:   getEnvAsDuration("CATALOG_CACHE_TTL", 6*time.Hour),
			Timeout:    getEnvAsDuration("CATALOG_TIMEOUT", 10*time.Second),
			MaxRetries: getEnvAsInt("CATALOG_MAX_RETRIES", 2),
			RetryDelay: getEnvAsDuration("CATALOG_RETRY_DELAY", 500*time.Millisecond),
		},
		Feedback: FeedbackConfig{
			Backend: strings.ToLower(getEnv("FEEDBACK_BACKEND", "memory")),
			Path:    getEnv("FEEDBACK_PATH", "clicks.json"),
			Key:     getEnv("FEEDBACK_KEY", DefaultClickKey),
		},
		Search: SearchConfig{
			MaxSuggestions: getEnvAsInt("SEARCH_MAX_SUGGESTIONS", 12),
			MinChars:       getEnvAsInt("SEARCH_MIN_CHARS", 2),
			Debounce:       getEnvAsDuration("SEARCH_DEBOUNCE", 200*time.Millisecond),
			PageSize:       getEnvAsInt("LISTING_PAGE_SIZE", 9),
			LogSearches:    getEnvAsBool("SEARCH_LOG_ENABLED", true),
		},
		Ranking: RankingConfig{
			WeightTitle:        getEnvAsFloat("RANK_WEIGHT_TITLE", 55),
			WeightNeighborhood: getEnvAsFloat("RANK_WEIGHT_NEIGHBORHOOD", 45),
			WeightCity:         getEnvAsFloat("RANK_WEIGHT_CITY", 35),
			WeightID:           getEnvAsFloat("RANK_WEIGHT_ID", 40),
			WeightType:         getEnvAsFloat("RANK_WEIGHT_TYPE", 15),
			WeightFeatures:     getEnvAsFloat("RANK_WEIGHT_FEATURES", 70),
			WeightFeatureMatch: getEnvAsFloat("RANK_WEIGHT_FEATURE_MATCH", 85),
			WeightTypeMatch:    getEnvAsFloat("RANK_WEIGHT_TYPE_MATCH", 55),
			WeightOverlap:      getEnvAsFloat("RANK_WEIGHT_OVERLAP", 18),
			WeightBeds:         getEnvAsFloat("RANK_WEIGHT_BEDS", 22),
			WeightBaths:        getEnvAsFloat("RANK_WEIGHT_BATHS", 18),
			WeightParking:      getEnvAsFloat("RANK_WEIGHT_PARKING", 14),
			WeightPrice:        getEnvAsFloat("RANK_WEIGHT_PRICE", 12),
			WeightPopularity:   getEnvAsFloat("RANK_WEIGHT_POPULARITY", 8),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "altorra"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "altorra:"),
		},
		SynonymsFile: getEnv("SYNONYMS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings that would make the service misbehave silently.
func (c *Config) Validate() error {
	switch c.Feedback.Backend {
	case "memory", "file", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("invalid FEEDBACK_BACKEND %q: must be one of memory, file, sqlite, postgres, redis", c.Feedback.Backend)
	}
	if c.Feedback.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("FEEDBACK_BACKEND=redis requires REDIS_URL")
	}
	if c.Search.MaxSuggestions <= 0 {
		return fmt.Errorf("SEARCH_MAX_SUGGESTIONS must be positive, got %d", c.Search.MaxSuggestions)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("LISTING_PAGE_SIZE must be positive, got %d", c.Search.PageSize)
	}
	if c.Catalog.File == "" && len(c.Catalog.URLs) == 0 {
		return fmt.Errorf("either CATALOG_FILE or CATALOG_URL must be set")
	}
	return nil
}

// CatalogURLs returns the catalog URLs with relative entries resolved against BaseURL.
func (c *Config) CatalogURLs() ([]string, error) {
	base, err := url.Parse(c.Catalog.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_BASE_URL %q: %w", c.Catalog.BaseURL, err)
	}
	out := make([]string, 0, len(c.Catalog.URLs))
	for _, raw := range c.Catalog.URLs {
		ref, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CATALOG_URL entry %q: %w", raw, err)
		}
		if !ref.IsAbs() {
			if !base.IsAbs() {
				return nil, fmt.Errorf("relative CATALOG_URL %q needs an absolute CATALOG_BASE_URL", raw)
			}
			// "properties/data.json" and "/properties/data.json" both hang off the site root
			ref = base.ResolveReference(&url.URL{Path: "/" + strings.TrimPrefix(ref.Path, "/"), RawQuery: ref.RawQuery})
		}
		out = appendUniqueURL(out, ref.String())
	}
	return out, nil
}

func appendUniqueURL(list []string, u string) []string {
	for _, v := range list {
		if v == u {
			return list
		}
	}
	return append(list, u)
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("6h", "200ms") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
