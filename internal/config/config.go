package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	StorageMemory    = "memory"
	StorageRedis     = "redis"
	StorageCassandra = "cassandra"
)

// Config holds all configuration for the API server
type Config struct {
	Host              string
	Port              string
	Environment       string
	LogLevel          string
	SentryDSN         string
	RequestTimeout    time.Duration
	MaxStringLength   int
	MaxRecursionDepth int
	StorageBackend    string
	Redis             RedisConfig
	Cassandra         CassandraConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	RunTTL   time.Duration
}

// CassandraConfig holds Cassandra-specific configuration
type CassandraConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	Consistency string
	Timeout     time.Duration
}

// ClientConfig holds configuration for the stringlab CLI
type ClientConfig struct {
	APIBaseURL string
	Timeout    time.Duration
	LogLevel   string
}

// Load loads server configuration from environment variables
func Load() (*Config, error) {
	requestTimeout, err := getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	maxStringLength, err := getEnvInt("MAX_STRING_LENGTH", 1000000)
	if err != nil {
		return nil, err
	}
	if maxStringLength < 1 {
		return nil, fmt.Errorf("MAX_STRING_LENGTH must be greater than 0")
	}

	maxRecursionDepth, err := getEnvInt("MAX_RECURSION_DEPTH", 1000)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory))
	switch backend {
	case StorageMemory, StorageRedis, StorageCassandra:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND value: %q", backend)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	// Run TTL (0 = no expiration)
	runTTL, err := getEnvInt("RUN_TTL_SECONDS", 86400)
	if err != nil {
		return nil, err
	}

	cassandraTimeout, err := getEnvInt("CASSANDRA_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnv("PORT", "5000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		RequestTimeout:    time.Duration(requestTimeout) * time.Second,
		MaxStringLength:   maxStringLength,
		MaxRecursionDepth: maxRecursionDepth,
		StorageBackend:    backend,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			RunTTL:   time.Duration(runTTL) * time.Second,
		},
		Cassandra: CassandraConfig{
			Hosts:       parseHosts(getEnv("CASSANDRA_HOSTS", "localhost:9042")),
			Keyspace:    getEnv("CASSANDRA_KEYSPACE", "stringlab"),
			Username:    getEnv("CASSANDRA_USERNAME", ""),
			Password:    getEnv("CASSANDRA_PASSWORD", ""),
			Consistency: getEnv("CASSANDRA_CONSISTENCY", "QUORUM"),
			Timeout:     time.Duration(cassandraTimeout) * time.Second,
		},
	}, nil
}

// LoadClient loads CLI configuration from environment variables
func LoadClient() (*ClientConfig, error) {
	timeout, err := getEnvInt("STRINGLAB_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	return &ClientConfig{
		APIBaseURL: strings.TrimRight(getEnv("STRINGLAB_API_URL", "http://localhost:5000/api"), "/"),
		Timeout:    time.Duration(timeout) * time.Second,
		LogLevel:   getEnv("LOG_LEVEL", "error"),
	}, nil
}

// Address returns the full address (host:port)
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

// parseHosts parses a comma-separated list of hosts
func parseHosts(hostsStr string) []string {
	parts := strings.Split(hostsStr, ",")
	hosts := make([]string, 0, len(parts))
	for _, part := range parts {
		host := strings.TrimSpace(part)
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	if len(hosts) == 0 {
		return []string{"localhost:9042"}
	}
	return hosts
}
