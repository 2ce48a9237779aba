package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	APIKey         string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	StoreTimeout     time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers           []string
	KafkaGroupID           string
	RuleRequestTopic       string
	RuleResultTopic        string
	UsedDeterminationTopic string

	// Rule catalog
	RuleCatalogPath string

	// Processing-id lookup service
	LookupBaseURL      string
	LookupClientID     string
	LookupClientSecret string
	LookupTokenURL     string
	LookupTimeout      time.Duration
	LookupCacheTTL     time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),
		APIKey:         getEnv("API_KEY", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "rules"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "rules123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rules_api"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		StoreTimeout:     getDuration("STORE_TIMEOUT", 5*time.Second),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:           getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:           getEnv("KAFKA_GROUP_ID", "rules-api"),
		RuleRequestTopic:       getEnv("RULE_REQUEST_TOPIC", "rule-requests"),
		RuleResultTopic:        getEnv("RULE_RESULT_TOPIC", "rule-results"),
		UsedDeterminationTopic: getEnv("USED_DETERMINATION_TOPIC", "used-determinations"),

		RuleCatalogPath: getEnv("RULE_CATALOG_PATH", ""),

		LookupBaseURL:      getEnv("LOOKUP_BASE_URL", ""),
		LookupClientID:     getEnv("LOOKUP_CLIENT_ID", ""),
		LookupClientSecret: getEnv("LOOKUP_CLIENT_SECRET", ""),
		LookupTokenURL:     getEnv("LOOKUP_TOKEN_URL", ""),
		LookupTimeout:      getDuration("LOOKUP_TIMEOUT", 5*time.Second),
		LookupCacheTTL:     getDuration("LOOKUP_CACHE_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
