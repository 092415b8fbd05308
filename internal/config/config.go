package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	ProcessingTimeout  time.Duration
	MaxRequestBodySize int64

	// Batch processing
	WorkerCount int

	// Detection thresholds
	FillThreshold       float64
	QualityThreshold    float64
	ConfidenceThreshold float64
	AutoEnhance         bool

	// Sheet image storage
	StorageBackend   string // "http", "azure" or "local"
	AzureAccountName string
	AzureAccountKey  string
	LocalSheetsDir   string // base directory for the local backend

	// Answer key and template data
	AnswerKeysPath string
	TemplatesDir   string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		ProcessingTimeout:  parseDurationOrDefault("PROCESSING_TIMEOUT", 45*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		WorkerCount: int(parseIntOrDefault("WORKER_COUNT", 4)),

		FillThreshold:       parseFloatOrDefault("FILL_THRESHOLD", 0.3),
		QualityThreshold:    parseFloatOrDefault("QUALITY_THRESHOLD", 0.6),
		ConfidenceThreshold: parseFloatOrDefault("CONFIDENCE_THRESHOLD", 0.7),
		AutoEnhance:         parseBoolOrDefault("AUTO_ENHANCE", true),

		StorageBackend:   getEnvOrDefault("STORAGE_BACKEND", "http"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		LocalSheetsDir:   os.Getenv("LOCAL_SHEETS_DIR"),

		AnswerKeysPath: getEnvOrDefault("ANSWER_KEYS_PATH", "answer_keys.json"),
		TemplatesDir:   getEnvOrDefault("TEMPLATES_DIR", "templates"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.ProcessingTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, processing=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.ProcessingTimeout)
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be >= 1 (got %d)", cfg.WorkerCount)
	}
	if cfg.FillThreshold <= 0 || cfg.FillThreshold >= 1 {
		return nil, fmt.Errorf("FILL_THRESHOLD must be in (0, 1) (got %v)", cfg.FillThreshold)
	}
	if cfg.QualityThreshold < 0 || cfg.QualityThreshold > 1 {
		return nil, fmt.Errorf("QUALITY_THRESHOLD must be in [0, 1] (got %v)", cfg.QualityThreshold)
	}
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("CONFIDENCE_THRESHOLD must be in [0, 1] (got %v)", cfg.ConfidenceThreshold)
	}
	switch cfg.StorageBackend {
	case "http", "local":
	case "azure":
		if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
			return nil, fmt.Errorf("azure storage backend requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND: %q", cfg.StorageBackend)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
