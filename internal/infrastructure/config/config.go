package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultModelPath is the serialized classifier read at startup.
const DefaultModelPath = "objectivity-detection-direct.sav"

// Config holds all configuration for the subjectivity service.
type Config struct {
	ModelPath          string   `yaml:"model_path"`
	GRPCPort           string   `yaml:"grpc_port"`
	HTTPPort           string   `yaml:"http_port"`
	DatabaseURL        string   `yaml:"database_url"`
	MigrationsDir      string   `yaml:"migrations_dir"`
	KafkaEventsTopic   string   `yaml:"kafka_events_topic"`
	KafkaRequestTopic  string   `yaml:"kafka_request_topic"`
	KafkaConsumerGroup string   `yaml:"kafka_consumer_group"`
	KafkaCompression   string   `yaml:"kafka_compression"`
	JWTSecret          string   `yaml:"jwt_secret"`
	JWTPublicKeyPath   string   `yaml:"jwt_public_key"`
	JWTIssuer          string   `yaml:"jwt_issuer"`
	TLSCertFile        string   `yaml:"tls_cert_file"`
	TLSKeyFile         string   `yaml:"tls_key_file"`
	TLSCAFile          string   `yaml:"tls_ca_file"`
	Environment        string   `yaml:"environment"`
	LogLevel           string   `yaml:"log_level"`
	LogFormat          string   `yaml:"log_format"`
	OTLPEndpoint       string   `yaml:"otlp_endpoint"`
	KafkaBrokers       []string `yaml:"kafka_brokers"`
	BatchConcurrency   int      `yaml:"batch_concurrency"`
	MaxBatchSize       int      `yaml:"max_batch_size"`
	HTTPRateBurst      int      `yaml:"http_rate_burst"`
	HTTPRateLimit      float64  `yaml:"http_rate_limit"`
}

// Load reads configuration from environment variables with sensible defaults.
// When CONFIG_FILE names a YAML file, its non-empty values are applied first
// and environment variables still take precedence.
func Load() (*Config, error) {
	base := defaults()

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := base.overlayFile(path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		ModelPath:          getEnv("MODEL_PATH", base.ModelPath),
		GRPCPort:           getEnv("GRPC_PORT", base.GRPCPort),
		HTTPPort:           getEnv("HTTP_PORT", base.HTTPPort),
		DatabaseURL:        getEnv("DATABASE_URL", base.DatabaseURL),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", base.MigrationsDir),
		KafkaBrokers:       getEnvList("KAFKA_BROKERS", base.KafkaBrokers),
		KafkaEventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", base.KafkaEventsTopic),
		KafkaRequestTopic:  getEnv("KAFKA_REQUEST_TOPIC", base.KafkaRequestTopic),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", base.KafkaConsumerGroup),
		KafkaCompression:   getEnv("KAFKA_COMPRESSION", base.KafkaCompression),
		JWTSecret:          getEnv("JWT_SECRET", base.JWTSecret),
		JWTPublicKeyPath:   getEnv("JWT_PUBLIC_KEY", base.JWTPublicKeyPath),
		JWTIssuer:          getEnv("JWT_ISSUER", base.JWTIssuer),
		TLSCertFile:        getEnv("TLS_CERT_FILE", base.TLSCertFile),
		TLSKeyFile:         getEnv("TLS_KEY_FILE", base.TLSKeyFile),
		TLSCAFile:          getEnv("TLS_CA_FILE", base.TLSCAFile),
		Environment:        getEnv("ENVIRONMENT", base.Environment),
		LogLevel:           getEnv("LOG_LEVEL", base.LogLevel),
		LogFormat:          getEnv("LOG_FORMAT", base.LogFormat),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", base.OTLPEndpoint),
	}

	var err error
	if cfg.BatchConcurrency, err = getEnvInt("BATCH_CONCURRENCY", base.BatchConcurrency); err != nil {
		return nil, err
	}
	if cfg.MaxBatchSize, err = getEnvInt("MAX_BATCH_SIZE", base.MaxBatchSize); err != nil {
		return nil, err
	}
	if cfg.HTTPRateLimit, err = getEnvFloat("HTTP_RATE_LIMIT", base.HTTPRateLimit); err != nil {
		return nil, err
	}
	if cfg.HTTPRateBurst, err = getEnvInt("HTTP_RATE_BURST", base.HTTPRateBurst); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ModelPath:          DefaultModelPath,
		GRPCPort:           "8095",
		HTTPPort:           "9095",
		MigrationsDir:      "file://migrations",
		KafkaEventsTopic:   "subjectivity.events",
		KafkaRequestTopic:  "",
		KafkaConsumerGroup: "subjectivity-service",
		JWTIssuer:          "subjectivity",
		Environment:        "development",
		LogLevel:           "info",
		LogFormat:          "json",
		BatchConcurrency:   8,
		MaxBatchSize:       100,
		HTTPRateBurst:      20,
	}
}

// overlayFile applies the non-zero fields of a YAML config file.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&c.ModelPath, file.ModelPath)
	overlay(&c.GRPCPort, file.GRPCPort)
	overlay(&c.HTTPPort, file.HTTPPort)
	overlay(&c.DatabaseURL, file.DatabaseURL)
	overlay(&c.MigrationsDir, file.MigrationsDir)
	overlay(&c.KafkaEventsTopic, file.KafkaEventsTopic)
	overlay(&c.KafkaRequestTopic, file.KafkaRequestTopic)
	overlay(&c.KafkaConsumerGroup, file.KafkaConsumerGroup)
	overlay(&c.KafkaCompression, file.KafkaCompression)
	overlay(&c.JWTSecret, file.JWTSecret)
	overlay(&c.JWTPublicKeyPath, file.JWTPublicKeyPath)
	overlay(&c.JWTIssuer, file.JWTIssuer)
	overlay(&c.TLSCertFile, file.TLSCertFile)
	overlay(&c.TLSKeyFile, file.TLSKeyFile)
	overlay(&c.TLSCAFile, file.TLSCAFile)
	overlay(&c.Environment, file.Environment)
	overlay(&c.LogLevel, file.LogLevel)
	overlay(&c.LogFormat, file.LogFormat)
	overlay(&c.OTLPEndpoint, file.OTLPEndpoint)
	if len(file.KafkaBrokers) > 0 {
		c.KafkaBrokers = file.KafkaBrokers
	}
	if file.BatchConcurrency > 0 {
		c.BatchConcurrency = file.BatchConcurrency
	}
	if file.MaxBatchSize > 0 {
		c.MaxBatchSize = file.MaxBatchSize
	}
	if file.HTTPRateLimit > 0 {
		c.HTTPRateLimit = file.HTTPRateLimit
	}
	if file.HTTPRateBurst > 0 {
		c.HTTPRateBurst = file.HTTPRateBurst
	}
	return nil
}

// Validate reports configuration that cannot be served.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH must not be empty")
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive, got %d", c.BatchConcurrency)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be positive, got %d", c.MaxBatchSize)
	}
	if c.HTTPRateLimit < 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must not be negative, got %v", c.HTTPRateLimit)
	}
	if c.HTTPRateLimit > 0 && c.HTTPRateBurst <= 0 {
		return fmt.Errorf("HTTP_RATE_BURST must be positive when HTTP_RATE_LIMIT is set")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// PersistenceEnabled reports whether assessments are stored in PostgreSQL.
func (c *Config) PersistenceEnabled() bool { return c.DatabaseURL != "" }

// KafkaEnabled reports whether events are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// AuthEnabled reports whether gRPC and HTTP calls require a bearer token.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" || c.JWTPublicKeyPath != "" }

// RateLimitEnabled reports whether HTTP scoring requests are rate limited.
func (c *Config) RateLimitEnabled() bool { return c.HTTPRateLimit > 0 }

// TLSEnabled reports whether the gRPC server terminates TLS.
func (c *Config) TLSEnabled() bool { return c.TLSCertFile != "" }

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
