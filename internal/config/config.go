package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	CORSAllowedOrigins []string

	APIRateLimitPerMin    int
	MintRateLimitPerMin   int
	RateLimitRedisEnabled bool
	RateLimitRedisPrefix  string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	OwnerCacheTTL         time.Duration

	ChainRPCURL           string
	ChainID               int64
	TokenContractAddress  string
	EscrowContractAddress string
	OperatorPrivateKey    string
	ChainCallTimeout      time.Duration
	ChainConfirmTimeout   time.Duration

	MintDuplicateCheck bool

	StorageEnabled bool
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string

	ReadinessProbeTimeout        time.Duration
	ServerStartGracePeriod       time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:                   env,
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		CORSAllowedOrigins:    splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		APIRateLimitPerMin:    getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		MintRateLimitPerMin:   getEnvInt("MINT_RATE_LIMIT_PER_MIN", 12),
		RateLimitRedisEnabled: getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),
		RateLimitRedisPrefix:  getEnv("RATE_LIMIT_REDIS_PREFIX", "veritrace:rl"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),

		ChainRPCURL:           os.Getenv("CHAIN_RPC_URL"),
		ChainID:               int64(getEnvInt("CHAIN_ID", 31337)),
		TokenContractAddress:  os.Getenv("TOKEN_CONTRACT_ADDRESS"),
		EscrowContractAddress: os.Getenv("ESCROW_CONTRACT_ADDRESS"),
		OperatorPrivateKey:    os.Getenv("OPERATOR_PRIVATE_KEY"),

		MintDuplicateCheck: getEnvBool("MINT_DUPLICATE_CHECK", true),

		StorageEnabled: getEnvBool("STORAGE_ENABLED", true),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "product-images"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "veritrace-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	var err error
	if cfg.OwnerCacheTTL, err = parseDurationEnv("OWNER_CACHE_TTL", "30s"); err != nil {
		return nil, err
	}
	if cfg.ChainCallTimeout, err = parseDurationEnv("CHAIN_CALL_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ChainConfirmTimeout, err = parseDurationEnv("CHAIN_CONFIRM_TIMEOUT", "90s"); err != nil {
		return nil, err
	}
	if cfg.OTELMetricsExportInterval, err = parseDurationEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s"); err != nil {
		return nil, err
	}
	if cfg.ReadinessProbeTimeout, err = parseDurationEnv("READINESS_PROBE_TIMEOUT", "1s"); err != nil {
		return nil, err
	}
	if cfg.ServerStartGracePeriod, err = parseDurationEnv("SERVER_START_GRACE_PERIOD", "0s"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.ShutdownHTTPDrainTimeout, err = parseDurationEnv("SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ShutdownObservabilityTimeout, err = parseDurationEnv("SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.ChainRPCURL == "" {
		errs = append(errs, "CHAIN_RPC_URL is required")
	}
	if c.ChainID <= 0 {
		errs = append(errs, "CHAIN_ID must be > 0")
	}
	if !isHexAddress(c.TokenContractAddress) {
		errs = append(errs, "TOKEN_CONTRACT_ADDRESS must be a 0x-prefixed 20-byte hex address")
	}
	if !isHexAddress(c.EscrowContractAddress) {
		errs = append(errs, "ESCROW_CONTRACT_ADDRESS must be a 0x-prefixed 20-byte hex address")
	}
	if !isHexPrivateKey(c.OperatorPrivateKey) {
		errs = append(errs, "OPERATOR_PRIVATE_KEY must be a 32-byte hex string")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.MintRateLimitPerMin <= 0 {
		errs = append(errs, "MINT_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.ChainCallTimeout <= 0 {
		errs = append(errs, "CHAIN_CALL_TIMEOUT must be > 0")
	}
	if c.ChainConfirmTimeout <= 0 {
		errs = append(errs, "CHAIN_CONFIRM_TIMEOUT must be > 0")
	}
	if c.OwnerCacheTTL < 0 {
		errs = append(errs, "OWNER_CACHE_TTL must be >= 0")
	}
	if c.StorageEnabled {
		if c.MinioEndpoint == "" {
			errs = append(errs, "MINIO_ENDPOINT is required when STORAGE_ENABLED=true")
		}
		if c.MinioBucket == "" {
			errs = append(errs, "MINIO_BUCKET is required when STORAGE_ENABLED=true")
		}
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isHexAddress(v string) bool {
	if len(v) != 42 || !strings.HasPrefix(v, "0x") {
		return false
	}
	return isHex(v[2:])
}

func isHexPrivateKey(v string) bool {
	v = strings.TrimPrefix(v, "0x")
	return len(v) == 64 && isHex(v)
}

func isHex(v string) bool {
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
