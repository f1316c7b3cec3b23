package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the verification agent.
// It merges file defaults and environment overrides to support both local
// and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	KafkaBrokers []string
	DLQTopic     string

	JWTSecret string

	GeminiAPIKey string
	GeminiModel  string

	EscrowRPCURL          string
	EscrowContractAddress string
	EscrowAgentPrivateKey string
	EscrowChainID         int64
	RequireEnrollment     bool

	MetadataTimeout time.Duration
	AnalyzerTimeout time.Duration
	IdempotencyTTL  time.Duration

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Escrow struct {
		RPCURL            string `yaml:"rpc_url"`
		ContractAddress   string `yaml:"contract_address"`
		ChainID           int64  `yaml:"chain_id"`
		RequireEnrollment bool   `yaml:"require_enrollment"`
	} `yaml:"escrow"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "creator-connect-verification-agent",
		HTTPPort:           8080,
		GRPCPort:           9090,
		GeminiModel:        "gemini-1.5-flash",
		MetadataTimeout:    8 * time.Second,
		AnalyzerTimeout:    30 * time.Second,
		IdempotencyTTL:     24 * time.Hour,
		MaxDBConns:         20,
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Gemini.APIKey != "" {
			cfg.GeminiAPIKey = f.Gemini.APIKey
		}
		if f.Gemini.Model != "" {
			cfg.GeminiModel = f.Gemini.Model
		}
		if f.Escrow.RPCURL != "" {
			cfg.EscrowRPCURL = f.Escrow.RPCURL
		}
		if f.Escrow.ContractAddress != "" {
			cfg.EscrowContractAddress = f.Escrow.ContractAddress
		}
		if f.Escrow.ChainID != 0 {
			cfg.EscrowChainID = f.Escrow.ChainID
		}
		cfg.RequireEnrollment = f.Escrow.RequireEnrollment
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.DLQTopic = envOrDefault("DLQ_TOPIC", cfg.ServiceID+".dlq")
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.GeminiAPIKey = envOrDefault("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = envOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.EscrowRPCURL = envOrDefault("ESCROW_RPC_URL", cfg.EscrowRPCURL)
	cfg.EscrowContractAddress = envOrDefault("ESCROW_CONTRACT_ADDRESS", cfg.EscrowContractAddress)
	cfg.EscrowAgentPrivateKey = envOrDefault("ESCROW_AGENT_PRIVATE_KEY", cfg.EscrowAgentPrivateKey)
	cfg.EscrowChainID = int64(envInt("ESCROW_CHAIN_ID", int(cfg.EscrowChainID)))
	cfg.RequireEnrollment = envBool("ESCROW_REQUIRE_ENROLLMENT", cfg.RequireEnrollment)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.MetadataTimeout = time.Duration(envInt("METADATA_TIMEOUT_SECONDS", int(cfg.MetadataTimeout.Seconds()))) * time.Second
	cfg.AnalyzerTimeout = time.Duration(envInt("ANALYZER_TIMEOUT_SECONDS", int(cfg.AnalyzerTimeout.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	switch os.Getenv(name) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
