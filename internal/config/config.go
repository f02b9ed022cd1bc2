package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Solana   SolanaConfig
	Database DatabaseConfig
	Security SecurityConfig
	Hunter   HunterConfig
	Executor ExecutorConfig
	Admin    AdminConfig
	Logging  LoggingConfig
}

// SolanaConfig - подключение к сети Solana
type SolanaConfig struct {
	Network            string // mainnet-beta, devnet, testnet
	RPCPrimaryURL       string
	RPCFallbackURLs     []string
	WSURL               string
	Commitment          string // processed, confirmed, finalized
	RequestTimeout      time.Duration
	BundleTimeout       time.Duration
	LaunchpadProgramID  string // pump.fun-family program id the monitor subscribes to
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	WalletMasterKeyHex string // 32 bytes hex, HKDF master per spec.md §9
	BotToken           string
	AutoExecuteEnabled bool
}

// HunterConfig - параметры процесса Hunter (monitor + opportunity + TP/SL)
type HunterConfig struct {
	WSReconnectDelay  time.Duration
	WSPingInterval    time.Duration
	WSReadTimeout     time.Duration
	WSMaxReconnects   int
	WSCooldown        time.Duration

	PriceStalenessWindow time.Duration // primary aggregator-poll interval (~3s per spec.md §4.4)
	MaxConcurrentExits   int

	CandidatePollInterval time.Duration
	CandidateMaxAge       time.Duration
}

// ExecutorConfig - параметры процесса Executor
type ExecutorConfig struct {
	WorkerCount    int
	JobLeaseTTL    time.Duration
	PollInterval   time.Duration
	MaxAttempts    int
	CloseTimeout   time.Duration
	PriceImpactWarnBps int
	PriceImpactCapBps  int
	RentBufferSol      float64
}

// AdminConfig - debug/admin HTTP surface (raptorctl)
type AdminConfig struct {
	Port          int
	Host          string
	DebugUsername string
	DebugPassword string
	Env           string
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Solana: SolanaConfig{
			Network:         getEnv("SOLANA_NETWORK", "mainnet-beta"),
			RPCPrimaryURL:   getEnv("SOLANA_RPC_URL", ""),
			RPCFallbackURLs: getEnvAsList("SOLANA_RPC_FALLBACK_URLS", nil),
			WSURL:           getEnv("SOLANA_WS_URL", ""),
			Commitment:      getEnv("SOLANA_COMMITMENT", "confirmed"),
			RequestTimeout:     getEnvAsDuration("SOLANA_REQUEST_TIMEOUT", 5*time.Second),
			BundleTimeout:      getEnvAsDuration("SOLANA_BUNDLE_TIMEOUT", 10*time.Second),
			LaunchpadProgramID: getEnv("SOLANA_LAUNCHPAD_PROGRAM_ID", "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			Name:         getEnv("DB_NAME", "raptor"),
			User:         getEnv("DB_USER", "raptor"),
			Password:     getEnv("DB_PASSWORD", ""),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Security: SecurityConfig{
			WalletMasterKeyHex: getEnv("WALLET_MASTER_KEY", ""),
			BotToken:           getEnv("BOT_TOKEN", ""),
			AutoExecuteEnabled: getEnvAsBool("AUTO_EXECUTE_ENABLED", false),
		},
		Hunter: HunterConfig{
			WSReconnectDelay:      getEnvAsDuration("WS_RECONNECT_DELAY", 3*time.Second),
			WSPingInterval:        getEnvAsDuration("WS_PING_INTERVAL", 30*time.Second),
			WSReadTimeout:         getEnvAsDuration("WS_READ_TIMEOUT", 60*time.Second),
			WSMaxReconnects:       getEnvAsInt("WS_MAX_RECONNECTS", 10),
			WSCooldown:            getEnvAsDuration("WS_COOLDOWN", 60*time.Second),
			PriceStalenessWindow:  getEnvAsDuration("PRICE_POLL_INTERVAL", 3*time.Second),
			MaxConcurrentExits:    getEnvAsInt("MAX_CONCURRENT_EXITS", 8),
			CandidatePollInterval: getEnvAsDuration("CANDIDATE_POLL_INTERVAL", 2*time.Second),
			CandidateMaxAge:       getEnvAsDuration("CANDIDATE_MAX_AGE", 10*time.Minute),
		},
		Executor: ExecutorConfig{
			WorkerCount:        getEnvAsInt("EXECUTOR_WORKERS", 4),
			JobLeaseTTL:        getEnvAsDuration("JOB_LEASE_TTL", 30*time.Second),
			PollInterval:       getEnvAsDuration("EXECUTOR_POLL_INTERVAL", 200*time.Millisecond),
			MaxAttempts:        getEnvAsInt("EXECUTOR_MAX_ATTEMPTS", 4),
			CloseTimeout:       getEnvAsDuration("EXECUTOR_CLOSE_TIMEOUT", 30*time.Second),
			PriceImpactWarnBps: getEnvAsInt("PRICE_IMPACT_WARN_BPS", 500),
			PriceImpactCapBps:  getEnvAsInt("PRICE_IMPACT_CAP_BPS", 1500),
			RentBufferSol:      getEnvAsFloat("RENT_BUFFER_SOL", 0.01),
		},
		Admin: AdminConfig{
			Port:          getEnvAsInt("ADMIN_PORT", 9090),
			Host:          getEnv("ADMIN_HOST", "0.0.0.0"),
			DebugUsername: getEnv("DEBUG_USERNAME", ""),
			DebugPassword: getEnv("DEBUG_PASSWORD", ""),
			Env:           getEnv("ENV", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет критичные параметры конфигурации. Ошибка здесь
// классифицируется вызывающей стороной как errkind.ConfigFatal и приводит
// к завершению процесса с кодом 1 (spec.md §6).
func (c *Config) Validate() error {
	if c.Solana.RPCPrimaryURL == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.Solana.WSURL == "" {
		return fmt.Errorf("SOLANA_WS_URL is required")
	}

	switch c.Solana.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("SOLANA_COMMITMENT must be one of processed|confirmed|finalized, got %q", c.Solana.Commitment)
	}

	if c.Solana.Network == "mainnet-beta" {
		for _, u := range append([]string{c.Solana.RPCPrimaryURL, c.Solana.WSURL}, c.Solana.RPCFallbackURLs...) {
			lower := strings.ToLower(u)
			if strings.Contains(lower, "devnet") || strings.Contains(lower, "testnet") {
				return fmt.Errorf("refusing to start against a devnet/testnet endpoint while SOLANA_NETWORK=mainnet-beta: %s", u)
			}
		}
	}

	if c.Security.WalletMasterKeyHex == "" {
		return fmt.Errorf("WALLET_MASTER_KEY is required for wallet secret encryption")
	}
	raw, err := hex.DecodeString(c.Security.WalletMasterKeyHex)
	if err != nil {
		return fmt.Errorf("WALLET_MASTER_KEY must be hex-encoded: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("WALLET_MASTER_KEY must decode to exactly 32 bytes, got %d", len(raw))
	}

	return nil
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
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
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
