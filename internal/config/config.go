package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port    string
	GinMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr string

	JWTSecret     string
	JWTExpiry     time.Duration
	PendingExpiry time.Duration

	// Platform product rules.
	EntryFee            decimal.Decimal
	TierOnePercent      decimal.Decimal // share of the entry fee paid at level 1
	TierDecay           decimal.Decimal // multiplier applied per level below 1
	TierLevels          int
	CryptoCapUnverified decimal.Decimal // max crypto withdrawal without verified KYC
	WithdrawalsPaused   bool            // platform-wide gate

	LedgerRetentionMonths int
}

func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "optivus"),

		RedisAddr: getEnv("REDIS_URL", "localhost:6379"),

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiry:     getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		PendingExpiry: getEnvAsDuration("JWT_PENDING_EXPIRY", 5*time.Minute),

		EntryFee:            getEnvAsDecimal("ENTRY_FEE", "50.00"),
		TierOnePercent:      getEnvAsDecimal("TIER_ONE_PERCENT", "0.40"),
		TierDecay:           getEnvAsDecimal("TIER_DECAY", "0.50"),
		TierLevels:          getEnvAsInt("TIER_LEVELS", 6),
		CryptoCapUnverified: getEnvAsDecimal("CRYPTO_CAP_UNVERIFIED", "200.00"),
		WithdrawalsPaused:   getEnvAsBool("WITHDRAWALS_PAUSED", false),

		LedgerRetentionMonths: getEnvAsInt("LEDGER_RETENTION_MONTHS", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvAsDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}
