package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Chains   ChainsConfig
	Deposit  DepositConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// ChainsConfig holds RPC/API endpoints per chain
type ChainsConfig struct {
	EVMRPC    map[string]string // chain -> JSON-RPC url
	SolanaRPC string
	TronAPI   string
	MoneroRPC string
	TonAPI    string
	UTXOAPI   map[string]string // chain -> explorer API url
	MORPC     string
}

// DepositConfig holds deposit monitoring parameters
type DepositConfig struct {
	PollInterval     time.Duration
	EvictionDelay    time.Duration
	VerifyInterval   time.Duration
	PendingMaxAge    time.Duration
	VerifyBatchSize  int
	EVMBlockLookback uint64
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "spotdeposits"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-this-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Chains: ChainsConfig{
			EVMRPC: map[string]string{
				"ETH":      getEnv("ETH_RPC_URL", "https://eth.llamarpc.com"),
				"BSC":      getEnv("BSC_RPC_URL", "https://bsc-dataseed.binance.org"),
				"POLYGON":  getEnv("POLYGON_RPC_URL", "https://polygon-rpc.com"),
				"FTM":      getEnv("FTM_RPC_URL", "https://rpc.ftm.tools"),
				"ARBITRUM": getEnv("ARBITRUM_RPC_URL", "https://arb1.arbitrum.io/rpc"),
				"OPTIMISM": getEnv("OPTIMISM_RPC_URL", "https://mainnet.optimism.io"),
				"BASE":     getEnv("BASE_RPC_URL", "https://mainnet.base.org"),
				"CELO":     getEnv("CELO_RPC_URL", "https://forno.celo.org"),
			},
			SolanaRPC: getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
			TronAPI:   getEnv("TRON_API_URL", "https://api.trongrid.io"),
			MoneroRPC: getEnv("MONERO_WALLET_RPC_URL", "http://localhost:18083/json_rpc"),
			TonAPI:    getEnv("TON_API_URL", "https://toncenter.com/api/v2"),
			UTXOAPI: map[string]string{
				"BTC":  getEnv("BTC_API_URL", "https://blockstream.info/api"),
				"LTC":  getEnv("LTC_API_URL", "https://litecoinspace.org/api"),
				"DOGE": getEnv("DOGE_API_URL", "https://dogechain.info/api/v1"),
				"DASH": getEnv("DASH_API_URL", "https://insight.dash.org/insight-api"),
			},
			MORPC: getEnv("MO_RPC_URL", "http://localhost:8645"),
		},
		Deposit: DepositConfig{
			PollInterval:     getEnvAsDuration("DEPOSIT_POLL_INTERVAL", 10*time.Second),
			EvictionDelay:    getEnvAsDuration("MONITOR_EVICTION_DELAY", 30*time.Second),
			VerifyInterval:   getEnvAsDuration("PENDING_VERIFY_INTERVAL", 5*time.Second),
			PendingMaxAge:    getEnvAsDuration("PENDING_MAX_AGE", 24*time.Hour),
			VerifyBatchSize:  getEnvAsInt("PENDING_VERIFY_BATCH", 100),
			EVMBlockLookback: uint64(getEnvAsInt("EVM_BLOCK_LOOKBACK", 200)),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
